package router

import (
	"foodgram/internal/handlers"
	"foodgram/internal/middleware"
	"foodgram/internal/services"
	"foodgram/internal/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Deps 路由所需的外部依赖
type Deps struct {
	DB       *gorm.DB
	Images   services.ImageStore
	Tokens   *services.TokenService
	Cache    *utils.Cache
	PageSize int
}

// RegisterRoutes 构建服务与 handler 并注册全部 API 路由
func RegisterRoutes(r *gin.Engine, deps Deps) {
	users := services.NewUserService(deps.DB)
	follows := services.NewFollowService(deps.DB)
	members := services.NewMembershipService(deps.DB)
	recipes := services.NewRecipeService(deps.DB, deps.Images)
	shopping := services.NewShoppingListService(deps.DB)
	refs := services.NewReferenceService(deps.DB, deps.Cache)

	authHandler := handlers.NewAuthHandler(users, deps.Tokens)
	userHandler := handlers.NewUserHandler(users, follows, deps.Images.URL, deps.PageSize)
	recipeHandler := handlers.NewRecipeHandler(recipes, members, follows, shopping, deps.Images.URL, deps.PageSize)
	refHandler := handlers.NewReferenceHandler(refs)

	r.Use(middleware.LoadUser(deps.Tokens, users))

	api := r.Group("/api")

	// 公共路由
	api.GET("/tags", refHandler.ListTags)
	api.GET("/tags/:id", refHandler.Tag)
	api.GET("/ingredients", refHandler.ListIngredients)
	api.GET("/ingredients/:id", refHandler.Ingredient)

	api.GET("/recipes", recipeHandler.List)
	api.GET("/recipes/:id", recipeHandler.Detail)

	api.POST("/users", userHandler.Register)
	api.GET("/users", userHandler.List)
	api.GET("/users/:id", userHandler.Detail)

	api.POST("/auth/token/login", authHandler.Login)

	// 需要登录
	authorized := api.Group("")
	authorized.Use(middleware.AuthRequired())
	{
		authorized.POST("/auth/token/logout", authHandler.Logout)

		authorized.GET("/users/me", userHandler.Me)
		authorized.POST("/users/set_password", userHandler.SetPassword)
		authorized.GET("/users/subscriptions", userHandler.Subscriptions)
		authorized.POST("/users/:id/subscribe", userHandler.Subscribe)
		authorized.DELETE("/users/:id/subscribe", userHandler.Unsubscribe)

		authorized.POST("/recipes", recipeHandler.Create)
		authorized.PATCH("/recipes/:id", recipeHandler.Update)
		authorized.DELETE("/recipes/:id", recipeHandler.Delete)
		authorized.GET("/recipes/download_shopping_cart", recipeHandler.DownloadShoppingCart)

		authorized.POST("/recipes/:id/favorite", recipeHandler.AddTo(services.Favorites))
		authorized.DELETE("/recipes/:id/favorite", recipeHandler.RemoveFrom(services.Favorites))
		authorized.POST("/recipes/:id/shopping_cart", recipeHandler.AddTo(services.ShoppingCart))
		authorized.DELETE("/recipes/:id/shopping_cart", recipeHandler.RemoveFrom(services.ShoppingCart))
	}
}

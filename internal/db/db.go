package db

import (
	"fmt"

	"foodgram/internal/logging"
	"foodgram/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Init 连接 PostgreSQL 并完成迁移与初始数据
func Init(dsn string) (*gorm.DB, error) {
	return Open(postgres.Open(dsn))
}

// Open 使用任意 dialector 建立连接，测试中传入 sqlite
func Open(dialector gorm.Dialector) (*gorm.DB, error) {
	conn, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	logging.Info().Str("dialect", dialector.Name()).Msg("Database connection established")

	if err := Migrate(conn); err != nil {
		return nil, err
	}
	if err := SeedTags(conn, DefaultTags); err != nil {
		return nil, err
	}
	return conn, nil
}

// Migrate 自动迁移全部表
func Migrate(conn *gorm.DB) error {
	err := conn.AutoMigrate(
		&models.User{},
		&models.Tag{},
		&models.Ingredient{},
		&models.Recipe{},
		&models.IngredientAmount{},
		&models.TagRecipe{},
		&models.Favorite{},
		&models.Cart{},
		&models.Follow{},
	)
	if err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}
	logging.Info().Msg("Database migration completed")
	return nil
}

// DefaultTags 空库启动时写入的标签
var DefaultTags = []models.Tag{
	{Name: "Breakfast", Color: "#E26C2D", Slug: "breakfast"},
	{Name: "Lunch", Color: "#49B64E", Slug: "lunch"},
	{Name: "Dinner", Color: "#8775D2", Slug: "dinner"},
}

// SeedTags 仅在标签表为空时写入
func SeedTags(conn *gorm.DB, tags []models.Tag) error {
	var count int64
	if err := conn.Model(&models.Tag{}).Count(&count).Error; err != nil {
		return fmt.Errorf("count tags: %w", err)
	}
	if count > 0 {
		logging.Debug().Int64("count", count).Msg("Tags already seeded, skipping")
		return nil
	}

	seed := make([]models.Tag, len(tags))
	copy(seed, tags)
	if err := conn.Create(&seed).Error; err != nil {
		return fmt.Errorf("seed tags: %w", err)
	}
	logging.Info().Int("count", len(seed)).Msg("Initial tags created")
	return nil
}

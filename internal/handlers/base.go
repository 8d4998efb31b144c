package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"reflect"
	"strconv"
	"strings"

	"foodgram/internal/logging"
	"foodgram/internal/middleware"
	"foodgram/internal/models"
	"foodgram/internal/services"
	"foodgram/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// 校验错误中的字段名使用 json 标签
func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(jsonTagName)
	}
}

func jsonTagName(fld reflect.StructField) string {
	name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}
	return name
}

// RenderError 把服务层错误映射为 HTTP 响应
func RenderError(c *gin.Context, err error) {
	var ve *services.ValidationError
	switch {
	case errors.As(err, &ve):
		c.JSON(http.StatusBadRequest, gin.H{ve.Field: []string{sentence(ve.Message)}})
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"detail": msg(err)})
	case errors.Is(err, services.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"detail": msg(err)})
	case errors.Is(err, services.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"detail": msg(err)})
	default:
		_ = c.Error(err)
		logging.Error().Err(err).Str("path", c.Request.URL.Path).Msg("Request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Internal server error."})
	}
}

// RenderBindError 请求体解析或校验失败
func RenderBindError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Malformed request body."})
		return
	}

	fields := gin.H{}
	for _, fe := range verrs {
		fields[fe.Field()] = []string{fieldMessage(fe)}
	}
	c.JSON(http.StatusBadRequest, fields)
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "email":
		return "Enter a valid email address."
	case "min":
		return fmt.Sprintf("Ensure this field has at least %s characters.", fe.Param())
	case "max":
		return fmt.Sprintf("Ensure this field has no more than %s characters.", fe.Param())
	}
	return fmt.Sprintf("Failed on the %q rule.", fe.Tag())
}

func msg(err error) string {
	if err == nil {
		return ""
	}
	return sentence(err.Error())
}

// sentence 首字母大写并补句号
func sentence(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:] + "."
}

// paramID 解析路径中的 ID，非法时返回 404
func paramID(c *gin.Context, name string) (uint, bool) {
	id, ok := utils.StringToUint(c.Param(name))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Not found."})
		return 0, false
	}
	return id, true
}

// mustUser 由 AuthRequired 保证已登录
func mustUser(c *gin.Context) *models.User {
	return c.MustGet(middleware.CheckUserKey).(*models.User)
}

// Paginated 分页响应
type Paginated struct {
	Count    int64       `json:"count"`
	Next     *string     `json:"next"`
	Previous *string     `json:"previous"`
	Results  interface{} `json:"results"`
}

func pageFromQuery(c *gin.Context, defaultSize int) services.Page {
	return services.NewPage(utils.StringToInt(c.Query("page")), utils.StringToInt(c.Query("limit")), defaultSize)
}

func pageURL(c *gin.Context, page int) *string {
	u := url.URL{Scheme: "http", Host: c.Request.Host, Path: c.Request.URL.Path}
	if c.Request.TLS != nil || strings.EqualFold(c.GetHeader("X-Forwarded-Proto"), "https") {
		u.Scheme = "https"
	}
	q := c.Request.URL.Query()
	if page <= 1 {
		q.Del("page")
	} else {
		q.Set("page", strconv.Itoa(page))
	}
	u.RawQuery = q.Encode()
	s := u.String()
	return &s
}

func newPaginated(c *gin.Context, page services.Page, total int64, results interface{}) Paginated {
	p := Paginated{Count: total, Results: results}
	if page.HasNext(total) {
		p.Next = pageURL(c, page.Number+1)
	}
	if page.Number > 1 {
		p.Previous = pageURL(c, page.Number-1)
	}
	return p
}

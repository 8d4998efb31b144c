package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("you do not have permission to perform this action")
	ErrUnauthorized = errors.New("authentication credentials were not provided")
)

// ValidationError 请求数据违反业务规则，Field 为对应的请求字段
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

func invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// notFound 把 gorm.ErrRecordNotFound 转成 ErrNotFound，其他错误原样包装
func notFound(what string, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s %w", what, ErrNotFound)
	}
	return fmt.Errorf("load %s: %w", what, err)
}

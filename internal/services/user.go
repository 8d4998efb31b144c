package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"foodgram/internal/models"
	"foodgram/internal/utils"

	"gorm.io/gorm"
)

const MinPasswordLength = 8

type RegisterInput struct {
	Email     string `json:"email" binding:"required,email,max=254"`
	Username  string `json:"username" binding:"required,max=150"`
	FirstName string `json:"first_name" binding:"required,max=150"`
	LastName  string `json:"last_name" binding:"required,max=150"`
	Password  string `json:"password" binding:"required,min=8,max=150"`
}

type UserService struct {
	db *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

// Register 创建用户，邮箱与用户名不可重复
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	username := strings.TrimSpace(in.Username)
	if username == "" {
		return nil, invalid("username", "this field may not be blank")
	}
	if len(in.Password) < MinPasswordLength {
		return nil, invalid("password", "password must be at least 8 characters")
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if count > 0 {
		return nil, invalid("email", "a user with that email already exists")
	}
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("username = ?", username).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("check username: %w", err)
	}
	if count > 0 {
		return nil, invalid("username", "a user with that username already exists")
	}

	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := models.User{
		Email:     email,
		Username:  username,
		FirstName: strings.TrimSpace(in.FirstName),
		LastName:  strings.TrimSpace(in.LastName),
		Password:  hash,
	}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, invalid("username", "a user with that email or username already exists")
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return &user, nil
}

// Authenticate 邮箱 + 密码登录
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&user).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if err != nil || !utils.CheckPasswordHash(password, user.Password) {
		return nil, invalid("non_field_errors", "unable to log in with provided credentials")
	}
	return &user, nil
}

// SetPassword 校验当前密码后修改
func (s *UserService) SetPassword(ctx context.Context, user *models.User, current, next string) error {
	if !utils.CheckPasswordHash(current, user.Password) {
		return invalid("current_password", "invalid password")
	}
	if len(next) < MinPasswordLength {
		return invalid("new_password", "password must be at least 8 characters")
	}

	hash, err := utils.HashPassword(next)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.db.WithContext(ctx).Model(user).Update("password", hash).Error; err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return nil
}

func (s *UserService) Get(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, notFound("user", err)
	}
	return &user, nil
}

func (s *UserService) List(ctx context.Context, page Page) ([]models.User, int64, error) {
	var total int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}

	var users []models.User
	err := s.db.WithContext(ctx).Order("id ASC").Limit(page.Size).Offset(page.Offset()).Find(&users).Error
	if err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}
	return users, total, nil
}

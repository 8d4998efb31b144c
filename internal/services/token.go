package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"foodgram/internal/utils"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var ErrInvalidToken = errors.New("invalid or revoked token")

// RevocationStore 记录已注销的 token ID，直到 token 本身过期
type RevocationStore interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// MemoryRevocations 单进程部署使用的 LRU 注销列表
type MemoryRevocations struct {
	cache *utils.Cache
}

func NewMemoryRevocations(size int) (*MemoryRevocations, error) {
	c, err := utils.NewCache(size)
	if err != nil {
		return nil, err
	}
	return &MemoryRevocations{cache: c}, nil
}

func (m *MemoryRevocations) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	m.cache.Set(tokenID, true, ttl)
	return nil
}

func (m *MemoryRevocations) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	return m.cache.Get(tokenID) != nil, nil
}

// RedisRevocations 多实例部署时共享的注销列表
type RedisRevocations struct {
	client *redis.Client
	prefix string
}

// NewRedisRevocations 例如 redis://localhost:6379/0
func NewRedisRevocations(ctx context.Context, url string) (*RedisRevocations, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	return &RedisRevocations{client: client, prefix: "foodgram:revoked:"}, nil
}

func (r *RedisRevocations) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	return r.client.Set(ctx, r.prefix+tokenID, 1, ttl).Err()
}

func (r *RedisRevocations) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := r.client.Exists(ctx, r.prefix+tokenID).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *RedisRevocations) Close() error {
	return r.client.Close()
}

// TokenClaims 解析后的 token 信息
type TokenClaims struct {
	UserID    uint
	TokenID   string
	ExpiresAt time.Time
}

// TokenService 签发与校验 HS256 JWT
type TokenService struct {
	secret  []byte
	ttl     time.Duration
	revoked RevocationStore
	now     func() time.Time
}

func NewTokenService(secret string, ttl time.Duration, revoked RevocationStore) *TokenService {
	return &TokenService{secret: []byte(secret), ttl: ttl, revoked: revoked, now: time.Now}
}

func (s *TokenService) Issue(userID uint) (string, error) {
	now := s.now()
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatUint(uint64(userID), 10),
		ID:        uuid.New().String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Parse 校验签名、过期时间与注销状态
func (s *TokenService) Parse(ctx context.Context, raw string) (*TokenClaims, error) {
	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	userID, err := strconv.ParseUint(claims.Subject, 10, 32)
	if err != nil || claims.ID == "" || claims.ExpiresAt == nil {
		return nil, ErrInvalidToken
	}

	revoked, err := s.revoked.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("check revocation: %w", err)
	}
	if revoked {
		return nil, ErrInvalidToken
	}
	return &TokenClaims{UserID: uint(userID), TokenID: claims.ID, ExpiresAt: claims.ExpiresAt.Time}, nil
}

// Revoke 注销 token，记录保留到其过期为止
func (s *TokenService) Revoke(ctx context.Context, claims *TokenClaims) error {
	ttl := claims.ExpiresAt.Sub(s.now())
	if ttl <= 0 {
		return nil
	}
	return s.revoked.Revoke(ctx, claims.TokenID, ttl)
}

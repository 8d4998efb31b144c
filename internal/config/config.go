// Package config 从环境变量（以及可选的 .env 文件）读取运行配置。
package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"foodgram/internal/logging"

	"github.com/joho/godotenv"
)

type Config struct {
	Port          string
	DatabaseURL   string
	Release       bool // GIN_MODE=release
	SessionSecret string
	SessionSecure bool // 仅通过 HTTPS 发送 session cookie
	JWTSecret     string
	TokenTTL      time.Duration
	RedisURL      string
	PageSize      int

	Media MediaConfig

	LogLevel  string
	LogFormat string
}

// MediaConfig 图片存储配置，Backend 为 local 或 minio
type MediaConfig struct {
	Backend   string
	Root      string
	URL       string
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	PublicURL string
}

const defaultDSN = "host=localhost user=postgres password=postgres dbname=foodgram port=5432 sslmode=disable"

// Load 读取 .env（不存在时忽略）并返回配置。ok 为 false 表示没有找到 .env 文件。
func Load() (cfg *Config, ok bool) {
	ok = godotenv.Load() == nil
	return FromEnv(), ok
}

// FromEnv 只读取进程环境变量
func FromEnv() *Config {
	return &Config{
		Port:          getEnv("PORT", "8080"),
		DatabaseURL:   getEnv("DATABASE_URL", defaultDSN),
		Release:       strings.EqualFold(os.Getenv("GIN_MODE"), "release"),
		SessionSecret: os.Getenv("SESSION_SECRET"),
		SessionSecure: getBool("SESSION_SECURE", false),
		JWTSecret:     os.Getenv("JWT_SECRET"),
		TokenTTL:      getDuration("TOKEN_TTL", 30*24*time.Hour),
		RedisURL:      os.Getenv("REDIS_URL"),
		PageSize:      getInt("PAGE_SIZE", 6),
		Media: MediaConfig{
			Backend:   strings.ToLower(getEnv("MEDIA_BACKEND", "local")),
			Root:      getEnv("MEDIA_ROOT", "./media"),
			URL:       getEnv("MEDIA_URL", "/media/"),
			Endpoint:  getEnv("MINIO_ENDPOINT", "127.0.0.1:9000"),
			AccessKey: os.Getenv("MINIO_ACCESS_KEY"),
			SecretKey: os.Getenv("MINIO_SECRET_KEY"),
			Bucket:    getEnv("MINIO_BUCKET", "foodgram"),
			UseSSL:    getBool("MINIO_USE_SSL", false),
			PublicURL: os.Getenv("MINIO_PUBLIC_URL"),
		},
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}
}

// ErrMissingSecret release 模式下未配置签名密钥
var ErrMissingSecret = errors.New("JWT_SECRET and SESSION_SECRET must be set in release mode")

// EnsureSecrets 检查签名密钥。release 模式缺少密钥时返回错误；
// 其他模式生成仅本进程有效的随机密钥，重启后旧 token 与 session 全部失效。
func (c *Config) EnsureSecrets() error {
	if c.JWTSecret != "" && c.SessionSecret != "" {
		return nil
	}
	if c.Release {
		return ErrMissingSecret
	}

	for _, item := range []struct {
		name   string
		secret *string
	}{
		{"JWT_SECRET", &c.JWTSecret},
		{"SESSION_SECRET", &c.SessionSecret},
	} {
		if *item.secret != "" {
			continue
		}
		key, err := randomKey()
		if err != nil {
			return err
		}
		*item.secret = key
		logging.Warn().Str("key", item.name).Msg("Secret not set, using a random per-process key")
	}
	return nil
}

func randomKey() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	n, err := strconv.Atoi(os.Getenv(key))
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func getBool(key string, fallback bool) bool {
	b, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return b
}

func getDuration(key string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(os.Getenv(key))
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

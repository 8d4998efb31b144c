package services

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"foodgram/internal/config"
	"foodgram/internal/logging"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// 图片大小限制 10MB
const MaxImageSize = 10 * 1024 * 1024

var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// DecodedImage 解码后的图片内容
type DecodedImage struct {
	Data        []byte
	ContentType string
	Ext         string
}

// DecodeImage 解析 data:image/<type>;base64,<data> 形式的图片
func DecodeImage(payload string) (*DecodedImage, error) {
	header, data, found := strings.Cut(strings.TrimSpace(payload), ",")
	if !found || !strings.HasPrefix(header, "data:") || !strings.HasSuffix(header, ";base64") {
		return nil, invalid("image", "expected a base64 encoded data URI")
	}

	raw, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return nil, invalid("image", "invalid base64 image data")
	}
	if len(raw) == 0 {
		return nil, invalid("image", "image is empty")
	}
	if len(raw) > MaxImageSize {
		return nil, invalid("image", "image must not exceed 10MB")
	}

	// 以实际内容为准，不信任声明的类型
	contentType := http.DetectContentType(raw)
	ext, ok := imageExtensions[contentType]
	if !ok {
		return nil, invalid("image", "only jpeg, png, gif and webp images are allowed")
	}
	return &DecodedImage{Data: raw, ContentType: contentType, Ext: ext}, nil
}

// ImageStore 图片存储：保存后返回引用，引用可转换为访问 URL
type ImageStore interface {
	Save(ctx context.Context, img *DecodedImage) (string, error)
	Delete(ctx context.Context, ref string) error
	URL(ref string) string
}

// NewImageStore 根据配置选择存储后端
func NewImageStore(ctx context.Context, cfg config.MediaConfig) (ImageStore, error) {
	switch cfg.Backend {
	case "", "local":
		return NewLocalImageStore(cfg.Root, cfg.URL), nil
	case "minio":
		return NewMinioImageStore(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown media backend %q", cfg.Backend)
	}
}

func newObjectName(ext string) string {
	return "recipes/images/" + uuid.New().String() + ext
}

// LocalImageStore 保存到本地目录，由 gin Static 对外提供
type LocalImageStore struct {
	root    string
	baseURL string
}

func NewLocalImageStore(root, baseURL string) *LocalImageStore {
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	return &LocalImageStore{root: root, baseURL: baseURL}
}

func (s *LocalImageStore) Root() string {
	return s.root
}

func (s *LocalImageStore) Save(ctx context.Context, img *DecodedImage) (string, error) {
	ref := newObjectName(img.Ext)
	full := filepath.Join(s.root, filepath.FromSlash(ref))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("create media dir: %w", err)
	}
	if err := os.WriteFile(full, img.Data, 0o644); err != nil {
		return "", fmt.Errorf("write image: %w", err)
	}
	return ref, nil
}

func (s *LocalImageStore) Delete(ctx context.Context, ref string) error {
	if ref == "" {
		return nil
	}
	clean := path.Clean("/" + ref)[1:]
	err := os.Remove(filepath.Join(s.root, filepath.FromSlash(clean)))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove image: %w", err)
	}
	return nil
}

func (s *LocalImageStore) URL(ref string) string {
	if ref == "" {
		return ""
	}
	return s.baseURL + ref
}

// MinioImageStore 保存到 MinIO / S3 兼容存储
type MinioImageStore struct {
	client    *minio.Client
	bucket    string
	publicURL string
}

func NewMinioImageStore(ctx context.Context, cfg config.MediaConfig) (*MinioImageStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("connect minio: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket %s: %w", cfg.Bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket %s: %w", cfg.Bucket, err)
		}
		logging.Info().Str("bucket", cfg.Bucket).Msg("Created media bucket")
	}

	publicURL := cfg.PublicURL
	if publicURL == "" {
		scheme := "http"
		if cfg.UseSSL {
			scheme = "https"
		}
		publicURL = fmt.Sprintf("%s://%s/%s", scheme, cfg.Endpoint, cfg.Bucket)
	}
	return &MinioImageStore{
		client:    client,
		bucket:    cfg.Bucket,
		publicURL: strings.TrimSuffix(publicURL, "/"),
	}, nil
}

func (s *MinioImageStore) Save(ctx context.Context, img *DecodedImage) (string, error) {
	ref := newObjectName(img.Ext)
	_, err := s.client.PutObject(ctx, s.bucket, ref, bytes.NewReader(img.Data), int64(len(img.Data)), minio.PutObjectOptions{
		ContentType: img.ContentType,
	})
	if err != nil {
		return "", fmt.Errorf("upload image: %w", err)
	}
	return ref, nil
}

func (s *MinioImageStore) Delete(ctx context.Context, ref string) error {
	if ref == "" {
		return nil
	}
	if err := s.client.RemoveObject(ctx, s.bucket, ref, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("remove image: %w", err)
	}
	return nil
}

func (s *MinioImageStore) URL(ref string) string {
	if ref == "" {
		return ""
	}
	return s.publicURL + "/" + ref
}

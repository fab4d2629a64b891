package service

import (
	"achievements_tracker_backend/internal/config"
	"achievements_tracker_backend/internal/util"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// StorageProvider 定义归档存储接口 (迁移前的快照备份)
type StorageProvider interface {
	Upload(ctx context.Context, name string, reader io.Reader, size int64, contentType string) (string, error)
	Delete(ctx context.Context, name string) error
	GetURL(name string) string
}

// LocalStorageProvider 本地存储实现
type LocalStorageProvider struct {
	Config *config.StorageConfig
}

func (p *LocalStorageProvider) path(name string) string {
	return filepath.Join(p.Config.LocalPath, filepath.FromSlash(name))
}

func (p *LocalStorageProvider) Upload(ctx context.Context, name string, reader io.Reader, size int64, contentType string) (string, error) {
	dst := p.path(name)
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return "", err
	}

	out, err := os.Create(dst)
	if err != nil {
		return "", err
	}
	defer out.Close()

	if _, err := io.Copy(out, reader); err != nil {
		return "", err
	}
	return p.GetURL(name), nil
}

func (p *LocalStorageProvider) Delete(ctx context.Context, name string) error {
	return os.Remove(p.path(name))
}

func (p *LocalStorageProvider) GetURL(name string) string {
	return "file://" + filepath.ToSlash(p.path(name))
}

// MinioStorageProvider MinIO存储实现
type MinioStorageProvider struct {
	Config *config.StorageConfig
	Client *minio.Client
}

func NewMinioStorageProvider(cfg *config.StorageConfig) (*MinioStorageProvider, error) {
	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessID, cfg.MinioSecret, ""),
		Secure: cfg.MinioUseSSL,
	})
	if err != nil {
		return nil, err
	}
	return &MinioStorageProvider{Config: cfg, Client: client}, nil
}

func (p *MinioStorageProvider) Upload(ctx context.Context, name string, reader io.Reader, size int64, contentType string) (string, error) {
	_, err := p.Client.PutObject(ctx, p.Config.MinioBucket, name, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", err
	}
	return p.GetURL(name), nil
}

func (p *MinioStorageProvider) Delete(ctx context.Context, name string) error {
	return p.Client.RemoveObject(ctx, p.Config.MinioBucket, name, minio.RemoveObjectOptions{})
}

func (p *MinioStorageProvider) GetURL(name string) string {
	return "s3://" + p.Config.MinioBucket + "/" + name
}

// OSSStorageProvider 阿里云OSS存储实现
type OSSStorageProvider struct {
	Config *config.StorageConfig
	Client *oss.Client
}

func NewOSSStorageProvider(cfg *config.StorageConfig) (*OSSStorageProvider, error) {
	client, err := oss.New(cfg.OSSEndpoint, cfg.OSSAccessKey, cfg.OSSSecretKey)
	if err != nil {
		return nil, err
	}
	return &OSSStorageProvider{Config: cfg, Client: client}, nil
}

func (p *OSSStorageProvider) Upload(ctx context.Context, name string, reader io.Reader, size int64, contentType string) (string, error) {
	bucket, err := p.Client.Bucket(p.Config.OSSBucket)
	if err != nil {
		return "", err
	}

	if err := bucket.PutObject(name, reader, oss.ContentType(contentType), oss.WithContext(ctx)); err != nil {
		return "", err
	}
	return p.GetURL(name), nil
}

func (p *OSSStorageProvider) Delete(ctx context.Context, name string) error {
	bucket, err := p.Client.Bucket(p.Config.OSSBucket)
	if err != nil {
		return err
	}
	return bucket.DeleteObject(name, oss.WithContext(ctx))
}

func (p *OSSStorageProvider) GetURL(name string) string {
	return fmt.Sprintf("https://%s.%s/%s", p.Config.OSSBucket, p.Config.OSSEndpoint, name)
}

// StorageService 存储服务
type StorageService struct {
	Provider StorageProvider
}

func NewStorageService(cfg *config.StorageConfig) (*StorageService, error) {
	var provider StorageProvider
	switch cfg.Type {
	case util.StorageMinio:
		p, err := NewMinioStorageProvider(cfg)
		if err != nil {
			return nil, fmt.Errorf("init minio storage: %w", err)
		}
		provider = p
	case util.StorageOSS:
		p, err := NewOSSStorageProvider(cfg)
		if err != nil {
			return nil, fmt.Errorf("init oss storage: %w", err)
		}
		provider = p
	case util.StorageLocal, "":
		provider = &LocalStorageProvider{Config: cfg}
	default:
		return nil, fmt.Errorf("unknown storage type %q", cfg.Type)
	}

	return &StorageService{Provider: provider}, nil
}

func (s *StorageService) Upload(ctx context.Context, name string, reader io.Reader, size int64, contentType string) (string, error) {
	return s.Provider.Upload(ctx, name, reader, size, contentType)
}

func (s *StorageService) Delete(ctx context.Context, name string) error {
	return s.Provider.Delete(ctx, name)
}

func (s *StorageService) GetURL(name string) string {
	return s.Provider.GetURL(name)
}

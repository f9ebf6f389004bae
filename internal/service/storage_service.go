package service

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"strings"
	"time"

	"brolearn_backend/internal/config"
	"brolearn_backend/internal/util"
	"brolearn_backend/pkg/logger"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"
)

// StorageProvider turns an object key of lesson media into a URL clients can fetch.
type StorageProvider interface {
	URL(ctx context.Context, key string) (string, error)
}

// LocalStorageProvider serves media from Config.LocalPath under /uploads.
type LocalStorageProvider struct {
	Config *config.StorageConfig
}

func (p *LocalStorageProvider) URL(_ context.Context, key string) (string, error) {
	return path.Join("/uploads", key), nil
}

type MinioStorageProvider struct {
	Config *config.StorageConfig
	Client *minio.Client
}

func NewMinioStorageProvider(cfg *config.StorageConfig) (*MinioStorageProvider, error) {
	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessID, cfg.MinioSecret, ""),
		Secure: cfg.MinioUseSSL,
		// a known region lets presigning skip the bucket location lookup
		Region: cfg.MinioRegion,
	})
	if err != nil {
		return nil, err
	}
	return &MinioStorageProvider{Config: cfg, Client: client}, nil
}

// URL presigns a GET for the object.
func (p *MinioStorageProvider) URL(ctx context.Context, key string) (string, error) {
	u, err := p.Client.PresignedGetObject(ctx, p.Config.MinioBucket, key, urlExpiry(p.Config), url.Values{})
	if err != nil {
		return "", err
	}
	return u.String(), nil
}

type OSSStorageProvider struct {
	Config *config.StorageConfig
	Bucket *oss.Bucket
}

func NewOSSStorageProvider(cfg *config.StorageConfig) (*OSSStorageProvider, error) {
	client, err := oss.New(cfg.OSSEndpoint, cfg.OSSAccessKey, cfg.OSSSecretKey)
	if err != nil {
		return nil, err
	}
	bucket, err := client.Bucket(cfg.OSSBucket)
	if err != nil {
		return nil, err
	}
	return &OSSStorageProvider{Config: cfg, Bucket: bucket}, nil
}

func (p *OSSStorageProvider) URL(_ context.Context, key string) (string, error) {
	return p.Bucket.SignURL(key, oss.HTTPGet, int64(urlExpiry(p.Config).Seconds()))
}

func urlExpiry(cfg *config.StorageConfig) time.Duration {
	if cfg.URLExpireMinutes <= 0 {
		return time.Hour
	}
	return time.Duration(cfg.URLExpireMinutes) * time.Minute
}

type StorageService struct {
	Provider StorageProvider
}

// NewStorageService falls back to local storage when the configured provider
// cannot be built.
func NewStorageService(cfg *config.Config) *StorageService {
	var provider StorageProvider
	switch cfg.Storage.Type {
	case util.StorageMinio:
		p, err := NewMinioStorageProvider(&cfg.Storage)
		if err != nil {
			logger.Log.Error("MinIO storage unavailable, using local storage", zap.Error(err))
		} else {
			provider = p
		}
	case util.StorageOSS:
		p, err := NewOSSStorageProvider(&cfg.Storage)
		if err != nil {
			logger.Log.Error("OSS storage unavailable, using local storage", zap.Error(err))
		} else {
			provider = p
		}
	}

	if provider == nil {
		provider = &LocalStorageProvider{Config: &cfg.Storage}
	}

	return &StorageService{Provider: provider}
}

// ResolveMediaURL leaves absolute URLs and empty references untouched and
// asks the provider for everything else.
func (s *StorageService) ResolveMediaURL(ctx context.Context, ref string) (string, error) {
	if ref == "" || strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return ref, nil
	}
	u, err := s.Provider.URL(ctx, strings.TrimPrefix(ref, "/"))
	if err != nil {
		return "", fmt.Errorf("resolve media %q: %w", ref, err)
	}
	return u, nil
}

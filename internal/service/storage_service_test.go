package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"brolearn_backend/internal/config"
)

func TestStorageServiceLocal(t *testing.T) {
	cfg := &config.Config{}
	cfg.Storage.Type = "local"
	cfg.Storage.LocalPath = t.TempDir()
	s := NewStorageService(cfg)
	ctx := context.Background()

	_, ok := s.Provider.(*LocalStorageProvider)
	require.True(t, ok)

	u, err := s.ResolveMediaURL(ctx, "/lessons/a.png")
	require.NoError(t, err)
	assert.Equal(t, "/uploads/lessons/a.png", u)

	u, err = s.ResolveMediaURL(ctx, "https://cdn.example.com/a.png")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/a.png", u)

	u, err = s.ResolveMediaURL(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, u)
}

func TestStorageServiceMinioPresigns(t *testing.T) {
	cfg := &config.Config{}
	cfg.Storage.Type = "minio"
	cfg.Storage.MinioEndpoint = "localhost:9000"
	cfg.Storage.MinioAccessID = "minio"
	cfg.Storage.MinioSecret = "minio-secret"
	cfg.Storage.MinioBucket = "lessons"
	cfg.Storage.MinioRegion = "us-east-1"
	cfg.Storage.URLExpireMinutes = 5
	s := NewStorageService(cfg)

	_, ok := s.Provider.(*MinioStorageProvider)
	require.True(t, ok)

	u, err := s.ResolveMediaURL(context.Background(), "intro.mp4")
	require.NoError(t, err)
	assert.Contains(t, u, "/lessons/intro.mp4")
	assert.Contains(t, u, "X-Amz-Signature")
}

func TestStorageServiceOSSSigns(t *testing.T) {
	cfg := &config.Config{}
	cfg.Storage.Type = "oss"
	cfg.Storage.OSSEndpoint = "oss-cn-hangzhou.aliyuncs.com"
	cfg.Storage.OSSAccessKey = "access"
	cfg.Storage.OSSSecretKey = "secret"
	cfg.Storage.OSSBucket = "lessons"
	s := NewStorageService(cfg)

	_, ok := s.Provider.(*OSSStorageProvider)
	require.True(t, ok)

	u, err := s.ResolveMediaURL(context.Background(), "intro.mp4")
	require.NoError(t, err)
	assert.Contains(t, u, "lessons.oss-cn-hangzhou.aliyuncs.com/intro.mp4")
	assert.Contains(t, u, "Signature=")
}

package service

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"speech_therapy_backend/internal/config"
	"speech_therapy_backend/internal/util"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// StorageProvider 音频上传落盘抽象，支持本地磁盘与 MinIO 对象存储
type StorageProvider interface {
	SaveAudio(ctx context.Context, reader io.Reader, size int64, objectName, contentType string) (string, error)
}

func NewStorage(cfg config.StorageConfig) (StorageProvider, error) {
	switch cfg.Type {
	case util.StorageMinio:
		return NewMinioStorage(cfg)
	case util.StorageLocal, "":
		return NewLocalStorage(cfg.LocalPath), nil
	default:
		return nil, fmt.Errorf("未知的存储类型: %s", cfg.Type)
	}
}

type LocalStorage struct {
	basePath string
}

func NewLocalStorage(basePath string) *LocalStorage {
	if basePath == "" {
		basePath = "uploads"
	}
	return &LocalStorage{basePath: basePath}
}

func (l *LocalStorage) SaveAudio(_ context.Context, reader io.Reader, _ int64, objectName, _ string) (string, error) {
	path := filepath.Join(l.basePath, objectName)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("创建上传目录失败: %w", err)
	}

	out, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer out.Close()

	if _, err := io.Copy(out, reader); err != nil {
		return "", err
	}
	return path, nil
}

type MinioStorage struct {
	client *minio.Client
	bucket string
}

func NewMinioStorage(cfg config.StorageConfig) (*MinioStorage, error) {
	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessID, cfg.MinioSecret, ""),
		Secure: cfg.MinioUseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("初始化 MinIO 客户端失败: %w", err)
	}

	ctx := context.Background()
	exists, err := client.BucketExists(ctx, cfg.MinioBucket)
	if err != nil {
		return nil, fmt.Errorf("检查存储桶失败: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.MinioBucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("创建存储桶失败: %w", err)
		}
	}

	return &MinioStorage{client: client, bucket: cfg.MinioBucket}, nil
}

func (m *MinioStorage) SaveAudio(ctx context.Context, reader io.Reader, size int64, objectName, contentType string) (string, error) {
	if contentType == "" {
		contentType = util.MimeOctetStream
	}
	_, err := m.client.PutObject(ctx, m.bucket, objectName, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("上传音频失败: %w", err)
	}
	return fmt.Sprintf("%s/%s", m.bucket, objectName), nil
}

package service

import (
	"aptitude_backend/internal/config"
	"aptitude_backend/internal/util"
	"aptitude_backend/pkg/logger"
	"aptitude_backend/pkg/monitoring"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"
)

// StorageProvider is a backend able to hold uploaded images.
type StorageProvider interface {
	Name() string
	Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
}

// LocalStorageProvider writes under LocalPath; files are served from /uploads.
type LocalStorageProvider struct {
	Config *config.StorageConfig
}

func (p *LocalStorageProvider) Name() string { return util.StorageLocal }

func (p *LocalStorageProvider) Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) (string, error) {
	dst := filepath.Join(p.Config.LocalPath, key)
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return "", err
	}

	out, err := os.Create(dst)
	if err != nil {
		return "", err
	}
	defer out.Close()

	if _, err := io.Copy(out, reader); err != nil {
		os.Remove(dst)
		return "", err
	}
	return "/uploads/" + key, nil
}

func (p *LocalStorageProvider) Delete(ctx context.Context, key string) error {
	return os.Remove(filepath.Join(p.Config.LocalPath, key))
}

type MinioStorageProvider struct {
	Config *config.StorageConfig
	Client *minio.Client
}

func NewMinioStorageProvider(cfg *config.StorageConfig) (*MinioStorageProvider, error) {
	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessID, cfg.MinioSecret, ""),
		Secure: cfg.MinioSecure,
	})
	if err != nil {
		return nil, err
	}
	return &MinioStorageProvider{Config: cfg, Client: client}, nil
}

func (p *MinioStorageProvider) Name() string { return util.StorageMinio }

func (p *MinioStorageProvider) Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) (string, error) {
	_, err := p.Client.PutObject(ctx, p.Config.MinioBucket, key, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", err
	}

	scheme := "http"
	if p.Config.MinioSecure {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/%s/%s", scheme, p.Config.MinioEndpoint, p.Config.MinioBucket, key), nil
}

func (p *MinioStorageProvider) Delete(ctx context.Context, key string) error {
	return p.Client.RemoveObject(ctx, p.Config.MinioBucket, key, minio.RemoveObjectOptions{})
}

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

func (p *OSSStorageProvider) Name() string { return util.StorageOSS }

func (p *OSSStorageProvider) Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) (string, error) {
	bucket, err := p.Client.Bucket(p.Config.OSSBucket)
	if err != nil {
		return "", err
	}
	if err := bucket.PutObject(key, reader, oss.ContentType(contentType)); err != nil {
		return "", err
	}
	return fmt.Sprintf("https://%s.%s/%s", p.Config.OSSBucket, p.Config.OSSEndpoint, key), nil
}

func (p *OSSStorageProvider) Delete(ctx context.Context, key string) error {
	bucket, err := p.Client.Bucket(p.Config.OSSBucket)
	if err != nil {
		return err
	}
	return bucket.DeleteObject(key)
}

// CloudinaryStorageProvider uploads into Config.CloudinaryFolder; the public id
// is the key without its extension.
type CloudinaryStorageProvider struct {
	Config *config.StorageConfig
	Client *cloudinary.Cloudinary
}

func NewCloudinaryStorageProvider(cfg *config.StorageConfig) (*CloudinaryStorageProvider, error) {
	cld, err := cloudinary.NewFromURL(cfg.CloudinaryURL)
	if err != nil {
		return nil, err
	}
	return &CloudinaryStorageProvider{Config: cfg, Client: cld}, nil
}

func (p *CloudinaryStorageProvider) Name() string { return util.StorageCloudinary }

func (p *CloudinaryStorageProvider) publicID(key string) string {
	return strings.TrimSuffix(key, filepath.Ext(key))
}

func (p *CloudinaryStorageProvider) Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) (string, error) {
	res, err := p.Client.Upload.Upload(ctx, reader, uploader.UploadParams{
		PublicID: p.publicID(key),
		Folder:   p.Config.CloudinaryFolder,
	})
	if err != nil {
		return "", err
	}
	if res.Error.Message != "" {
		return "", fmt.Errorf("cloudinary upload: %s", res.Error.Message)
	}
	return res.SecureURL, nil
}

func (p *CloudinaryStorageProvider) Delete(ctx context.Context, key string) error {
	publicID := p.publicID(key)
	if p.Config.CloudinaryFolder != "" {
		publicID = p.Config.CloudinaryFolder + "/" + publicID
	}
	_, err := p.Client.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: publicID})
	return err
}

// StoredAsset is an uploaded image.
type StoredAsset struct {
	Key string
	URL string
}

type StorageService struct {
	Provider      StorageProvider
	MaxImageBytes int64
}

// NewStorageService picks the provider named by cfg.Type. A remote provider that
// cannot be built falls back to local disk.
func NewStorageService(cfg *config.StorageConfig) *StorageService {
	var (
		provider StorageProvider
		err      error
	)
	switch cfg.Type {
	case util.StorageMinio:
		provider, err = NewMinioStorageProvider(cfg)
	case util.StorageOSS:
		provider, err = NewOSSStorageProvider(cfg)
	case util.StorageCloudinary:
		provider, err = NewCloudinaryStorageProvider(cfg)
	}
	if err != nil {
		logger.Log.Warn("storage provider unavailable, using local disk",
			zap.String("type", cfg.Type), zap.Error(err))
		provider = nil
	}
	if provider == nil {
		provider = &LocalStorageProvider{Config: cfg}
	}

	limit := cfg.MaxImageBytes
	if limit <= 0 {
		limit = util.DefaultMaxImageBytes
	}
	return &StorageService{Provider: provider, MaxImageBytes: limit}
}

// SaveImage checks and stores an uploaded image received under field.
func (s *StorageService) SaveImage(ctx context.Context, field string, fh *multipart.FileHeader) (*StoredAsset, error) {
	ext, ok := util.ImageExtension(fh.Filename)
	if !ok {
		return nil, util.NewValidationError(field, "must be a jpeg, jpg, png or gif image")
	}
	if fh.Size > s.MaxImageBytes {
		return nil, util.NewValidationError(field, fmt.Sprintf("must not exceed %d bytes", s.MaxImageBytes))
	}

	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	mimeType, err := util.ValidateMimeType(f, util.AllowedImageMimeTypes)
	if err != nil {
		return nil, util.NewValidationError(field, "must be a jpeg, jpg, png or gif image")
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}

	key := fmt.Sprintf("%s-%d-%s%s", field, time.Now().UnixMilli(), uuid.NewString(), ext)
	url, err := s.Provider.Upload(ctx, key, f, fh.Size, mimeType)
	if err != nil {
		return nil, fmt.Errorf("upload %s: %w", field, err)
	}

	monitoring.UploadedAssets.WithLabelValues(s.Provider.Name()).Inc()
	return &StoredAsset{Key: key, URL: url}, nil
}

func (s *StorageService) Delete(ctx context.Context, key string) error {
	return s.Provider.Delete(ctx, key)
}

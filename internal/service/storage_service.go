package service

import (
	"baobab_academy/internal/config"
	"baobab_academy/internal/util"
	"baobab_academy/pkg/logger"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"
)

var ErrInvalidObjectKey = errors.New("invalid object key")

// ObjectKey names stored course media. Every key lives under
// "courses/<courseID>/" so a course's objects can be found from the course alone.
type ObjectKey string

const courseKeyRoot = "courses/"

func courseKey(courseID string, parts ...string) ObjectKey {
	return ObjectKey(courseKeyRoot + path.Join(append([]string{courseID}, parts...)...))
}

// CoverKey is unique per upload so a replaced cover never shadows the new one in caches.
func CoverKey(courseID, ext string) ObjectKey {
	return courseKey(courseID, fmt.Sprintf("cover-%d%s", time.Now().UnixNano(), strings.ToLower(ext)))
}

func LessonVideoKey(courseID, lessonID, ext string) ObjectKey {
	return courseKey(courseID, "lessons", lessonID, fmt.Sprintf("video-%d%s", time.Now().UnixNano(), strings.ToLower(ext)))
}

// LessonThumbnailKey is stable: a new video overwrites the previous frame.
func LessonThumbnailKey(courseID, lessonID string) ObjectKey {
	return courseKey(courseID, "lessons", lessonID, "thumbnail.jpg")
}

// CourseID returns the owning course, or "" for a key outside the layout.
func (k ObjectKey) CourseID() string {
	rest, ok := strings.CutPrefix(string(k), courseKeyRoot)
	if !ok {
		return ""
	}
	id, _, ok := strings.Cut(rest, "/")
	if !ok {
		return ""
	}
	return id
}

func (k ObjectKey) validate() error {
	s := string(k)
	if k.CourseID() == "" || strings.HasPrefix(s, "/") || path.Clean(s) != s {
		return fmt.Errorf("%w: %q", ErrInvalidObjectKey, s)
	}
	return nil
}

// StorageProvider is one backend for course media.
type StorageProvider interface {
	Put(ctx context.Context, key ObjectKey, reader io.Reader, size int64, contentType string) error
	PutFile(ctx context.Context, key ObjectKey, localPath string, contentType string) error
	// Remove succeeds for a key that is already gone.
	Remove(ctx context.Context, key ObjectKey) error
	URL(key ObjectKey) string
}

// LocalStorageProvider writes under storage.local_path, served at /uploads.
type LocalStorageProvider struct {
	Config *config.StorageConfig
}

func (p *LocalStorageProvider) path(key ObjectKey) string {
	return filepath.Join(p.Config.LocalPath, filepath.FromSlash(string(key)))
}

func (p *LocalStorageProvider) Put(ctx context.Context, key ObjectKey, reader io.Reader, size int64, contentType string) error {
	dst := p.path(key)
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return err
	}
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, reader); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

func (p *LocalStorageProvider) PutFile(ctx context.Context, key ObjectKey, localPath string, contentType string) error {
	if localPath == p.path(key) {
		return nil
	}
	src, err := os.Open(localPath)
	if err != nil {
		return err
	}
	defer src.Close()
	return p.Put(ctx, key, src, -1, contentType)
}

func (p *LocalStorageProvider) Remove(ctx context.Context, key ObjectKey) error {
	if err := os.Remove(p.path(key)); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (p *LocalStorageProvider) URL(key ObjectKey) string {
	return "/uploads/" + string(key)
}

// MinioStorageProvider stores objects in a MinIO bucket.
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

func (p *MinioStorageProvider) Put(ctx context.Context, key ObjectKey, reader io.Reader, size int64, contentType string) error {
	_, err := p.Client.PutObject(ctx, p.Config.MinioBucket, string(key), reader, size, minio.PutObjectOptions{ContentType: contentType})
	return err
}

func (p *MinioStorageProvider) PutFile(ctx context.Context, key ObjectKey, localPath string, contentType string) error {
	_, err := p.Client.FPutObject(ctx, p.Config.MinioBucket, string(key), localPath, minio.PutObjectOptions{ContentType: contentType})
	return err
}

// Remove relies on MinIO answering success for a missing object.
func (p *MinioStorageProvider) Remove(ctx context.Context, key ObjectKey) error {
	return p.Client.RemoveObject(ctx, p.Config.MinioBucket, string(key), minio.RemoveObjectOptions{})
}

func (p *MinioStorageProvider) URL(key ObjectKey) string {
	return "/" + p.Config.MinioBucket + "/" + string(key)
}

// OSSStorageProvider stores objects in an Aliyun OSS bucket.
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

func (p *OSSStorageProvider) bucket() (*oss.Bucket, error) {
	return p.Client.Bucket(p.Config.OSSBucket)
}

func (p *OSSStorageProvider) Put(ctx context.Context, key ObjectKey, reader io.Reader, size int64, contentType string) error {
	b, err := p.bucket()
	if err != nil {
		return err
	}
	return b.PutObject(string(key), reader, oss.ContentType(contentType), oss.WithContext(ctx))
}

func (p *OSSStorageProvider) PutFile(ctx context.Context, key ObjectKey, localPath string, contentType string) error {
	b, err := p.bucket()
	if err != nil {
		return err
	}
	return b.PutObjectFromFile(string(key), localPath, oss.ContentType(contentType), oss.WithContext(ctx))
}

func (p *OSSStorageProvider) Remove(ctx context.Context, key ObjectKey) error {
	b, err := p.bucket()
	if err != nil {
		return err
	}
	return b.DeleteObject(string(key), oss.WithContext(ctx))
}

func (p *OSSStorageProvider) URL(key ObjectKey) string {
	return fmt.Sprintf("https://%s.%s/%s", p.Config.OSSBucket, p.Config.OSSEndpoint, key)
}

// StorageService picks a provider from storage.type, falling back to local
// disk, and refuses keys outside the course layout.
type StorageService struct {
	Provider StorageProvider
}

func NewStorageService(cfg *config.Config) *StorageService {
	var provider StorageProvider
	switch cfg.Storage.Type {
	case util.StorageMinio:
		p, err := NewMinioStorageProvider(&cfg.Storage)
		if err != nil {
			logger.Log.Warn("minio unavailable, using local storage", zap.Error(err))
		} else {
			provider = p
		}
	case util.StorageOSS:
		p, err := NewOSSStorageProvider(&cfg.Storage)
		if err != nil {
			logger.Log.Warn("oss unavailable, using local storage", zap.Error(err))
		} else {
			provider = p
		}
	}

	if provider == nil {
		provider = &LocalStorageProvider{Config: &cfg.Storage}
	}
	return &StorageService{Provider: provider}
}

// Store writes the object and returns its public URL.
func (s *StorageService) Store(ctx context.Context, key ObjectKey, reader io.Reader, size int64, contentType string) (string, error) {
	if err := key.validate(); err != nil {
		return "", err
	}
	if err := s.Provider.Put(ctx, key, reader, size, contentType); err != nil {
		return "", err
	}
	return s.Provider.URL(key), nil
}

func (s *StorageService) StoreFile(ctx context.Context, key ObjectKey, localPath, contentType string) (string, error) {
	if err := key.validate(); err != nil {
		return "", err
	}
	if err := s.Provider.PutFile(ctx, key, localPath, contentType); err != nil {
		return "", err
	}
	return s.Provider.URL(key), nil
}

// Remove deletes one object; an empty key is a no-op.
func (s *StorageService) Remove(ctx context.Context, key ObjectKey) error {
	if key == "" {
		return nil
	}
	if err := key.validate(); err != nil {
		return err
	}
	return s.Provider.Remove(ctx, key)
}

// RemoveAll deletes what it can and returns how many objects went away.
// Storage is cleaned after the database, so failures are only logged.
func (s *StorageService) RemoveAll(ctx context.Context, keys []ObjectKey) int {
	removed := 0
	for _, key := range keys {
		if err := s.Remove(ctx, key); err != nil {
			logger.Log.Warn("Failed to delete course media", zap.String("key", string(key)), zap.Error(err))
			continue
		}
		removed++
	}
	return removed
}

func (s *StorageService) URL(key ObjectKey) string {
	return s.Provider.URL(key)
}

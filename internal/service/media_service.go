package service

import (
	"baobab_academy/internal/util"
	"baobab_academy/pkg/logger"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// VideoMeta is what the media pipeline learns about an uploaded lesson video.
type VideoMeta struct {
	Duration     float64
	ThumbnailURL string
	ThumbnailKey ObjectKey
}

// MediaService inspects lesson videos with ffmpeg and publishes a thumbnail.
type MediaService struct {
	StorageService *StorageService
	inspect        func(path string) (*util.LessonVideo, error)
	thumbnail      func(videoPath, thumbPath, offset string) error
}

func NewMediaService(storageService *StorageService) *MediaService {
	return &MediaService{
		StorageService: storageService,
		inspect:        util.InspectLessonVideo,
		thumbnail:      util.ExtractThumbnail,
	}
}

// ProcessVideo reads the duration of a local video and stores a frame under
// thumbKey. Thumbnail failures are logged and leave ThumbnailURL empty.
func (s *MediaService) ProcessVideo(ctx context.Context, localPath string, thumbKey ObjectKey) (*VideoMeta, error) {
	info, err := s.inspect(localPath)
	if err != nil {
		return nil, fmt.Errorf("inspect lesson video: %w", err)
	}
	meta := &VideoMeta{Duration: info.Duration}

	thumbPath := filepath.Join(os.TempDir(), "baobab-thumb-"+util.GenerateRandomString(12)+".jpg")
	defer os.Remove(thumbPath)

	if err := s.thumbnail(localPath, thumbPath, util.ThumbnailOffset(info.Duration)); err != nil {
		logger.Log.Warn("Thumbnail generation failed", zap.String("video", localPath), zap.Error(err))
		return meta, nil
	}

	url, err := s.StorageService.StoreFile(ctx, thumbKey, thumbPath, "image/jpeg")
	if err != nil {
		logger.Log.Warn("Thumbnail upload failed", zap.String("key", string(thumbKey)), zap.Error(err))
		return meta, nil
	}
	meta.ThumbnailURL = url
	meta.ThumbnailKey = thumbKey
	return meta, nil
}

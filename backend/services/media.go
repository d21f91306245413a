package services

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"

	"scholarly/backend/media"
	"scholarly/backend/models"
)

// MediaService uploads course images and lesson videos.
type MediaService struct {
	storage media.Storage
	courses CourseRepository
}

func NewMediaService(storage media.Storage, courses CourseRepository) *MediaService {
	return &MediaService{storage: storage, courses: courses}
}

func (s *MediaService) UploadImage(ctx context.Context, dataURL string) (*models.Asset, error) {
	if strings.TrimSpace(dataURL) == "" {
		return nil, Validation("No image!", map[string]string{"image": "image is required"})
	}
	img, err := media.ParseDataURL(dataURL)
	if err != nil {
		if errors.Is(err, media.ErrInvalidDataURL) {
			return nil, Validation("image must be a base64 data URL", map[string]string{"image": "invalid image data"})
		}
		return nil, Upstream("parse image", err)
	}
	asset, err := s.storage.Put(ctx, media.NewKey("image."+img.Extension), img.ContentType, bytes.NewReader(img.Data), int64(len(img.Data)))
	if err != nil {
		return nil, Upstream("upload image", err)
	}
	return &asset, nil
}

func (s *MediaService) RemoveImage(ctx context.Context, asset models.Asset) error {
	if asset.IsZero() {
		return Validation("image key is required", map[string]string{"Key": "Key is required"})
	}
	if err := s.storage.Delete(ctx, asset); err != nil {
		return Upstream("remove image", err)
	}
	return nil
}

type VideoUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// UploadVideo stores a lesson video for a course the caller teaches.
func (s *MediaService) UploadVideo(ctx context.Context, userID uint, courseSlug string, video VideoUpload) (*models.Asset, error) {
	if video.Body == nil || video.Size == 0 {
		return nil, Validation("No video", map[string]string{"video": "video is required"})
	}
	if !strings.HasPrefix(video.ContentType, "video/") {
		return nil, Validation("file must be a video", map[string]string{"video": "file must be a video"})
	}
	if err := s.ensureOwner(ctx, userID, courseSlug); err != nil {
		return nil, err
	}
	asset, err := s.storage.Put(ctx, media.NewKey(video.Filename), video.ContentType, video.Body, video.Size)
	if err != nil {
		return nil, Upstream("upload video", err)
	}
	return &asset, nil
}

func (s *MediaService) RemoveVideo(ctx context.Context, userID uint, courseSlug string, asset models.Asset) error {
	if asset.IsZero() {
		return Validation("video key is required", map[string]string{"Key": "Key is required"})
	}
	if err := s.ensureOwner(ctx, userID, courseSlug); err != nil {
		return err
	}
	if err := s.storage.Delete(ctx, asset); err != nil {
		return Upstream("remove video", err)
	}
	return nil
}

func (s *MediaService) ensureOwner(ctx context.Context, userID uint, courseSlug string) error {
	course, err := s.courses.FindBySlug(ctx, courseSlug)
	if err != nil {
		return fromStore("find course", err, "Course not found")
	}
	return ensureOwner(course, userID)
}

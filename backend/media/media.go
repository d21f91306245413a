// Package media stores course images and lesson videos in object storage.
package media

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strings"

	"scholarly/backend/models"

	"github.com/google/uuid"
)

var ErrInvalidDataURL = errors.New("invalid image data")

// Storage puts and removes objects in the configured bucket.
type Storage interface {
	Put(ctx context.Context, key, contentType string, body io.Reader, size int64) (models.Asset, error)
	Delete(ctx context.Context, asset models.Asset) error
}

var dataURLPattern = regexp.MustCompile(`^data:image/([a-zA-Z0-9.+-]+);base64,(.+)$`)

// Image is a decoded base64 data URL.
type Image struct {
	Extension   string
	ContentType string
	Data        []byte
}

// ParseDataURL decodes "data:image/<type>;base64,<payload>".
func ParseDataURL(dataURL string) (*Image, error) {
	m := dataURLPattern.FindStringSubmatch(strings.TrimSpace(dataURL))
	if m == nil {
		return nil, ErrInvalidDataURL
	}
	data, err := base64.StdEncoding.DecodeString(m[2])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDataURL, err)
	}
	ext := strings.ToLower(m[1])
	return &Image{
		Extension:   ext,
		ContentType: "image/" + ext,
		Data:        data,
	}, nil
}

// NewKey returns a random object key that keeps the extension of name.
func NewKey(name string) string {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), ".")
	if ext == "" {
		return uuid.NewString()
	}
	return uuid.NewString() + "." + ext
}

package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	apperrors "micasa/internal/errors"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// DefaultMaxImageBytes is the per-file upload cap.
const DefaultMaxImageBytes int64 = 5 << 20

var allowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// Upload is one file taken from a multipart form.
type Upload struct {
	Filename string
	Open     func() (io.ReadCloser, error)
}

// Images validates uploaded images and stores them under generated keys.
type Images struct {
	store    Storage
	maxBytes int64
}

// NewImages creates an image store. A non-positive maxBytes selects DefaultMaxImageBytes.
func NewImages(store Storage, maxBytes int64) *Images {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxImageBytes
	}
	return &Images{store: store, maxBytes: maxBytes}
}

// MaxBytes returns the per-file cap.
func (i *Images) MaxBytes() int64 {
	return i.maxBytes
}

// Save checks size and content type of r and stores it, returning the new key.
func (i *Images) Save(ctx context.Context, r io.Reader) (string, error) {
	data, err := io.ReadAll(io.LimitReader(r, i.maxBytes+1))
	if err != nil {
		return "", fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > i.maxBytes {
		return "", apperrors.ErrFileTooLarge
	}

	mtype := mimetype.Detect(data)
	contentType := strings.SplitN(mtype.String(), ";", 2)[0]
	ext, ok := allowedImageTypes[contentType]
	if !ok {
		return "", apperrors.ErrUnsupportedFileType
	}

	key := uuid.NewString() + ext
	if err := i.store.Put(ctx, key, bytes.NewReader(data), int64(len(data)), contentType); err != nil {
		return "", fmt.Errorf("store image: %w", err)
	}
	return key, nil
}

// SaveAll stores every upload or none of them.
func (i *Images) SaveAll(ctx context.Context, uploads []Upload) ([]string, error) {
	keys := make([]string, 0, len(uploads))
	for _, u := range uploads {
		key, err := i.saveUpload(ctx, u)
		if err != nil {
			i.DeleteAll(ctx, keys)
			return nil, err
		}
		keys = append(keys, key)
	}
	return keys, nil
}

func (i *Images) saveUpload(ctx context.Context, u Upload) (string, error) {
	f, err := u.Open()
	if err != nil {
		return "", fmt.Errorf("open %s: %w", u.Filename, err)
	}
	defer f.Close()
	return i.Save(ctx, f)
}

// DeleteAll removes keys, logging failures instead of returning them.
func (i *Images) DeleteAll(ctx context.Context, keys []string) int {
	failed := 0
	for _, key := range keys {
		if err := i.store.Delete(ctx, key); err != nil {
			failed++
			log.WithError(err).WithField("key", key).Warn("failed to delete stored image")
		}
	}
	return failed
}

// Open returns a stored image for serving.
func (i *Images) Open(ctx context.Context, key string) (*Object, error) {
	if !ValidKey(key) {
		return nil, apperrors.ErrObjectNotFound
	}
	return i.store.Get(ctx, key)
}

// ValidKey reports whether key is a plain generated file name.
func ValidKey(key string) bool {
	return key != "" && !strings.Contains(key, "/") && !strings.Contains(key, "\\") && !strings.Contains(key, "..")
}

// PublicURL builds the URL the uploads route serves key from.
func PublicURL(baseURL, key string) string {
	if key == "" {
		return ""
	}
	return strings.TrimRight(baseURL, "/") + "/uploads/" + key
}

// PublicURLs maps keys to their public URLs.
func PublicURLs(baseURL string, keys []string) []string {
	urls := make([]string, 0, len(keys))
	for _, k := range keys {
		urls = append(urls, PublicURL(baseURL, k))
	}
	return urls
}

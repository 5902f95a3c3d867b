// Package storage uploads reward artwork to a Cloud Storage bucket.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
)

// ErrDisabled is returned when no bucket is configured.
var ErrDisabled = errors.New("image storage is not configured")

type ImageStore interface {
	// Upload writes body to objectPath and returns a URL clients can fetch.
	Upload(ctx context.Context, objectPath, contentType string, body io.Reader) (string, error)
}

type GCSImageStore struct {
	client *storage.Client
	bucket string
}

// NewGCSImageStore uses application default credentials. An empty bucket
// yields a store whose uploads fail with ErrDisabled.
func NewGCSImageStore(ctx context.Context, bucket string) (ImageStore, func() error, error) {
	if bucket == "" {
		return disabled{}, func() error { return nil }, nil
	}
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("storage client: %w", err)
	}
	return &GCSImageStore{client: client, bucket: bucket}, client.Close, nil
}

func (s *GCSImageStore) Upload(ctx context.Context, objectPath, contentType string, body io.Reader) (string, error) {
	objectPath = strings.TrimPrefix(objectPath, "/")
	token := uuid.NewString()
	w := s.client.Bucket(s.bucket).Object(objectPath).NewWriter(ctx)
	w.ContentType = contentType
	w.CacheControl = "public, max-age=86400"
	w.Metadata = map[string]string{
		"firebaseStorageDownloadTokens": token,
	}
	if _, err := io.Copy(w, body); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("write object: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("close object: %w", err)
	}
	return PublicURL(s.bucket, objectPath, token), nil
}

// PublicURL builds the token-bearing download URL for an uploaded object.
func PublicURL(bucket, objectPath, token string) string {
	return fmt.Sprintf("https://firebasestorage.googleapis.com/v0/b/%s/o/%s?alt=media&token=%s",
		bucket, url.PathEscape(objectPath), token)
}

type disabled struct{}

func (disabled) Upload(context.Context, string, string, io.Reader) (string, error) {
	return "", ErrDisabled
}

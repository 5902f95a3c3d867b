package storage

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestPublicURL(t *testing.T) {
	tests := []struct {
		name   string
		bucket string
		path   string
		token  string
		want   string
	}{
		{
			name:   "escapes nested path",
			bucket: "arena-assets",
			path:   "rewards/abc/photo.png",
			token:  "tok",
			want:   "https://firebasestorage.googleapis.com/v0/b/arena-assets/o/rewards%2Fabc%2Fphoto.png?alt=media&token=tok",
		},
		{
			name:   "flat path",
			bucket: "b",
			path:   "x.jpg",
			token:  "t",
			want:   "https://firebasestorage.googleapis.com/v0/b/b/o/x.jpg?alt=media&token=t",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PublicURL(tt.bucket, tt.path, tt.token); got != tt.want {
				t.Fatalf("PublicURL() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNewGCSImageStoreWithoutBucket(t *testing.T) {
	store, closeFn, err := NewGCSImageStore(context.Background(), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer closeFn()
	_, err = store.Upload(context.Background(), "rewards/x.png", "image/png", strings.NewReader("png"))
	if !errors.Is(err, ErrDisabled) {
		t.Fatalf("expected ErrDisabled, got %v", err)
	}
}

package storage

import (
	"context"
	"fmt"
	"io"
	"path"

	"github.com/noah-isme/survey-api/pkg/objectstore"
)

// Image identifies an uploaded image.
type Image struct {
	URL      string `json:"url"`
	PublicID string `json:"public_id"`
}

// BucketImageStore keeps images in an object-store bucket.
type BucketImageStore struct {
	bucket objectstore.Bucket
	prefix string
}

// NewBucketImageStore stores images under prefix inside bucket.
func NewBucketImageStore(bucket objectstore.Bucket, prefix string) *BucketImageStore {
	return &BucketImageStore{bucket: bucket, prefix: prefix}
}

func (s *BucketImageStore) Upload(ctx context.Context, publicID string, r io.Reader, size int64, contentType string) (Image, error) {
	key := s.key(publicID)
	if err := s.bucket.Put(ctx, key, r, size, contentType); err != nil {
		return Image{}, fmt.Errorf("upload image: %w", err)
	}
	return Image{URL: s.bucket.URL(key), PublicID: publicID}, nil
}

func (s *BucketImageStore) Delete(ctx context.Context, publicID string) error {
	if err := s.bucket.Remove(ctx, s.key(publicID)); err != nil {
		return fmt.Errorf("delete image: %w", err)
	}
	return nil
}

func (s *BucketImageStore) key(publicID string) string {
	if s.prefix == "" {
		return publicID
	}
	return path.Join(s.prefix, publicID)
}

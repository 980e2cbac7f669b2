package utils

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"cloud.google.com/go/storage"
)

// FileStore accepts an uploaded image and returns a stable reference
// string. The rest of the system only ever stores that reference.
type FileStore interface {
	Save(ctx context.Context, filename string, r io.Reader) (string, error)
}

// NewFileStoreFromEnv picks GCS when GCS_BUCKET is set, local disk
// otherwise.
func NewFileStoreFromEnv(ctx context.Context) (FileStore, error) {
	if bucket := os.Getenv("GCS_BUCKET"); bucket != "" {
		client, err := storage.NewClient(ctx)
		if err != nil {
			return nil, fmt.Errorf("connect Google Cloud Storage: %w", err)
		}
		if _, err := client.Bucket(bucket).Attrs(ctx); err != nil {
			return nil, fmt.Errorf("access bucket %s: %w", bucket, err)
		}
		log.Printf("Using GCS bucket %s for uploads", bucket)
		return &GCSFileStore{client: client, bucket: bucket}, nil
	}

	dir := os.Getenv("UPLOADS_DIR")
	if dir == "" {
		dir = "uploads"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &DiskFileStore{Dir: dir}, nil
}

// DiskFileStore writes uploads into a local directory served statically
// under /uploads.
type DiskFileStore struct {
	Dir string
}

func (s *DiskFileStore) Save(_ context.Context, filename string, r io.Reader) (string, error) {
	name := uniqueName(filename)

	f, err := os.Create(filepath.Join(s.Dir, name))
	if err != nil {
		return "", err
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		return "", err
	}
	return "/uploads/" + name, nil
}

// GCSFileStore writes uploads into a Google Cloud Storage bucket and
// returns the public object URL.
type GCSFileStore struct {
	client *storage.Client
	bucket string
}

func (s *GCSFileStore) Save(ctx context.Context, filename string, r io.Reader) (string, error) {
	name := uniqueName(filename)

	w := s.client.Bucket(s.bucket).Object(name).NewWriter(ctx)
	if _, err := io.Copy(w, r); err != nil {
		w.Close()
		return "", err
	}
	if err := w.Close(); err != nil {
		return "", err
	}
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", s.bucket, name), nil
}

func uniqueName(filename string) string {
	ext := filepath.Ext(filename)
	base := strings.TrimSuffix(filepath.Base(filename), ext)
	return fmt.Sprintf("%s-%d%s", base, time.Now().UnixNano(), ext)
}

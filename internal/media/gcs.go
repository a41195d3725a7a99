package media

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// GCSUploader writes videos to a Cloud Storage bucket under a prefix.
type GCSUploader struct {
	client       *storage.Client
	bucket       string
	prefix       string
	emulatorHost string
}

// NewGCSUploader connects to Cloud Storage with default credentials, or
// without authentication when emulatorHost is set.
func NewGCSUploader(ctx context.Context, bucket, prefix, emulatorHost string) (*GCSUploader, error) {
	if strings.TrimSpace(bucket) == "" {
		return nil, fmt.Errorf("gcs bucket is required")
	}
	var opts []option.ClientOption
	emulatorHost = strings.TrimRight(strings.TrimSpace(emulatorHost), "/")
	if emulatorHost != "" {
		opts = append(opts, option.WithoutAuthentication(), option.WithEndpoint(emulatorHost+"/storage/v1/"))
	} else {
		opts = append(opts, option.WithScopes(storage.ScopeReadWrite))
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}
	return &GCSUploader{client: client, bucket: bucket, prefix: strings.Trim(prefix, "/"), emulatorHost: emulatorHost}, nil
}

func (u *GCSUploader) Upload(ctx context.Context, key string, r io.Reader) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Minute)
	defer cancel()

	object := u.objectName(key)
	w := u.client.Bucket(u.bucket).Object(object).NewWriter(ctx)
	if ct := ContentTypeForKey(object); ct != "" {
		w.ContentType = ct
	}
	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("write %s to gcs: %w", object, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("close gcs writer: %w", err)
	}
	return u.PublicURL(key), nil
}

// PublicURL is where an uploaded key can be played from.
func (u *GCSUploader) PublicURL(key string) string {
	object := u.objectName(key)
	if u.emulatorHost != "" {
		return fmt.Sprintf("%s/%s/%s", u.emulatorHost, u.bucket, object)
	}
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", u.bucket, object)
}

func (u *GCSUploader) Close() error { return u.client.Close() }

func (u *GCSUploader) objectName(key string) string {
	key = strings.TrimLeft(strings.TrimSpace(key), "/")
	if u.prefix == "" {
		return key
	}
	return path.Join(u.prefix, key)
}

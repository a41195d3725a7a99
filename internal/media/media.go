// Package media stores lesson videos and returns the URL they play from.
package media

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// Uploader stores a video under key and returns a playable URL. Callers
// treat the URL as opaque.
type Uploader interface {
	Upload(ctx context.Context, key string, r io.Reader) (string, error)
}

// ObjectKey builds the storage key for a lesson's video file.
func ObjectKey(lessonID, filename string) string {
	base := path.Base(filepath.ToSlash(strings.TrimSpace(filename)))
	if base == "." || base == "/" {
		base = "video"
	}
	return path.Join(lessonID, base)
}

// ContentTypeForKey picks a content type from the key's extension, or ""
// when it is not a known media type.
func ContentTypeForKey(key string) string {
	s := strings.ToLower(strings.TrimSpace(key))
	if i := strings.Index(s, "?"); i >= 0 {
		s = s[:i]
	}
	switch {
	case strings.HasSuffix(s, ".mp4"), strings.HasSuffix(s, ".m4v"):
		return "video/mp4"
	case strings.HasSuffix(s, ".webm"):
		return "video/webm"
	case strings.HasSuffix(s, ".mov"):
		return "video/quicktime"
	case strings.HasSuffix(s, ".m3u8"):
		return "application/vnd.apple.mpegurl"
	case strings.HasSuffix(s, ".vtt"):
		return "text/vtt"
	case strings.HasSuffix(s, ".png"):
		return "image/png"
	case strings.HasSuffix(s, ".jpg"), strings.HasSuffix(s, ".jpeg"):
		return "image/jpeg"
	}
	return ""
}

// LocalUploader copies videos into a directory.
type LocalUploader struct {
	Dir     string
	BaseURL string
}

func (u *LocalUploader) Upload(ctx context.Context, key string, r io.Reader) (string, error) {
	key = strings.TrimLeft(path.Clean("/"+key), "/")
	if key == "" {
		return "", fmt.Errorf("empty media key")
	}
	dst := filepath.Join(u.Dir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", fmt.Errorf("create media dir: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dst), ".upload-*")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, &ctxReader{ctx: ctx, r: r}); err != nil {
		tmp.Close()
		return "", fmt.Errorf("write %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		return "", err
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		return "", fmt.Errorf("move %s into place: %w", key, err)
	}
	return strings.TrimRight(u.BaseURL, "/") + "/" + key, nil
}

// ctxReader stops a copy once ctx is done.
type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}

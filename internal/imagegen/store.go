package imagegen

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/moodlog-backend/internal/platform/dbctx"
	"github.com/yungbote/moodlog-backend/internal/platform/gcp"
)

// ImageStore turns a provider payload into a durable reference.
type ImageStore interface {
	Save(ctx context.Context, provider string, img Image) (string, error)
}

func sniffMime(img Image) string {
	if mt := strings.TrimSpace(strings.SplitN(img.MimeType, ";", 2)[0]); mt != "" {
		return mt
	}
	return http.DetectContentType(img.Bytes)
}

// InlineStore encodes byte payloads as data: URLs. Used when no bucket is
// configured.
type InlineStore struct {
	MaxBytes int
}

func (s InlineStore) Save(_ context.Context, _ string, img Image) (string, error) {
	if len(img.Bytes) == 0 {
		if img.URL == "" {
			return "", ErrEmptyImage
		}
		return img.URL, nil
	}
	if s.MaxBytes > 0 && len(img.Bytes) > s.MaxBytes {
		return "", fmt.Errorf("inline image too large: %d bytes (max %d)", len(img.Bytes), s.MaxBytes)
	}
	return "data:" + sniffMime(img) + ";base64," + base64.StdEncoding.EncodeToString(img.Bytes), nil
}

// BucketStore uploads byte payloads to object storage and returns their
// public URL. URL payloads pass through untouched.
type BucketStore struct {
	Bucket gcp.BucketService
	Prefix string
	Now    func() time.Time
}

func (s *BucketStore) Save(ctx context.Context, provider string, img Image) (string, error) {
	if len(img.Bytes) == 0 {
		if img.URL == "" {
			return "", ErrEmptyImage
		}
		return img.URL, nil
	}
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	prefix := strings.Trim(s.Prefix, "/")
	if prefix == "" {
		prefix = "mood_images"
	}
	mime := sniffMime(img)
	key := fmt.Sprintf("%s/%s/%s/%s%s",
		prefix,
		now().UTC().Format("2006/01/02"),
		sanitizeKeySegment(provider),
		uuid.NewString(),
		gcp.ExtensionForContentType(mime),
	)
	if err := s.Bucket.UploadFile(dbctx.Context{Ctx: ctx}, key, bytes.NewReader(img.Bytes), mime); err != nil {
		return "", err
	}
	return s.Bucket.GetPublicURL(key), nil
}

func sanitizeKeySegment(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return "unknown"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '.':
			return r
		default:
			return '_'
		}
	}, s)
}

package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"cofounder/pkg/api"
	"cofounder/pkg/logger"
	"cofounder/pkg/metrics"
)

// UploadService enforces the attachment policy before handing bytes to a BlobStore.
type UploadService struct {
	blobs BlobStore
	log   *logger.Logger
}

func NewUploadService(blobs BlobStore, log *logger.Logger) *UploadService {
	return &UploadService{blobs: blobs, log: log.With("service", "Upload", "backend", blobs.Backend())}
}

// Upload stores body under key. The key must live under the caller's own prefix and the
// sniffed content type must be one of api.AllowedMIMETypes.
func (s *UploadService) Upload(ctx context.Context, userID, key string, body io.Reader) (*api.UploadResponse, error) {
	if err := ValidateKey(key); err != nil {
		return nil, err
	}
	if !strings.HasPrefix(key, userID+"/") {
		return nil, fmt.Errorf("%w: key must start with %s/", ErrForbidden, userID)
	}

	data, err := io.ReadAll(io.LimitReader(body, api.MaxUploadBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read upload body: %w", err)
	}
	if len(data) > api.MaxUploadBytes {
		return nil, ErrTooLarge
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty upload", ErrInvalidInput)
	}
	contentType, ok := DetectAllowed(data)
	if !ok {
		s.log.Warn("Rejected upload", "user_id", userID, "detected", mimetype.Detect(data).String())
		metrics.Uploads.WithLabelValues(s.blobs.Backend(), "rejected").Inc()
		return nil, ErrUnsupportedType
	}

	if err := s.blobs.Put(ctx, key, bytes.NewReader(data), contentType); err != nil {
		metrics.Uploads.WithLabelValues(s.blobs.Backend(), "error").Inc()
		return nil, err
	}
	metrics.Uploads.WithLabelValues(s.blobs.Backend(), "ok").Inc()
	s.log.Debug("Stored object", "key", key, "bytes", len(data), "type", contentType)
	return &api.UploadResponse{Key: key, PublicURL: s.blobs.PublicURL(key)}, nil
}

// DetectAllowed sniffs data and returns its MIME type if uploads of that type are allowed.
func DetectAllowed(data []byte) (string, bool) {
	m := mimetype.Detect(data)
	for _, allowed := range api.AllowedMIMETypes {
		if m.Is(allowed) {
			return allowed, true
		}
	}
	return m.String(), false
}

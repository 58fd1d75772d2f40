package service

import (
	"context"
	"errors"
	"io"
	"mime"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/skateflow-api/internal/models"
	appErrors "github.com/noah-isme/skateflow-api/pkg/errors"
	"github.com/noah-isme/skateflow-api/pkg/storage"
)

type photoStorage interface {
	SaveStream(name string, r io.Reader, limit int64) (int64, error)
	Open(name string) (*os.File, error)
	Delete(name string) error
}

const photoPrefix = "photos/"

type urlSigner interface {
	Generate(ref string) (string, time.Time, error)
	Parse(token string) (string, time.Time, error)
}

// MediaConfig tunes photo uploads.
type MediaConfig struct {
	APIPrefix    string
	MaxFileSize  int64
	AllowedMIMEs []string
}

// MediaService stores uploaded photos and issues signed download links. The
// returned reference is what skater and instructor records keep.
type MediaService struct {
	storage photoStorage
	signer  urlSigner
	cfg     MediaConfig
	allowed map[string]struct{}
	logger  *zap.Logger
}

// NewMediaService constructs the media service.
func NewMediaService(store photoStorage, signer urlSigner, cfg MediaConfig, logger *zap.Logger) *MediaService {
	if cfg.MaxFileSize <= 0 {
		cfg.MaxFileSize = 5 * 1024 * 1024
	}
	if len(cfg.AllowedMIMEs) == 0 {
		cfg.AllowedMIMEs = []string{"image/jpeg", "image/png", "image/webp"}
	}
	allowed := make(map[string]struct{}, len(cfg.AllowedMIMEs))
	for _, m := range cfg.AllowedMIMEs {
		allowed[strings.ToLower(m)] = struct{}{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MediaService{storage: store, signer: signer, cfg: cfg, allowed: allowed, logger: logger}
}

// UploadPhoto validates and stores a photo under photos/<uuid><ext>.
func (s *MediaService) UploadPhoto(ctx context.Context, filename, contentType string, r io.Reader, size int64) (*models.PhotoUpload, error) {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrUnsupportedMedia, "missing or invalid content type")
	}
	mediaType = strings.ToLower(mediaType)
	if _, ok := s.allowed[mediaType]; !ok {
		return nil, appErrors.Clone(appErrors.ErrUnsupportedMedia, "photo must be one of "+strings.Join(s.cfg.AllowedMIMEs, ", "))
	}
	if size > s.cfg.MaxFileSize {
		return nil, appErrors.Clone(appErrors.ErrPayloadTooLarge, "photo exceeds maximum size")
	}

	ref := path.Join(strings.TrimSuffix(photoPrefix, "/"), uuid.NewString()+photoExtension(filename, mediaType))
	written, err := s.storage.SaveStream(ref, r, s.cfg.MaxFileSize)
	if err != nil {
		if errors.Is(err, storage.ErrTooLarge) {
			return nil, appErrors.Clone(appErrors.ErrPayloadTooLarge, "photo exceeds maximum size")
		}
		return nil, appErrors.Internal(err, "failed to store photo")
	}

	token, expiresAt, err := s.signer.Generate(ref)
	if err != nil {
		if delErr := s.storage.Delete(ref); delErr != nil {
			s.logger.Warn("failed to remove unsigned photo", zap.String("reference", ref), zap.Error(delErr))
		}
		return nil, appErrors.Internal(err, "failed to sign photo url")
	}
	s.logger.Info("photo stored", zap.String("reference", ref), zap.Int64("size", written))
	return &models.PhotoUpload{
		Reference:   ref,
		ContentType: mediaType,
		Size:        written,
		URL:         s.downloadURL(token),
		ExpiresAt:   expiresAt,
	}, nil
}

// SignedURL issues a fresh download link for a reference returned by
// UploadPhoto. Other photo values are client supplied and get no link.
func (s *MediaService) SignedURL(ctx context.Context, ref string) (string, time.Time, error) {
	if s == nil {
		return "", time.Time{}, appErrors.Clone(appErrors.ErrFeatureDisabled, "media uploads are disabled")
	}
	if !strings.HasPrefix(ref, photoPrefix) {
		return "", time.Time{}, appErrors.Clone(appErrors.ErrValidation, "not a stored photo reference")
	}
	token, expiresAt, err := s.signer.Generate(ref)
	if err != nil {
		return "", time.Time{}, appErrors.Validation(err, "invalid photo reference")
	}
	return s.downloadURL(token), expiresAt, nil
}

// Resolve validates a signed token and opens the referenced photo. The
// caller closes the returned file.
func (s *MediaService) Resolve(ctx context.Context, token string) (*os.File, string, error) {
	ref, _, err := s.signer.Parse(token)
	if err != nil {
		return nil, "", appErrors.Clone(appErrors.ErrNotFound, "photo link invalid or expired")
	}
	file, err := s.storage.Open(ref)
	if err != nil {
		return nil, "", appErrors.Clone(appErrors.ErrNotFound, "photo not found")
	}
	contentType := mime.TypeByExtension(filepath.Ext(ref))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return file, contentType, nil
}

func (s *MediaService) downloadURL(token string) string {
	return strings.TrimRight(s.cfg.APIPrefix, "/") + "/media/photos/" + token
}

func photoExtension(filename, mediaType string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".jpg", ".jpeg", ".png", ".webp":
		return ext
	}
	switch mediaType {
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	default:
		return ".jpg"
	}
}

package service

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/learnhub/proctor-backend/internal/model"
	"github.com/rs/zerolog"
)

// Upload errors, mapped to FILE_* responses by the handlers.
var (
	ErrFileTooLarge    = errors.New("file exceeds the size limit")
	ErrInvalidFileType = errors.New("unsupported file type")
)

var mediaKindByExt = map[string]model.MediaKind{
	".jpg":  model.MediaKindImage,
	".jpeg": model.MediaKindImage,
	".png":  model.MediaKindImage,
	".webp": model.MediaKindImage,
	".mp4":  model.MediaKindVideo,
	".webm": model.MediaKindVideo,
}

// MediaService stores uploaded question media on disk and encodes face
// snapshots for storage. Files land under uploadDir with random names and
// are served back through the static /uploads route.
type MediaService struct {
	uploadDir string
	maxBytes  int64
	log       zerolog.Logger
}

// NewMediaService creates a MediaService, ensuring the upload directory
// exists.
func NewMediaService(uploadDir string, maxBytes int64, log zerolog.Logger) (*MediaService, error) {
	if err := os.MkdirAll(uploadDir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &MediaService{
		uploadDir: uploadDir,
		maxBytes:  maxBytes,
		log:       log.With().Str("component", "media_service").Logger(),
	}, nil
}

// SaveUpload persists a multipart file and returns its media reference.
func (s *MediaService) SaveUpload(fh *multipart.FileHeader) (*model.Media, error) {
	if fh.Size > s.maxBytes {
		return nil, ErrFileTooLarge
	}

	ext := strings.ToLower(filepath.Ext(fh.Filename))
	kind, ok := mediaKindByExt[ext]
	if !ok {
		return nil, ErrInvalidFileType
	}

	name := uuid.New().String() + ext
	dst := filepath.Join(s.uploadDir, name)

	src, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	out, err := os.Create(dst)
	if err != nil {
		return nil, fmt.Errorf("create upload file: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, src); err != nil {
		os.Remove(dst)
		return nil, fmt.Errorf("write upload: %w", err)
	}

	s.log.Debug().Str("file", name).Str("kind", string(kind)).Msg("Upload stored")
	return &model.Media{Kind: kind, Locator: "/uploads/" + name}, nil
}

// EncodeSnapshot reads a face capture and returns it base64-encoded for
// storage alongside the session.
func (s *MediaService) EncodeSnapshot(fh *multipart.FileHeader) (string, error) {
	if fh.Size > s.maxBytes {
		return "", ErrFileTooLarge
	}

	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if kind, ok := mediaKindByExt[ext]; !ok || kind != model.MediaKindImage {
		return "", ErrInvalidFileType
	}

	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open snapshot: %w", err)
	}
	defer src.Close()

	raw, err := io.ReadAll(io.LimitReader(src, s.maxBytes+1))
	if err != nil {
		return "", fmt.Errorf("read snapshot: %w", err)
	}
	if int64(len(raw)) > s.maxBytes {
		return "", ErrFileTooLarge
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}

// SaveSnapshotFile persists a violation evidence capture to disk and returns
// its locator.
func (s *MediaService) SaveSnapshotFile(fh *multipart.FileHeader) (string, error) {
	media, err := s.SaveUpload(fh)
	if err != nil {
		return "", err
	}
	return media.Locator, nil
}

package asset

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sharath018/temple-waste-backend/internal/apperr"
)

// LocalStore writes assets to disk under dir; they are served at
// <publicBaseURL>/uploads/<bucket>/<object path>.
type LocalStore struct {
	dir           string
	publicBaseURL string
	now           func() time.Time
	log           *zap.SugaredLogger
}

func NewLocalStore(dir, publicBaseURL string, log *zap.SugaredLogger) *LocalStore {
	return &LocalStore{
		dir:           dir,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
		now:           time.Now,
		log:           log.With("service", "LocalAssetStore"),
	}
}

func (s *LocalStore) Dir() string { return s.dir }

func (s *LocalStore) Store(ctx context.Context, bucket, pathHint, fileName string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", apperr.Wrap(apperr.KindUploadFailed, err, "upload cancelled")
	}
	if len(data) == 0 {
		return "", apperr.Validation("file is empty")
	}
	b := SanitizePathSegment(bucket)
	if b == "" {
		return "", apperr.Validation("bucket is required")
	}
	object := BuildObjectPath(pathHint, fileName, s.now())
	full := filepath.Join(s.dir, b, filepath.FromSlash(object))

	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", apperr.Wrap(apperr.KindUploadFailed, err, "create upload directory")
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return "", apperr.Wrap(apperr.KindUploadFailed, err, "write upload")
	}
	s.log.Infow("asset stored", "bucket", b, "object", object, "bytes", len(data))
	return s.publicBaseURL + "/uploads/" + b + "/" + object, nil
}

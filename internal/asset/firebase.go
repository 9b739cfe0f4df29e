package asset

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"cloud.google.com/go/storage"
	firebase "firebase.google.com/go/v4"
	"go.uber.org/zap"

	"github.com/sharath018/temple-waste-backend/internal/apperr"
)

// FirebaseStore uploads into one Firebase Storage bucket. The logical bucket
// (temple-images, ngo-logos) becomes the first path segment of the object.
type FirebaseStore struct {
	bucket     *storage.BucketHandle
	bucketName string
	now        func() time.Time
	log        *zap.SugaredLogger
}

func NewFirebaseStore(ctx context.Context, app *firebase.App, bucketName string, log *zap.SugaredLogger) (*FirebaseStore, error) {
	if app == nil {
		return nil, fmt.Errorf("firebase app not initialized")
	}
	client, err := app.Storage(ctx)
	if err != nil {
		return nil, fmt.Errorf("firebase storage client: %w", err)
	}
	bh, err := client.Bucket(bucketName)
	if err != nil {
		return nil, fmt.Errorf("firebase bucket %q: %w", bucketName, err)
	}
	return &FirebaseStore{
		bucket:     bh,
		bucketName: bucketName,
		now:        time.Now,
		log:        log.With("service", "FirebaseAssetStore"),
	}, nil
}

func (s *FirebaseStore) Store(ctx context.Context, bucket, pathHint, fileName string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", apperr.Validation("file is empty")
	}
	b := SanitizePathSegment(bucket)
	if b == "" {
		return "", apperr.Validation("bucket is required")
	}
	object := b + "/" + BuildObjectPath(pathHint, fileName, s.now())

	w := s.bucket.Object(object).NewWriter(ctx)
	w.ContentType = contentType(fileName)
	w.CacheControl = "public, max-age=3600"
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return "", apperr.Wrap(apperr.KindUploadFailed, err, "write object")
	}
	if err := w.Close(); err != nil {
		return "", apperr.Wrap(apperr.KindUploadFailed, err, "finalize object")
	}

	s.log.Infow("asset stored", "bucket", s.bucketName, "object", object, "bytes", len(data))
	return PublicURL(s.bucketName, object), nil
}

// PublicURL is the download URL Firebase serves for an object.
func PublicURL(bucketName, object string) string {
	return fmt.Sprintf("https://firebasestorage.googleapis.com/v0/b/%s/o/%s?alt=media",
		bucketName, url.PathEscape(object))
}

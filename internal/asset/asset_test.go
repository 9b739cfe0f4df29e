package asset

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sharath018/temple-waste-backend/internal/apperr"
)

func TestSanitizePathSegment(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Green Earth NGO", "Green_Earth_NGO"},
		{"logo (final).PNG", "logo__final_.PNG"},
		{"a/b\\c", "a_b_c"},
		{"../etc/passwd", "_etc_passwd"},
		{"..", ""},
		{"ok-name_1.jpg", "ok-name_1.jpg"},
		{"ஸ்ரீ", "____"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SanitizePathSegment(tt.in), tt.in)
	}
}

func TestBuildObjectPath(t *testing.T) {
	now := time.Unix(1735689600, 42)

	assert.Equal(t, "Temple_01/1735689600000000042-front_view.jpg", BuildObjectPath("Temple 01", "front view.jpg", now))
	assert.Equal(t, "misc/1735689600000000042-file", BuildObjectPath("", "", now))
}

func TestLocalStoreWritesUnderBucket(t *testing.T) {
	dir := t.TempDir()
	s := NewLocalStore(dir, "http://cdn.local/", zap.NewNop().Sugar())
	s.now = func() time.Time { return time.Unix(0, 7) }

	ref, err := s.Store(context.Background(), "temple-images", "01", "img.png", []byte("png"))
	require.NoError(t, err)
	assert.Equal(t, "http://cdn.local/uploads/temple-images/01/7-img.png", ref)

	b, err := os.ReadFile(filepath.Join(dir, "temple-images", "01", "7-img.png"))
	require.NoError(t, err)
	assert.Equal(t, "png", string(b))
}

func TestLocalStoreRejectsEmptyFile(t *testing.T) {
	s := NewLocalStore(t.TempDir(), "", zap.NewNop().Sugar())

	_, err := s.Store(context.Background(), "ngo-logos", "x", "a.png", nil)
	assert.True(t, errors.Is(err, apperr.ErrValidation))
}

func TestLocalStoreReportsUploadFailure(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "ngo-logos")
	require.NoError(t, os.WriteFile(blocker, []byte("not a dir"), 0o644))
	s := NewLocalStore(dir, "", zap.NewNop().Sugar())

	_, err := s.Store(context.Background(), "ngo-logos", "x", "a.png", []byte("x"))
	assert.True(t, errors.Is(err, apperr.ErrUploadFailed))
}

func TestPublicURLEscapesObject(t *testing.T) {
	assert.Equal(t,
		"https://firebasestorage.googleapis.com/v0/b/app.appspot.com/o/ngo-logos%2Fx%2F1-a.png?alt=media",
		PublicURL("app.appspot.com", "ngo-logos/x/1-a.png"))
}

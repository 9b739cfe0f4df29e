package asset

import (
	"io"
	"mime/multipart"

	"github.com/sharath018/temple-waste-backend/internal/apperr"
)

// MaxUploadBytes caps a single image or logo.
const MaxUploadBytes = 5 << 20

// ReadUpload loads a multipart file into memory, refusing anything over
// MaxUploadBytes.
func ReadUpload(fh *multipart.FileHeader) (string, []byte, error) {
	if fh == nil {
		return "", nil, apperr.Validation("file is required")
	}
	if fh.Size > MaxUploadBytes {
		return "", nil, apperr.Validation("file exceeds %d bytes", MaxUploadBytes)
	}
	f, err := fh.Open()
	if err != nil {
		return "", nil, apperr.Wrap(apperr.KindValidation, err, "open upload")
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, MaxUploadBytes+1))
	if err != nil {
		return "", nil, apperr.Wrap(apperr.KindValidation, err, "read upload")
	}
	if len(data) > MaxUploadBytes {
		return "", nil, apperr.Validation("file exceeds %d bytes", MaxUploadBytes)
	}
	return fh.Filename, data, nil
}

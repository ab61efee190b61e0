package validators

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	pkgerrors "github.com/breaddesk/breaddesk-backend/pkg/errors"
	"github.com/breaddesk/breaddesk-backend/pkg/storage"
)

var allowedImageMIMEs = map[string]struct{}{
	"image/jpeg": {},
	"image/jpg":  {},
	"image/png":  {},
	"image/webp": {},
	"image/gif":  {},
}

// ParseMultipart parses the multipart form, bounding the in-memory size.
func ParseMultipart(r *http.Request, maxBytes int64) error {
	if err := r.ParseMultipartForm(maxBytes); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid multipart form")
	}
	return nil
}

// FormImage extracts the named file part and enforces the accepted image
// types. Returns nil without error when the part is absent and not required.
func FormImage(r *http.Request, field string, required bool) (*storage.File, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || r.MultipartForm == nil {
			if !required {
				return nil, nil
			}
			return nil, pkgerrors.New(pkgerrors.CodeValidation, field+" file is required")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid file upload")
	}

	declared := strings.ToLower(strings.TrimSpace(header.Header.Get("Content-Type")))

	// Sniff the real payload; the declared type alone is client-controlled.
	head := make([]byte, 512)
	n, readErr := io.ReadFull(file, head)
	if readErr != nil && readErr != io.ErrUnexpectedEOF && readErr != io.EOF {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, readErr, "unreadable file upload")
	}
	sniffed := strings.ToLower(http.DetectContentType(head[:n]))

	_, sniffedOK := allowedImageMIMEs[sniffed]
	_, declaredOK := allowedImageMIMEs[declared]

	var contentType string
	switch {
	case sniffedOK:
		contentType = sniffed
	case sniffed == "application/octet-stream" && declaredOK:
		// Payload too short or ambiguous to sniff; fall back to the declared type.
		contentType = declared
	default:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "file must be a jpeg, jpg, png, webp, or gif image").
			WithDetails(map[string]any{"field": field, "content_type": declared, "detected_type": sniffed})
	}

	return &storage.File{
		Name:        header.Filename,
		ContentType: contentType,
		Reader:      io.MultiReader(bytes.NewReader(head[:n]), file),
	}, nil
}

// FormString reads a trimmed multipart form value.
func FormString(r *http.Request, field string) string {
	return strings.TrimSpace(r.FormValue(field))
}

// FormOptionalString distinguishes an absent field (nil) from a present one.
func FormOptionalString(r *http.Request, field string) *string {
	if r.MultipartForm == nil {
		return nil
	}
	values, ok := r.MultipartForm.Value[field]
	if !ok || len(values) == 0 {
		return nil
	}
	value := strings.TrimSpace(values[0])
	return &value
}

// FormID reads a required positive-integer form value.
func FormID(r *http.Request, field string) (uint, error) {
	raw := FormString(r, field)
	value, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || value == 0 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, field+" must be a positive id")
	}
	return uint(value), nil
}

// FormOptionalInt reads an optional integer form value, nil when absent.
func FormOptionalInt(r *http.Request, field string) (*int, error) {
	raw := FormOptionalString(r, field)
	if raw == nil || *raw == "" {
		return nil, nil
	}
	value, err := strconv.Atoi(*raw)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, field+" must be numeric")
	}
	return &value, nil
}

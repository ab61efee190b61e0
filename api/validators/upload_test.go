package validators

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	pkgerrors "github.com/breaddesk/breaddesk-backend/pkg/errors"
)

func multipartRequest(t *testing.T, field, filename, declaredType string, payload []byte) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", `form-data; name="`+field+`"; filename="`+filename+`"`)
	header.Set("Content-Type", declaredType)
	part, err := writer.CreatePart(header)
	if err != nil {
		t.Fatalf("create part: %v", err)
	}
	if _, err := part.Write(payload); err != nil {
		t.Fatalf("write part: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/upload", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if err := ParseMultipart(req, 1<<20); err != nil {
		t.Fatalf("parse multipart: %v", err)
	}
	return req
}

func TestFormImageTrustsSniffedTypeOverDeclared(t *testing.T) {
	payload := append([]byte("GIF89a"), bytes.Repeat([]byte{0x01}, 32)...)
	req := multipartRequest(t, "image", "photo.gif", "text/plain", payload)

	file, err := FormImage(req, "image", true)
	if err != nil {
		t.Fatalf("FormImage: %v", err)
	}
	if file.ContentType != "image/gif" {
		t.Fatalf("content type = %q, want image/gif", file.ContentType)
	}

	got, err := io.ReadAll(file.Reader)
	if err != nil {
		t.Fatalf("read payload: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatalf("payload not preserved after sniffing")
	}
}

func TestFormImageRejectsNonImagePayload(t *testing.T) {
	// Plain text sniffs as text/plain no matter what the client declares.
	req := multipartRequest(t, "image", "photo.png", "image/png", []byte("definitely not an image"))

	if _, err := FormImage(req, "image", true); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestFormImageAllowsAmbiguousPayloadWithDeclaredType(t *testing.T) {
	// Binary junk sniffs as application/octet-stream; the declared type decides.
	req := multipartRequest(t, "image", "photo.webp", "image/webp", []byte{0x01, 0x02, 0x03, 0x04})

	file, err := FormImage(req, "image", true)
	if err != nil {
		t.Fatalf("FormImage: %v", err)
	}
	if file.ContentType != "image/webp" {
		t.Fatalf("content type = %q, want image/webp", file.ContentType)
	}
}

func TestFormImageMissingOptionalFile(t *testing.T) {
	req := multipartRequest(t, "other", "x.gif", "image/gif", []byte("GIF89a"))

	file, err := FormImage(req, "image", false)
	if err != nil {
		t.Fatalf("FormImage: %v", err)
	}
	if file != nil {
		t.Fatal("expected nil file for an absent optional part")
	}
}

func TestFormImageMissingRequiredFile(t *testing.T) {
	req := multipartRequest(t, "other", "x.gif", "image/gif", []byte("GIF89a"))

	if _, err := FormImage(req, "image", true); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

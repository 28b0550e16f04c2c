package storage

import (
	"encoding/base64"
	"errors"
	"path"
	"strings"

	"github.com/google/uuid"
)

var ErrInvalidPayload = errors.New("invalid inline payload")

var defaultContentTypes = map[Kind]string{
	KindImage: "image/jpeg",
	KindPDF:   "application/pdf",
	KindVideo: "video/mp4",
}

var extensions = map[string]string{
	"image/jpeg":      ".jpg",
	"image/jpg":       ".jpg",
	"image/png":       ".png",
	"image/webp":      ".webp",
	"image/gif":       ".gif",
	"application/pdf": ".pdf",
	"video/mp4":       ".mp4",
	"video/webm":      ".webm",
	"video/quicktime": ".mov",
	"video/x-msvideo": ".avi",
}

// ParseDataURL decodes a "data:<mime>;base64,<payload>" string or bare base64.
// PDFs with a missing or generic content type are labelled application/pdf.
func ParseDataURL(data string, kind Kind) (contentType string, payload []byte, err error) {
	data = strings.TrimSpace(data)
	if data == "" {
		return "", nil, ErrInvalidPayload
	}

	encoded := data
	if strings.HasPrefix(data, "data:") {
		header, body, found := strings.Cut(data, ",")
		if !found {
			return "", nil, ErrInvalidPayload
		}
		meta := strings.TrimPrefix(header, "data:")
		if !strings.HasSuffix(meta, ";base64") {
			return "", nil, errors.New("inline payload is not base64 encoded")
		}
		contentType = strings.TrimSuffix(meta, ";base64")
		encoded = body
	}

	if contentType == "" || (kind == KindPDF && contentType == "application/octet-stream") {
		contentType = defaultContentTypes[kind]
	}

	payload, err = base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		payload, err = base64.RawStdEncoding.DecodeString(encoded)
	}
	if err != nil {
		return "", nil, ErrInvalidPayload
	}
	return contentType, payload, nil
}

// Extension picks a file extension for contentType, falling back to the
// kind's default.
func Extension(kind Kind, contentType string) string {
	if ext, ok := extensions[strings.ToLower(contentType)]; ok {
		return ext
	}
	return extensions[defaultContentTypes[kind]]
}

// ObjectKey builds folder/publicID<ext>; a missing publicID is replaced by a uuid.
func ObjectKey(folder, publicID, ext string) string {
	if publicID == "" {
		publicID = uuid.NewString()
	}
	return path.Join(folder, publicID+ext)
}

// IsRemoteURL reports whether value already points at a hosted object.
func IsRemoteURL(value string) bool {
	return strings.HasPrefix(value, "https://") || strings.HasPrefix(value, "http://")
}

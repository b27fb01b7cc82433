package dto

import (
	"mime/multipart"
	"strings"
)

// SupportedMimeTypes lists the upload types accepted by the extraction endpoint
var SupportedMimeTypes = []string{
	"application/pdf",
	"image/png",
	"image/jpeg",
	"image/jpg",
	"image/webp",
}

// IDCardExtractRequest represents an uploaded identity card scan
type IDCardExtractRequest struct {
	File     *multipart.FileHeader
	MimeType string
	Password string
}

// Validate checks presence, size and type of the uploaded file.
// MimeType is filled from the file extension when the part carries no Content-Type.
func (r *IDCardExtractRequest) Validate(maxSize int64) error {
	if r.File == nil {
		return ErrNoFile
	}
	if maxSize > 0 && r.File.Size > maxSize {
		return ErrFileTooLarge
	}

	if r.MimeType == "" {
		r.MimeType = r.File.Header.Get("Content-Type")
	}
	if r.MimeType == "" || r.MimeType == "application/octet-stream" {
		r.MimeType = InferMimeType(r.File.Filename)
	}
	if !IsSupportedMimeType(r.MimeType) {
		return ErrUnsupportedMimeType
	}
	return nil
}

// IsSupportedMimeType checks if the MIME type is supported
func IsSupportedMimeType(mimeType string) bool {
	mimeType = strings.ToLower(strings.TrimSpace(mimeType))
	if mimeType == "" {
		return false
	}
	for _, valid := range SupportedMimeTypes {
		if strings.HasPrefix(mimeType, valid) {
			return true
		}
	}
	return false
}

// InferMimeType infers MIME type from file extension
func InferMimeType(filename string) string {
	lower := strings.ToLower(filename)
	switch {
	case strings.HasSuffix(lower, ".pdf"):
		return "application/pdf"
	case strings.HasSuffix(lower, ".png"):
		return "image/png"
	case strings.HasSuffix(lower, ".jpg"), strings.HasSuffix(lower, ".jpeg"):
		return "image/jpeg"
	case strings.HasSuffix(lower, ".webp"):
		return "image/webp"
	}
	return ""
}

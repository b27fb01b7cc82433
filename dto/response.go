package dto

import "errors"

// Custom errors
var (
	ErrNoFile                 = errors.New("file is required")
	ErrUnsupportedMimeType    = errors.New("unsupported file type")
	ErrFileTooLarge           = errors.New("file exceeds the maximum allowed size")
	ErrTextTooShort           = errors.New("recognized text is too short")
	ErrRecognitionUnavailable = errors.New("text recognition service unavailable")
	ErrUnexpectedShape        = errors.New("recognition result has an unexpected shape")
	ErrRateLimited            = errors.New("text recognition service rate limited")
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

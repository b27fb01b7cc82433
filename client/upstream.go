package client

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/Aashish23092/ocr-idcard-extraction/dto"
)

// UpstreamError is a non-2xx answer from a remote recognizer.
// It unwraps to dto.ErrRateLimited for 429 and dto.ErrRecognitionUnavailable otherwise.
type UpstreamError struct {
	Service    string
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s returned status %d: %s", e.Service, e.StatusCode, e.Body)
}

func (e *UpstreamError) Unwrap() error {
	if e.StatusCode == http.StatusTooManyRequests {
		return dto.ErrRateLimited
	}
	return dto.ErrRecognitionUnavailable
}

func newUpstreamError(service string, resp *http.Response) *UpstreamError {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
	return &UpstreamError{
		Service:    service,
		StatusCode: resp.StatusCode,
		Body:       strings.TrimSpace(string(body)),
	}
}

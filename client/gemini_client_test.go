package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Aashish23092/ocr-idcard-extraction/dto"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func geminiReply(t *testing.T, text string) []byte {
	t.Helper()
	body, err := json.Marshal(map[string]any{
		"candidates": []any{
			map[string]any{"content": map[string]any{"parts": []any{map[string]any{"text": text}}}},
		},
	})
	require.NoError(t, err)
	return body
}

func newTestGemini(t *testing.T, srv *httptest.Server, retries int) *GeminiClient {
	t.Helper()
	g, err := NewGeminiClient(GeminiOptions{
		APIKey:         "test-key",
		Model:          "gemini-1.5-flash",
		BaseURL:        srv.URL,
		MaxRetries:     retries,
		RetryBaseDelay: time.Millisecond,
		HTTPClient:     srv.Client(),
	}, zerolog.Nop())
	require.NoError(t, err)
	g.sleep = func(context.Context, time.Duration) error { return nil }
	return g
}

func TestGeminiClient_RecognizeText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1beta/models/gemini-1.5-flash:generateContent", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-goog-api-key"))
		assert.NotEmpty(t, r.Header.Get("X-Request-Id"))

		var req gmReq
		body, _ := io.ReadAll(r.Body)
		if !assert.NoError(t, json.Unmarshal(body, &req)) ||
			!assert.Len(t, req.Contents, 1) ||
			!assert.Len(t, req.Contents[0].Parts, 2) {
			return
		}
		assert.Equal(t, "image/jpeg", req.Contents[0].Parts[1].InlineData.MimeType)
		assert.Equal(t, "AQID", req.Contents[0].Parts[1].InlineData.Data)
		assert.Equal(t, "application/json", req.GenerationConfig.ResponseMIMEType)

		w.Write(geminiReply(t, `{"text": "ROMANIA\nNUME\nPOPESCU"}`))
	}))
	defer srv.Close()

	text, err := newTestGemini(t, srv, 0).RecognizeText(context.Background(), []byte{1, 2, 3}, "image/jpeg")
	require.NoError(t, err)
	assert.Equal(t, "ROMANIA\nNUME\nPOPESCU", text)
}

func TestGeminiClient_CodeFencedReply(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(geminiReply(t, "```json\n{\"text\": \"CNP 1850101123456\"}\n```"))
	}))
	defer srv.Close()

	text, err := newTestGemini(t, srv, 0).RecognizeText(context.Background(), []byte("x"), "image/png")
	require.NoError(t, err)
	assert.Equal(t, "CNP 1850101123456", text)
}

func TestGeminiClient_RetriesRateLimit(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write([]byte(`{"error":{"status":"RESOURCE_EXHAUSTED"}}`))
			return
		}
		w.Write(geminiReply(t, `{"text": "ok"}`))
	}))
	defer srv.Close()

	text, err := newTestGemini(t, srv, 3).RecognizeText(context.Background(), []byte("x"), "image/png")
	require.NoError(t, err)
	assert.Equal(t, "ok", text)
	assert.Equal(t, int32(3), calls.Load())
}

func TestGeminiClient_RateLimitExhausted(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := newTestGemini(t, srv, 2).RecognizeText(context.Background(), []byte("x"), "image/png")
	require.Error(t, err)
	assert.ErrorIs(t, err, dto.ErrRateLimited)
	assert.Equal(t, int32(3), calls.Load())

	var upstream *UpstreamError
	require.ErrorAs(t, err, &upstream)
	assert.Equal(t, http.StatusTooManyRequests, upstream.StatusCode)
}

func TestGeminiClient_ServerErrorNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := newTestGemini(t, srv, 3).RecognizeText(context.Background(), []byte("x"), "image/png")
	assert.ErrorIs(t, err, dto.ErrRecognitionUnavailable)
	assert.Equal(t, int32(1), calls.Load())
}

func TestGeminiClient_BadShape(t *testing.T) {
	cases := map[string][]byte{
		"no candidates": []byte(`{"candidates": []}`),
		"not json":      geminiReply(t, "Popescu Ion"),
		"wrong type":    geminiReply(t, `{"text": 42}`),
		"missing text":  geminiReply(t, `{"nume": "POPESCU"}`),
	}

	for name, reply := range cases {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write(reply)
			}))
			defer srv.Close()

			_, err := newTestGemini(t, srv, 0).RecognizeText(context.Background(), []byte("x"), "image/png")
			assert.ErrorIs(t, err, dto.ErrUnexpectedShape)
		})
	}
}

func TestNewGeminiClient_RequiresKey(t *testing.T) {
	_, err := NewGeminiClient(GeminiOptions{}, zerolog.Nop())
	assert.Error(t, err)
}

func TestSleepCtx_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, sleepCtx(ctx, time.Hour), context.Canceled)
}

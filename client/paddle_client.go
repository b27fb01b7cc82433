package client

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/Aashish23092/ocr-idcard-extraction/dto"
	"github.com/rs/zerolog"
)

// PaddleClient talks to a PaddleOCR serving endpoint (ocr_system).
type PaddleClient struct {
	apiURL     string
	httpClient *http.Client
	log        zerolog.Logger
}

func NewPaddleClient(apiURL string, httpClient *http.Client, log zerolog.Logger) *PaddleClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &PaddleClient{
		apiURL:     apiURL,
		httpClient: httpClient,
		log:        log.With().Str("component", "paddleocr").Logger(),
	}
}

func (p *PaddleClient) Name() string { return "paddle" }

type paddleRequest struct {
	Images []string `json:"images"`
}

type paddleResponse struct {
	Results [][]struct {
		Text       string  `json:"text"`
		Confidence float64 `json:"confidence"`
	} `json:"results"`
}

// RecognizeText sends the base64 image to PaddleOCR and joins the recognized
// lines of the first result in reading order.
func (p *PaddleClient) RecognizeText(ctx context.Context, data []byte, mimeType string) (string, error) {
	payload, err := json.Marshal(paddleRequest{
		Images: []string{base64.StdEncoding.EncodeToString(data)},
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.apiURL, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to build PaddleOCR request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", fmt.Errorf("failed to call PaddleOCR API: %w: %w", dto.ErrRecognitionUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", newUpstreamError("paddleocr", resp)
	}

	var result paddleResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to decode PaddleOCR response: %w: %w", dto.ErrUnexpectedShape, err)
	}

	var sb strings.Builder
	if len(result.Results) > 0 {
		for _, line := range result.Results[0] {
			sb.WriteString(line.Text)
			sb.WriteString("\n")
		}
	}

	text := sb.String()
	p.log.Debug().Str("mime_type", mimeType).Int("chars", len(text)).Msg("paddleocr recognition finished")
	return text, nil
}

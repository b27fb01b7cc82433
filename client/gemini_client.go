package client

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Aashish23092/ocr-idcard-extraction/dto"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

const transcriptionPrompt = `Transcribe all printed text on this Romanian identity card exactly as it appears.
Keep the original line order and diacritics, one card line per output line.
Include the machine readable zone if present. Do not translate, correct or interpret anything.
Return strict JSON: {"text": "<transcription>"}. If nothing is legible return {"text": ""}.`

var transcriptionSchema = map[string]any{
	"type":     "object",
	"required": []any{"text"},
	"properties": map[string]any{
		"text": map[string]any{"type": "string"},
	},
}

// GeminiOptions configures GeminiClient.
type GeminiOptions struct {
	APIKey         string
	Model          string
	BaseURL        string
	MaxRetries     int
	RetryBaseDelay time.Duration
	HTTPClient     *http.Client
}

// GeminiClient recognizes text with the Gemini generateContent API, sending the
// image inline and asking for a JSON transcription.
type GeminiClient struct {
	endpoint   string
	apiKey     string
	maxRetries int
	baseDelay  time.Duration
	hc         *http.Client
	schema     *jsonschema.Schema
	log        zerolog.Logger

	// sleep waits between retries; replaced in tests.
	sleep func(ctx context.Context, d time.Duration) error
}

func NewGeminiClient(opts GeminiOptions, log zerolog.Logger) (*GeminiClient, error) {
	if opts.APIKey == "" {
		return nil, errors.New("gemini: missing api key")
	}
	if opts.Model == "" {
		opts.Model = "gemini-1.5-flash"
	}
	if opts.BaseURL == "" {
		opts.BaseURL = "https://generativelanguage.googleapis.com"
	}
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: 60 * time.Second}
	}

	schema, err := compileSchema(transcriptionSchema)
	if err != nil {
		return nil, err
	}

	endpoint := strings.TrimRight(opts.BaseURL, "/") +
		"/v1beta/models/" + url.PathEscape(opts.Model) + ":generateContent"

	return &GeminiClient{
		endpoint:   endpoint,
		apiKey:     opts.APIKey,
		maxRetries: opts.MaxRetries,
		baseDelay:  opts.RetryBaseDelay,
		hc:         opts.HTTPClient,
		schema:     schema,
		log:        log.With().Str("component", "gemini").Str("model", opts.Model).Logger(),
		sleep:      sleepCtx,
	}, nil
}

func (g *GeminiClient) Name() string { return "gemini" }

type gmInlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type gmPart struct {
	Text       string        `json:"text,omitempty"`
	InlineData *gmInlineData `json:"inline_data,omitempty"`
}

type gmContent struct {
	Role  string   `json:"role,omitempty"`
	Parts []gmPart `json:"parts"`
}

type gmGenerationConfig struct {
	ResponseMIMEType string `json:"response_mime_type,omitempty"`
}

type gmReq struct {
	Contents         []gmContent         `json:"contents"`
	GenerationConfig *gmGenerationConfig `json:"generationConfig,omitempty"`
}

type gmResp struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// RecognizeText asks Gemini for a transcription of the image. A 429 answer is
// retried with exponential backoff; once retries run out the error unwraps to
// dto.ErrRateLimited.
func (g *GeminiClient) RecognizeText(ctx context.Context, data []byte, mimeType string) (string, error) {
	body, err := json.Marshal(gmReq{
		Contents: []gmContent{{
			Role: "user",
			Parts: []gmPart{
				{Text: transcriptionPrompt},
				{InlineData: &gmInlineData{MimeType: mimeType, Data: base64.StdEncoding.EncodeToString(data)}},
			},
		}},
		GenerationConfig: &gmGenerationConfig{ResponseMIMEType: "application/json"},
	})
	if err != nil {
		return "", fmt.Errorf("encode gemini request: %w", err)
	}

	reqID := uuid.NewString()
	log := g.log.With().Str("gemini_request_id", reqID).Logger()

	for attempt := 0; ; attempt++ {
		raw, err := g.generate(ctx, body, reqID)
		if err == nil {
			text, err := g.decodeTranscription(raw)
			if err != nil {
				return "", err
			}
			log.Debug().Int("attempt", attempt+1).Int("chars", len(text)).Msg("gemini transcription received")
			return text, nil
		}

		if !errors.Is(err, dto.ErrRateLimited) || attempt >= g.maxRetries {
			return "", err
		}

		delay := g.baseDelay << attempt
		log.Warn().Int("attempt", attempt+1).Dur("backoff", delay).Msg("gemini rate limited, retrying")
		if err := g.sleep(ctx, delay); err != nil {
			return "", err
		}
	}
}

func (g *GeminiClient) generate(ctx context.Context, body []byte, reqID string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build gemini request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", g.apiKey)
	req.Header.Set("X-Request-Id", reqID)

	resp, err := g.hc.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("call gemini: %w: %w", dto.ErrRecognitionUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		return nil, newUpstreamError("gemini", resp)
	}

	var out gmResp
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode gemini response: %w: %w", dto.ErrUnexpectedShape, err)
	}
	if len(out.Candidates) == 0 || len(out.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("gemini returned no candidates: %w", dto.ErrUnexpectedShape)
	}

	var sb strings.Builder
	for _, p := range out.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}
	return []byte(sb.String()), nil
}

func (g *GeminiClient) decodeTranscription(raw []byte) (string, error) {
	raw = bytes.TrimSpace(stripCodeFence(raw))

	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return "", fmt.Errorf("gemini reply is not JSON: %w: %w", dto.ErrUnexpectedShape, err)
	}
	if err := g.schema.Validate(v); err != nil {
		return "", fmt.Errorf("gemini reply does not match schema: %w: %w", dto.ErrUnexpectedShape, err)
	}

	var out struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("gemini reply: %w: %w", dto.ErrUnexpectedShape, err)
	}
	return out.Text, nil
}

// stripCodeFence removes a ```json ... ``` wrapper some models add despite JSON mode.
func stripCodeFence(b []byte) []byte {
	s := strings.TrimSpace(string(b))
	if !strings.HasPrefix(s, "```") {
		return b
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return []byte(s)
}

func compileSchema(schemaMap map[string]any) (*jsonschema.Schema, error) {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("transcription.json", bytes.NewReader(b)); err != nil {
		return nil, fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("transcription.json")
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return schema, nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

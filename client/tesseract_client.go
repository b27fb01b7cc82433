package client

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/otiai10/gosseract/v2"
	"github.com/rs/zerolog"
)

type TesseractClient struct {
	dataPath  string
	languages []string
	log       zerolog.Logger
}

func NewTesseractClient(dataPath string, languages []string, log zerolog.Logger) *TesseractClient {
	if len(languages) == 0 {
		languages = []string{"ron", "eng"}
	}
	return &TesseractClient{
		dataPath:  dataPath,
		languages: languages,
		log:       log.With().Str("component", "tesseract").Logger(),
	}
}

func (tc *TesseractClient) Name() string { return "tesseract" }

// RecognizeText runs Tesseract on an image. The image is written to a temporary
// file for the duration of the call and always removed afterwards.
func (tc *TesseractClient) RecognizeText(ctx context.Context, data []byte, mimeType string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	tempFile, err := CreateTempFile(data, "ocr-*"+extensionFor(mimeType))
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tempFile)

	text, confidence, err := tc.extractTextAndQuality(tempFile)
	if err != nil {
		return "", fmt.Errorf("OCR extraction failed: %w", err)
	}

	tc.log.Debug().
		Int("chars", len(text)).
		Float64("confidence", confidence).
		Msg("tesseract recognition finished")
	return text, nil
}

func (tc *TesseractClient) extractTextAndQuality(filePath string) (string, float64, error) {
	client := gosseract.NewClient()
	defer client.Close()

	if tc.dataPath != "" {
		if err := client.SetTessdataPrefix(tc.dataPath); err != nil {
			return "", 0, fmt.Errorf("failed to set tessdata prefix: %w", err)
		}
	}
	if err := client.SetLanguage(tc.languages...); err != nil {
		return "", 0, fmt.Errorf("failed to set language: %w", err)
	}
	if err := client.SetImage(filePath); err != nil {
		return "", 0, fmt.Errorf("failed to set image: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return "", 0, fmt.Errorf("failed to extract text: %w", err)
	}

	// Confidence is informational only; ignore bounding box failures.
	boxes, err := client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil || len(boxes) == 0 {
		return text, 0, nil
	}
	var total float64
	for _, box := range boxes {
		total += box.Confidence
	}
	return text, total / float64(len(boxes)), nil
}

// CreateTempFile writes data to a new temporary file and returns its path.
// The caller owns the file and must remove it.
func CreateTempFile(data []byte, pattern string) (string, error) {
	tempFile, err := os.CreateTemp("", pattern)
	if err != nil {
		return "", err
	}
	defer tempFile.Close()

	if _, err := tempFile.Write(data); err != nil {
		os.Remove(tempFile.Name())
		return "", err
	}
	return tempFile.Name(), nil
}

func extensionFor(mimeType string) string {
	mimeType = strings.ToLower(mimeType)
	switch {
	case strings.Contains(mimeType, "png"):
		return ".png"
	case strings.Contains(mimeType, "jpeg"), strings.Contains(mimeType, "jpg"):
		return ".jpg"
	case strings.Contains(mimeType, "webp"):
		return ".webp"
	case strings.Contains(mimeType, "pdf"):
		return ".pdf"
	}
	return ".img"
}

package service

import (
	"fmt"
	"net/http"

	"github.com/Aashish23092/ocr-idcard-extraction/client"
	"github.com/Aashish23092/ocr-idcard-extraction/config"
	"github.com/Aashish23092/ocr-idcard-extraction/utils/idcard"
	"github.com/rs/zerolog"
)

// NewRecognizer builds the recognizer selected by cfg.OCREngine.
func NewRecognizer(cfg *config.Config, log zerolog.Logger) (TextRecognizer, error) {
	switch cfg.OCREngine {
	case config.EngineTesseract:
		return client.NewTesseractClient(cfg.TesseractDataPath, cfg.TesseractLanguages, log), nil
	case config.EnginePaddle:
		return client.NewPaddleClient(cfg.PaddleAPIURL, &http.Client{Timeout: cfg.OCRTimeout}, log), nil
	case config.EngineGemini:
		return client.NewGeminiClient(client.GeminiOptions{
			APIKey:         cfg.Gemini.APIKey,
			Model:          cfg.Gemini.Model,
			BaseURL:        cfg.Gemini.BaseURL,
			MaxRetries:     cfg.Gemini.MaxRetries,
			RetryBaseDelay: cfg.Gemini.RetryBaseDelay,
			HTTPClient:     &http.Client{Timeout: cfg.OCRTimeout},
		}, log)
	}
	return nil, fmt.Errorf("unknown OCR engine %q", cfg.OCREngine)
}

// LoadParser returns a parser for the template file named in cfg, or for the
// built-in template when none is configured.
func LoadParser(templateFile string) (*idcard.Parser, error) {
	tmpl := idcard.DefaultTemplate()
	if templateFile != "" {
		var err error
		if tmpl, err = idcard.LoadTemplate(templateFile); err != nil {
			return nil, fmt.Errorf("load template %s: %w", templateFile, err)
		}
	}
	return idcard.NewParser(tmpl)
}

// NewIDCardServiceFromConfig assembles the service with the configured
// recognizer, the pdf processor and the template parser.
func NewIDCardServiceFromConfig(cfg *config.Config, log zerolog.Logger) (*IDCardService, error) {
	recognizer, err := NewRecognizer(cfg, log)
	if err != nil {
		return nil, err
	}
	parser, err := LoadParser(cfg.TemplateFile)
	if err != nil {
		return nil, err
	}
	return NewIDCardService(recognizer, NewPDFProcessor(), parser, IDCardServiceOptions{
		Timeout:       cfg.OCRTimeout,
		Concurrency:   cfg.OCRConcurrency,
		MinTextLength: cfg.MinTextLength,
	}, log), nil
}

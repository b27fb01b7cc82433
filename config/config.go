package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	EngineTesseract = "tesseract"
	EnginePaddle    = "paddle"
	EngineGemini    = "gemini"
)

type Config struct {
	ServerPort         string
	OCREngine          string
	TesseractDataPath  string
	TesseractLanguages []string
	PaddleAPIURL       string
	Gemini             GeminiConfig
	OCRTimeout         time.Duration
	OCRConcurrency     int
	MaxFileSize        int64
	MinTextLength      int
	TemplateFile       string
}

// GeminiConfig configures the Gemini vision recognizer
type GeminiConfig struct {
	APIKey         string
	Model          string
	BaseURL        string
	MaxRetries     int
	RetryBaseDelay time.Duration
}

func LoadConfig() *Config {
	return &Config{
		ServerPort:         getEnv("SERVER_PORT", "8000"),
		OCREngine:          strings.ToLower(getEnv("OCR_ENGINE", EngineTesseract)),
		TesseractDataPath:  getEnv("TESSDATA_PREFIX", "/usr/share/tesseract-ocr/5/tessdata/"),
		TesseractLanguages: splitAndTrim(getEnv("TESSERACT_LANGS", "ron,eng")),
		PaddleAPIURL:       getEnv("PADDLEOCR_API_URL", "http://paddleocr:8866/predict/ocr_system"),
		Gemini: GeminiConfig{
			APIKey:         getEnv("GEMINI_API_KEY", ""),
			Model:          getEnv("GEMINI_MODEL", "gemini-1.5-flash"),
			BaseURL:        getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com"),
			MaxRetries:     getInt("GEMINI_MAX_RETRIES", 3),
			RetryBaseDelay: getDuration("GEMINI_RETRY_BASE_DELAY", 2*time.Second),
		},
		OCRTimeout:     getDuration("OCR_TIMEOUT", 60*time.Second),
		OCRConcurrency: getInt("OCR_CONCURRENCY", 4),
		MaxFileSize:    int64(getInt("MAX_FILE_SIZE", 10*1024*1024)), // 10 MB
		MinTextLength:  getInt("MIN_TEXT_LENGTH", 20),
		TemplateFile:   getEnv("IDCARD_TEMPLATE_FILE", ""),
	}
}

// Validate reports the first inconsistent setting.
func (c *Config) Validate() error {
	switch c.OCREngine {
	case EngineTesseract:
		if len(c.TesseractLanguages) == 0 {
			return fmt.Errorf("TESSERACT_LANGS must list at least one language")
		}
	case EnginePaddle:
		if c.PaddleAPIURL == "" {
			return fmt.Errorf("PADDLEOCR_API_URL is required when OCR_ENGINE=paddle")
		}
	case EngineGemini:
		if c.Gemini.APIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY is required when OCR_ENGINE=gemini")
		}
		if c.Gemini.MaxRetries < 0 {
			return fmt.Errorf("GEMINI_MAX_RETRIES cannot be negative")
		}
	default:
		return fmt.Errorf("unknown OCR_ENGINE %q (want tesseract, paddle or gemini)", c.OCREngine)
	}

	if c.ServerPort == "" {
		return fmt.Errorf("SERVER_PORT is required")
	}
	if c.OCRTimeout <= 0 {
		return fmt.Errorf("OCR_TIMEOUT must be positive")
	}
	if c.OCRConcurrency <= 0 {
		return fmt.Errorf("OCR_CONCURRENCY must be positive")
	}
	if c.MaxFileSize <= 0 {
		return fmt.Errorf("MAX_FILE_SIZE must be positive")
	}
	if c.MinTextLength < 0 {
		return fmt.Errorf("MIN_TEXT_LENGTH cannot be negative")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return parsed
		}
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(strings.TrimSpace(v)); err == nil {
			return d
		}
	}
	return fallback
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

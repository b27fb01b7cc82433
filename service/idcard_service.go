package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/Aashish23092/ocr-idcard-extraction/dto"
	"github.com/Aashish23092/ocr-idcard-extraction/utils/idcard"
	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/qrcode"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// TextRecognizer turns an encoded image into raw text.
type TextRecognizer interface {
	Name() string
	RecognizeText(ctx context.Context, data []byte, mimeType string) (string, error)
}

// IDCardServiceOptions tunes IDCardService. Zero values pick the defaults.
type IDCardServiceOptions struct {
	Timeout       time.Duration
	Concurrency   int
	MinTextLength int
}

// Extraction is the outcome of one extraction call.
type Extraction struct {
	Engine string
	Source string
	Text   string
	Data   dto.IDCardData
}

// IDCardService recognizes the text of an identity card scan and parses it
// into a record.
type IDCardService struct {
	recognizer   TextRecognizer
	pdfProcessor PDFProcessor
	parser       *idcard.Parser
	opts         IDCardServiceOptions
	log          zerolog.Logger
}

func NewIDCardService(recognizer TextRecognizer, pdfProcessor PDFProcessor, parser *idcard.Parser, opts IDCardServiceOptions, log zerolog.Logger) *IDCardService {
	if parser == nil {
		parser = idcard.MustNewParser(idcard.DefaultTemplate())
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 60 * time.Second
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 1
	}
	return &IDCardService{
		recognizer:   recognizer,
		pdfProcessor: pdfProcessor,
		parser:       parser,
		opts:         opts,
		log:          log.With().Str("component", "idcard_service").Logger(),
	}
}

// Engine names the configured recognizer.
func (s *IDCardService) Engine() string {
	return s.recognizer.Name()
}

// ParseText parses already recognized text. It never fails.
func (s *IDCardService) ParseText(text string) *Extraction {
	return &Extraction{
		Engine: "none",
		Source: dto.SourceText,
		Text:   text,
		Data:   s.parser.Parse(text),
	}
}

// ExtractFromFile recognizes the text of an image or PDF and parses it.
// PDFs use their text layer when it is long enough and are OCR'd page image by
// page image otherwise.
func (s *IDCardService) ExtractFromFile(ctx context.Context, fileData []byte, mimeType, password string) (*Extraction, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
	defer cancel()

	var (
		text string
		err  error
	)
	source := dto.SourceOCR

	if strings.Contains(mimeType, "pdf") {
		text, source, err = s.recognizePDF(ctx, fileData, password)
	} else {
		text, err = s.recognizeImage(ctx, fileData, mimeType)
	}
	if err != nil {
		return nil, err
	}

	if n := utf8.RuneCountInString(strings.TrimSpace(text)); n < s.opts.MinTextLength {
		s.log.Info().Int("chars", n).Int("min", s.opts.MinTextLength).Msg("recognized text too short")
		return nil, fmt.Errorf("%w: got %d characters, need %d", dto.ErrTextTooShort, n, s.opts.MinTextLength)
	}

	return &Extraction{
		Engine: s.recognizer.Name(),
		Source: source,
		Text:   text,
		Data:   s.parser.Parse(text),
	}, nil
}

func (s *IDCardService) recognizeImage(ctx context.Context, data []byte, mimeType string) (string, error) {
	text, err := s.recognizer.RecognizeText(ctx, data, mimeType)
	if err != nil {
		return "", fmt.Errorf("text recognition failed: %w", err)
	}
	return s.withQRPayload(text, data, mimeType), nil
}

func (s *IDCardService) recognizePDF(ctx context.Context, pdfData []byte, password string) (string, string, error) {
	text, err := s.pdfProcessor.ExtractText(ctx, pdfData, password)
	if err != nil {
		s.log.Debug().Err(err).Msg("pdf text layer unreadable, falling back to OCR")
	} else if utf8.RuneCountInString(strings.TrimSpace(text)) >= max(s.opts.MinTextLength, 1) {
		return text, dto.SourcePDFText, nil
	}

	images, err := s.pdfProcessor.ExtractImages(ctx, pdfData, password)
	if err != nil {
		return "", "", fmt.Errorf("failed to extract images from PDF: %w", err)
	}
	if len(images) == 0 {
		return "", "", fmt.Errorf("no images found in PDF: %w", dto.ErrTextTooShort)
	}

	text, err = s.recognizePages(ctx, images)
	if err != nil {
		return "", "", err
	}
	return text, dto.SourceOCR, nil
}

// recognizePages OCRs the page images concurrently and joins the results in
// page order. A failing page is skipped unless every page fails or the
// recognizer is rate limited.
func (s *IDCardService) recognizePages(ctx context.Context, images []PageImage) (string, error) {
	texts := make([]string, len(images))
	errs := make([]error, len(images))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.Concurrency)

	for i, page := range images {
		g.Go(func() error {
			text, err := s.recognizeImage(gctx, page.Data, page.MimeType)
			if err != nil {
				if errors.Is(err, dto.ErrRateLimited) {
					return err
				}
				s.log.Warn().Err(err).Str("page_image", page.Name).Msg("page OCR failed")
				errs[i] = err
				return nil
			}
			texts[i] = text
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return "", err
	}

	var parts []string
	for i, text := range texts {
		if errs[i] == nil {
			parts = append(parts, text)
		}
	}
	if len(parts) == 0 {
		return "", errs[0]
	}

	s.log.Debug().Int("pages", len(images)).Int("recognized", len(parts)).Msg("pdf pages recognized")
	return strings.Join(parts, "\n"), nil
}

// withQRPayload appends the decoded QR payload, if the image has one, after the
// recognized text so that OCR lines keep precedence.
func (s *IDCardService) withQRPayload(text string, data []byte, mimeType string) string {
	img, err := decodeImage(data, mimeType)
	if err != nil {
		return text
	}
	payload, err := decodeQR(img)
	if err != nil || payload == "" {
		return text
	}
	s.log.Debug().Int("bytes", len(payload)).Msg("QR code decoded")
	return text + "\n" + payload
}

func decodeQR(img image.Image) (string, error) {
	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	if err != nil {
		return "", fmt.Errorf("failed to create binary bitmap: %w", err)
	}

	result, err := qrcode.NewQRCodeReader().Decode(bmp, nil)
	if err != nil {
		return "", fmt.Errorf("failed to decode QR code: %w", err)
	}
	return result.GetText(), nil
}

// decodeImage decodes PNG and JPEG images; other formats are rejected.
func decodeImage(data []byte, mimeType string) (image.Image, error) {
	reader := bytes.NewReader(data)

	switch {
	case strings.Contains(mimeType, "png"):
		return png.Decode(reader)
	case strings.Contains(mimeType, "jpeg"), strings.Contains(mimeType, "jpg"):
		return jpeg.Decode(reader)
	}
	return nil, fmt.Errorf("cannot decode %q locally", mimeType)
}

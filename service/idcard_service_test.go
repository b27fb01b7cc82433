package service

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"sync"
	"testing"
	"time"

	"github.com/Aashish23092/ocr-idcard-extraction/dto"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const cardText = `ROMANIA
CARTE DE IDENTITATE
SERIA RX NR 123456
CNP 1850101123456
Nume/Nom/Last name
POPESCU
Prenume/Prenom/First name
ION
Cetatenie/Nationalite/Nationality
ROMANA
Sex/Sexe/Sex M
Loc nastere/Lieu de naissance/Place of birth
Mun.Bucuresti
Domiciliu/Adresse/Address
Str.Lunga nr.5
Emisa de/Delivree par/Issued by
SPCLEP Sector 1
Valabilitate/Validite/Validity
01.01.1985 12.03.2020 01.01.2030`

type fakeRecognizer struct {
	mu     sync.Mutex
	texts  map[string]string
	errs   map[string]error
	calls  []string
	block  bool
	result string
}

func (f *fakeRecognizer) Name() string { return "fake" }

func (f *fakeRecognizer) RecognizeText(ctx context.Context, data []byte, mimeType string) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, string(data))
	f.mu.Unlock()

	if f.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	if err, ok := f.errs[string(data)]; ok {
		return "", err
	}
	if text, ok := f.texts[string(data)]; ok {
		return text, nil
	}
	return f.result, nil
}

type fakePDF struct {
	text    string
	textErr error
	images  []PageImage
	imgErr  error
}

func (f *fakePDF) ExtractText(context.Context, []byte, string) (string, error) {
	return f.text, f.textErr
}

func (f *fakePDF) ExtractImages(context.Context, []byte, string) ([]PageImage, error) {
	return f.images, f.imgErr
}

func newTestService(rec TextRecognizer, pdf PDFProcessor, opts IDCardServiceOptions) *IDCardService {
	return NewIDCardService(rec, pdf, nil, opts, zerolog.Nop())
}

func TestExtractFromFile_Image(t *testing.T) {
	rec := &fakeRecognizer{result: cardText}
	svc := newTestService(rec, &fakePDF{}, IDCardServiceOptions{MinTextLength: 20})

	out, err := svc.ExtractFromFile(context.Background(), []byte("jpeg-bytes"), "image/jpeg", "")
	require.NoError(t, err)

	assert.Equal(t, "fake", out.Engine)
	assert.Equal(t, dto.SourceOCR, out.Source)
	assert.Equal(t, cardText, out.Text)
	assert.Equal(t, "1850101123456", out.Data.CNP)
	assert.Equal(t, "POPESCU", out.Data.Nume)
	assert.Equal(t, "ION", out.Data.Prenume)
	assert.Equal(t, "RX", out.Data.Serie)
	assert.Equal(t, "123456", out.Data.Numar)
	assert.Equal(t, "01.01.2030", out.Data.DataExpirarii)
}

func TestExtractFromFile_PNGWithoutQRKeepsText(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 40, 40))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}
	img.Set(3, 3, color.Black)
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))

	rec := &fakeRecognizer{result: cardText}
	svc := newTestService(rec, &fakePDF{}, IDCardServiceOptions{})

	out, err := svc.ExtractFromFile(context.Background(), buf.Bytes(), "image/png", "")
	require.NoError(t, err)
	assert.Equal(t, cardText, out.Text)
}

func TestExtractFromFile_TextTooShort(t *testing.T) {
	svc := newTestService(&fakeRecognizer{result: "  ROMANIA  "}, &fakePDF{}, IDCardServiceOptions{MinTextLength: 20})

	_, err := svc.ExtractFromFile(context.Background(), []byte("x"), "image/png", "")
	assert.ErrorIs(t, err, dto.ErrTextTooShort)
}

func TestExtractFromFile_RecognizerError(t *testing.T) {
	rec := &fakeRecognizer{errs: map[string]error{"x": dto.ErrRecognitionUnavailable}}
	svc := newTestService(rec, &fakePDF{}, IDCardServiceOptions{})

	_, err := svc.ExtractFromFile(context.Background(), []byte("x"), "image/webp", "")
	assert.ErrorIs(t, err, dto.ErrRecognitionUnavailable)
}

func TestExtractFromFile_Timeout(t *testing.T) {
	svc := newTestService(&fakeRecognizer{block: true}, &fakePDF{}, IDCardServiceOptions{Timeout: 20 * time.Millisecond})

	_, err := svc.ExtractFromFile(context.Background(), []byte("x"), "image/png", "")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestExtractFromFile_PDFTextLayer(t *testing.T) {
	rec := &fakeRecognizer{}
	svc := newTestService(rec, &fakePDF{text: cardText}, IDCardServiceOptions{MinTextLength: 20})

	out, err := svc.ExtractFromFile(context.Background(), []byte("%PDF"), "application/pdf", "secret")
	require.NoError(t, err)

	assert.Equal(t, dto.SourcePDFText, out.Source)
	assert.Equal(t, "POPESCU", out.Data.Nume)
	assert.Empty(t, rec.calls)
}

func TestExtractFromFile_PDFPagesInOrder(t *testing.T) {
	rec := &fakeRecognizer{texts: map[string]string{
		"page1": "ROMANIA\nCNP 1850101123456\nNume/Nom/Last name\nPOPESCU",
		"page2": "Prenume/Prenom/First name\nION",
	}}
	pdf := &fakePDF{
		text: "scanned",
		images: []PageImage{
			{Name: "p1.jpg", Data: []byte("page1"), MimeType: "image/jpeg"},
			{Name: "p2.jpg", Data: []byte("page2"), MimeType: "image/jpeg"},
		},
	}
	svc := newTestService(rec, pdf, IDCardServiceOptions{MinTextLength: 20, Concurrency: 2})

	out, err := svc.ExtractFromFile(context.Background(), []byte("%PDF"), "application/pdf", "")
	require.NoError(t, err)

	assert.Equal(t, dto.SourceOCR, out.Source)
	assert.Equal(t, rec.texts["page1"]+"\n"+rec.texts["page2"], out.Text)
	assert.Equal(t, "POPESCU", out.Data.Nume)
	assert.Equal(t, "ION", out.Data.Prenume)
	assert.Len(t, rec.calls, 2)
}

func TestExtractFromFile_PDFPageFailures(t *testing.T) {
	pages := []PageImage{
		{Name: "p1.png", Data: []byte("page1"), MimeType: "image/png"},
		{Name: "p2.png", Data: []byte("page2"), MimeType: "image/png"},
	}

	t.Run("one page fails", func(t *testing.T) {
		rec := &fakeRecognizer{
			texts: map[string]string{"page2": cardText},
			errs:  map[string]error{"page1": errors.New("tesseract crashed")},
		}
		svc := newTestService(rec, &fakePDF{images: pages}, IDCardServiceOptions{Concurrency: 2})

		out, err := svc.ExtractFromFile(context.Background(), []byte("%PDF"), "application/pdf", "")
		require.NoError(t, err)
		assert.Equal(t, cardText, out.Text)
	})

	t.Run("all pages fail", func(t *testing.T) {
		rec := &fakeRecognizer{errs: map[string]error{
			"page1": dto.ErrRecognitionUnavailable,
			"page2": dto.ErrRecognitionUnavailable,
		}}
		svc := newTestService(rec, &fakePDF{images: pages}, IDCardServiceOptions{})

		_, err := svc.ExtractFromFile(context.Background(), []byte("%PDF"), "application/pdf", "")
		assert.ErrorIs(t, err, dto.ErrRecognitionUnavailable)
	})

	t.Run("rate limited", func(t *testing.T) {
		rec := &fakeRecognizer{
			texts: map[string]string{"page2": cardText},
			errs:  map[string]error{"page1": dto.ErrRateLimited},
		}
		svc := newTestService(rec, &fakePDF{images: pages}, IDCardServiceOptions{})

		_, err := svc.ExtractFromFile(context.Background(), []byte("%PDF"), "application/pdf", "")
		assert.ErrorIs(t, err, dto.ErrRateLimited)
	})

	t.Run("no images", func(t *testing.T) {
		svc := newTestService(&fakeRecognizer{}, &fakePDF{textErr: errors.New("malformed")}, IDCardServiceOptions{})

		_, err := svc.ExtractFromFile(context.Background(), []byte("%PDF"), "application/pdf", "")
		assert.ErrorIs(t, err, dto.ErrTextTooShort)
	})
}

func TestParseText(t *testing.T) {
	svc := newTestService(&fakeRecognizer{}, &fakePDF{}, IDCardServiceOptions{})

	out := svc.ParseText(cardText)
	assert.Equal(t, dto.SourceText, out.Source)
	assert.Equal(t, "1850101123456", out.Data.CNP)
	assert.Equal(t, "M", out.Data.Sex)

	empty := svc.ParseText("")
	assert.Equal(t, dto.IDCardData{}, empty.Data)
}

func TestDecodeImage_Unsupported(t *testing.T) {
	_, err := decodeImage([]byte("RIFF"), "image/webp")
	assert.Error(t, err)
}

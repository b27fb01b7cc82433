package service

import (
	"bytes"
	"cmp"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"slices"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// PageImage is an image embedded in a PDF, kept in its encoded form.
type PageImage struct {
	Name     string
	Page     int
	Data     []byte
	MimeType string
}

type PDFProcessor interface {
	ExtractText(ctx context.Context, pdfData []byte, password string) (string, error)
	ExtractImages(ctx context.Context, pdfData []byte, password string) ([]PageImage, error)
}

type pdfProcessor struct{}

func NewPDFProcessor() PDFProcessor {
	return &pdfProcessor{}
}

// ExtractText reads the PDF text layer row by row, one row per line.
func (p *pdfProcessor) ExtractText(ctx context.Context, pdfData []byte, password string) (string, error) {
	r, err := openPDF(pdfData, password)
	if err != nil {
		return "", err
	}

	var textBuilder strings.Builder
	totalPage := r.NumPage()

	for pageIndex := 1; pageIndex <= totalPage; pageIndex++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		page := r.Page(pageIndex)
		if page.V.IsNull() {
			continue
		}

		rows, err := page.GetTextByRow()
		if err != nil {
			continue
		}
		for _, row := range rows {
			for _, word := range row.Content {
				textBuilder.WriteString(word.S)
			}
			textBuilder.WriteString("\n")
		}
	}
	return textBuilder.String(), nil
}

func openPDF(pdfData []byte, password string) (*pdf.Reader, error) {
	ra := bytes.NewReader(pdfData)
	if password == "" {
		return pdf.NewReader(ra, int64(len(pdfData)))
	}

	// The callback is asked again after a wrong password; "" stops the loop.
	offered := false
	return pdf.NewReaderEncrypted(ra, int64(len(pdfData)), func() string {
		if offered {
			return ""
		}
		offered = true
		return password
	})
}

// ExtractImages pulls every embedded PNG or JPEG image out of the PDF with pdfcpu,
// ordered by page number. Other image formats and thumbnails are skipped.
func (p *pdfProcessor) ExtractImages(ctx context.Context, pdfData []byte, password string) ([]PageImage, error) {
	conf := model.NewDefaultConfiguration()
	if password != "" {
		conf.UserPW = password
	}

	var images []PageImage
	if err := api.ExtractImages(bytes.NewReader(pdfData), nil, collectPageImage(ctx, &images), conf); err != nil {
		return nil, fmt.Errorf("failed to extract images: %w", err)
	}

	sortByPage(images)
	return images, nil
}

func collectPageImage(ctx context.Context, out *[]PageImage) func(model.Image, bool, int) error {
	return func(img model.Image, _ bool, _ int) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if img.Reader == nil || img.Thumb {
			return nil
		}

		mimeType := imageMimeType("." + img.FileType)
		if mimeType == "" {
			return nil
		}

		data, err := io.ReadAll(img)
		if err != nil {
			return fmt.Errorf("read image %s on page %d: %w", img.Name, img.PageNr, err)
		}
		*out = append(*out, PageImage{
			Name:     fmt.Sprintf("page%d_%s", img.PageNr, img.Name),
			Page:     img.PageNr,
			Data:     data,
			MimeType: mimeType,
		})
		return nil
	}
}

// sortByPage orders images by page number, keeping document order within a page.
func sortByPage(images []PageImage) {
	slices.SortStableFunc(images, func(a, b PageImage) int {
		return cmp.Compare(a.Page, b.Page)
	})
}

func imageMimeType(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	}
	return ""
}

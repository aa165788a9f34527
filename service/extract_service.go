package service

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/insightdesk/insightdesk-be/types"
	"github.com/ledongthuc/pdf"
)

// TextExtractor converts raw file bytes into a text string.
type TextExtractor interface {
	Extract(data []byte) (string, error)
}

// ExtractService dispatches to an extractor by MIME type. MIME types are
// validated at upload time, so an unknown type here still fails with a
// typed error rather than silently producing no text.
type ExtractService struct {
	extractors map[string]TextExtractor
	plainText  TextExtractor
}

func NewExtractService() *ExtractService {
	return &ExtractService{
		extractors: map[string]TextExtractor{
			types.MimeTypePDF: &PDFExtractor{},
		},
		plainText: &PlainTextExtractor{},
	}
}

func (s *ExtractService) Extract(data []byte, mimeType string) (string, error) {
	if extractor, ok := s.extractors[mimeType]; ok {
		return extractor.Extract(data)
	}
	if strings.HasPrefix(mimeType, "text/") {
		return s.plainText.Extract(data)
	}
	return "", fmt.Errorf("%w: %s", types.ErrUnsupportedType, mimeType)
}

// PDFExtractor reads the text layer of each page.
type PDFExtractor struct{}

func (e *PDFExtractor) Extract(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to read PDF: %w", err)
	}

	var sb strings.Builder
	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			// Pages that fail to decode are skipped, not fatal.
			continue
		}
		sb.WriteString(text)
		sb.WriteString("\n")
	}

	return sb.String(), nil
}

// PlainTextExtractor decodes text/* payloads as UTF-8.
type PlainTextExtractor struct{}

func (e *PlainTextExtractor) Extract(data []byte) (string, error) {
	if !utf8.Valid(data) {
		return "", fmt.Errorf("file is not valid UTF-8 text")
	}
	return string(data), nil
}

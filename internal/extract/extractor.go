package extract

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"strings"

	"statement-ingest/internal/models"

	"go.uber.org/zap"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported document format")
	ErrNoText            = errors.New("no text extracted from document")
)

var contentTypeAliases = map[string]string{
	models.ContentTypePDF:         models.ContentTypePDF,
	"application/x-pdf":           models.ContentTypePDF,
	models.ContentTypeCSV:         models.ContentTypeCSV,
	"application/csv":             models.ContentTypeCSV,
	"text/comma-separated-values": models.ContentTypeCSV,
	"application/vnd.ms-excel":    models.ContentTypeCSV,
}

var extensionTypes = map[string]string{
	".pdf": models.ContentTypePDF,
	".csv": models.ContentTypeCSV,
}

// NormalizeContentType maps a request content type, or failing that the file
// extension, onto one of the supported types. It returns "" when neither matches.
func NormalizeContentType(contentType, fileName string) string {
	if mediaType, _, err := mime.ParseMediaType(contentType); err == nil {
		if normalized, ok := contentTypeAliases[strings.ToLower(mediaType)]; ok {
			return normalized
		}
	}
	return extensionTypes[strings.ToLower(filepath.Ext(fileName))]
}

func IsSupported(contentType string) bool {
	return contentType == models.ContentTypePDF || contentType == models.ContentTypeCSV
}

type Extractor struct {
	logger *zap.Logger
}

func NewExtractor(logger *zap.Logger) *Extractor {
	return &Extractor{
		logger: logger,
	}
}

// ExtractText reads the whole document and returns its plain text.
func (e *Extractor) ExtractText(ctx context.Context, r io.Reader, contentType string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	var (
		text string
		err  error
	)
	switch contentType {
	case models.ContentTypePDF:
		text, err = e.extractPDF(r)
	case models.ContentTypeCSV:
		text, err = extractCSV(r)
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, contentType)
	}
	if err != nil {
		return "", err
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrNoText
	}

	e.logger.Info("Text extraction completed",
		zap.String("content_type", contentType),
		zap.Int("text_length", len(text)),
	)
	return text, nil
}

package extract

import (
	"fmt"
	"io"
	"strings"

	"github.com/gen2brain/go-fitz"
	"go.uber.org/zap"
)

func (e *Extractor) extractPDF(r io.Reader) (string, error) {
	doc, err := fitz.NewFromReader(r)
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}
	defer doc.Close()

	var textBuilder strings.Builder
	for i := 0; i < doc.NumPage(); i++ {
		pageText, err := doc.Text(i)
		if err != nil {
			e.logger.Warn("Failed to extract text from page", zap.Int("page", i+1), zap.Error(err))
			continue
		}
		if pageText != "" {
			textBuilder.WriteString(pageText)
			textBuilder.WriteString("\n")
		}
	}

	return textBuilder.String(), nil
}

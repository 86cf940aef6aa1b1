package extract

import (
	"context"
	"errors"
	"strings"
	"testing"

	"statement-ingest/internal/models"

	"go.uber.org/zap"
)

func TestExtractCSV(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "comma separated",
			input: "date,description,amount\n2024-01-15,MARKET,150.50\n",
			want:  "date | description | amount\n2024-01-15 | MARKET | 150.50",
		},
		{
			name:  "semicolon with bom and blank cells",
			input: "\xef\xbb\xbfdata;lancamento;valor\n15/01/2024; SUPERMERCADO ;;-150,50\n;;\n",
			want:  "data | lancamento | valor\n15/01/2024 | SUPERMERCADO | -150,50",
		},
		{
			name:  "quoted commas survive",
			input: "\"ACME, INC\",10.00\n",
			want:  "ACME, INC | 10.00",
		},
	}

	e := NewExtractor(zap.NewNop())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := e.ExtractText(context.Background(), strings.NewReader(tt.input), models.ContentTypeCSV)
			if err != nil {
				t.Fatalf("ExtractText() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("ExtractText() =\n%q\nwant\n%q", got, tt.want)
			}
		})
	}
}

func TestExtractErrors(t *testing.T) {
	e := NewExtractor(zap.NewNop())

	_, err := e.ExtractText(context.Background(), strings.NewReader("x"), "image/png")
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("unsupported type error = %v, want ErrUnsupportedFormat", err)
	}

	_, err = e.ExtractText(context.Background(), strings.NewReader(" , \n"), models.ContentTypeCSV)
	if !errors.Is(err, ErrNoText) {
		t.Errorf("empty CSV error = %v, want ErrNoText", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := e.ExtractText(ctx, strings.NewReader("a,b"), models.ContentTypeCSV); !errors.Is(err, context.Canceled) {
		t.Errorf("cancelled ctx error = %v, want context.Canceled", err)
	}
}

func TestNormalizeContentType(t *testing.T) {
	tests := []struct {
		contentType, fileName, want string
	}{
		{"application/pdf", "x.bin", models.ContentTypePDF},
		{"text/csv; charset=utf-8", "", models.ContentTypeCSV},
		{"application/vnd.ms-excel", "export.csv", models.ContentTypeCSV},
		{"application/octet-stream", "EXTRATO.PDF", models.ContentTypePDF},
		{"", "statement.csv", models.ContentTypeCSV},
		{"image/png", "scan.png", ""},
	}
	for _, tt := range tests {
		if got := NormalizeContentType(tt.contentType, tt.fileName); got != tt.want {
			t.Errorf("NormalizeContentType(%q, %q) = %q, want %q", tt.contentType, tt.fileName, got, tt.want)
		}
	}
}

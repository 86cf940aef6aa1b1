package storage

import (
	"context"
	"testing"

	"statement-ingest/pkg/config"

	"go.uber.org/zap"
)

func TestObjectKey(t *testing.T) {
	tests := []struct {
		fileName string
		want     string
	}{
		{"statement.pdf", "tenant-a/job-1/statement.pdf"},
		{"../../etc/passwd", "tenant-a/job-1/passwd"},
		{`C:\Users\me\fatura.csv`, "tenant-a/job-1/fatura.csv"},
		{"", "tenant-a/job-1/document"},
	}
	for _, tt := range tests {
		if got := ObjectKey("tenant-a", "job-1", tt.fileName); got != tt.want {
			t.Errorf("ObjectKey(%q) = %q, want %q", tt.fileName, got, tt.want)
		}
	}
}

func TestNewArchiveDisabledWithoutEndpoint(t *testing.T) {
	archive, err := NewArchive(context.Background(), &config.StorageConfig{}, zap.NewNop())
	if err != nil {
		t.Fatalf("NewArchive() error = %v", err)
	}
	if archive != nil {
		t.Error("archive should be nil when no endpoint is configured")
	}
}

package auth

import (
	"errors"
	"testing"
	"time"
)

func TestGenerateAndValidate(t *testing.T) {
	m := NewJWTManager("test-secret", time.Hour)

	token, err := m.GenerateToken("tenant-a", "Alice")
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}

	claims, err := m.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken() error = %v", err)
	}
	if claims.TenantID() != "tenant-a" {
		t.Errorf("TenantID() = %q, want tenant-a", claims.TenantID())
	}
	if claims.Name != "Alice" {
		t.Errorf("Name = %q, want Alice", claims.Name)
	}
}

func TestValidateRejects(t *testing.T) {
	m := NewJWTManager("test-secret", time.Hour)
	other := NewJWTManager("other-secret", time.Hour)
	expired := NewJWTManager("test-secret", -time.Minute)

	foreign, _ := other.GenerateToken("tenant-a", "")
	stale, _ := expired.GenerateToken("tenant-a", "")
	noSubject, _ := m.GenerateToken("", "")

	tests := []struct {
		name    string
		token   string
		wantErr error
	}{
		{"garbage", "not-a-token", ErrInvalidToken},
		{"wrong secret", foreign, ErrInvalidToken},
		{"expired", stale, ErrInvalidToken},
		{"missing subject", noSubject, ErrMissingTenant},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := m.ValidateToken(tt.token)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateToken() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

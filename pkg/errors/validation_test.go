package errors

import (
	"testing"
)

func TestValidateName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid cell", "A1", false},
		{"valid lowercase", "b12", false},
		{"valid underscore prefix", "_tmp", false},
		{"valid long", "total_2024_q1", false},
		{"single letter", "x", false},

		{"empty", "", true},
		{"leading digit", "1A", true},
		{"contains space", "A 1", true},
		{"contains dash", "A-1", true},
		{"trailing symbol", "A1$", true},
		{"unicode letter", "é1", true},
		{"formula text", "A1+B1", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidName) {
				t.Errorf("ValidateName(%q) code = %v, want %v", tt.input, GetCode(err), ErrCodeInvalidName)
			}
		})
	}
}

func TestIsIdentifier(t *testing.T) {
	if !IsIdentifier("x7") {
		t.Error("IsIdentifier(x7) = false, want true")
	}
	if IsIdentifier("7x") {
		t.Error("IsIdentifier(7x) = true, want false")
	}
	if IsIdentifier("") {
		t.Error("IsIdentifier(\"\") = true, want false")
	}
}

func TestValidateWorkbookID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid uuid", "6ba7b810-9dad-11d1-80b4-00c04fd430c8", false},
		{"empty", "", true},
		{"not a uuid", "workbook-1", true},
		{"path traversal", "../etc/passwd", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateWorkbookID(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateWorkbookID(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

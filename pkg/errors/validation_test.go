package errors

import (
	"math"
	"testing"
)

func TestValidateDimension(t *testing.T) {
	tests := []struct {
		name    string
		input   float64
		wantErr bool
	}{
		{"zero", 0, false},
		{"positive", 240, false},
		{"fractional", 0.5, false},

		{"negative", -1, true},
		{"NaN", math.NaN(), true},
		{"+Inf", math.Inf(1), true},
		{"-Inf", math.Inf(-1), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDimension("width", tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateDimension(%v) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidInput) {
				t.Errorf("ValidateDimension(%v) code = %v, want %v", tt.input, GetCode(err), ErrCodeInvalidInput)
			}
		})
	}
}

func TestValidateTileSize(t *testing.T) {
	if err := ValidateTileSize(0, 100, 50); err != nil {
		t.Errorf("ValidateTileSize(valid) error = %v", err)
	}
	err := ValidateTileSize(3, 100, -5)
	if err == nil {
		t.Fatal("ValidateTileSize(negative height) should fail")
	}
	if UserMessage(err) != "tile 3" {
		t.Errorf("UserMessage() = %q, want %q", UserMessage(err), "tile 3")
	}
}

func TestValidateBoxModel(t *testing.T) {
	tests := []struct {
		name                    string
		padding, border, margin float64
		wantErr                 bool
	}{
		{"all zero", 0, 0, 0, false},
		{"typical", 5, 1, 3, false},
		{"negative padding", -1, 0, 0, true},
		{"negative border", 0, -1, 0, true},
		{"NaN margin", 0, 0, math.NaN(), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateBoxModel(tt.padding, tt.border, tt.margin)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateBoxModel() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidConfiguration) {
				t.Errorf("code = %v, want %v", GetCode(err), ErrCodeInvalidConfiguration)
			}
		})
	}
}

func TestValidateTileID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"empty", "", false},
		{"simple", "photo-1", false},
		{"unicode", "café", false},

		{"too long", string(make([]byte, 200)), true},
		{"control char", "a\x01b", true},
		{"newline", "a\nb", true},
		{"markup", "<script>", true},
		{"ampersand", "a&b", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTileID(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateTileID(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateLayoutWidths(t *testing.T) {
	tests := []struct {
		name      string
		column    float64
		available float64
		code      Code
	}{
		{"valid", 240, 1e300, ""},
		{"zero", 0, 0, ""},
		{"negative column", -5, 100, ErrCodeInvalidConfiguration},
		{"infinite column", math.Inf(1), 100, ErrCodeInvalidConfiguration},
		{"negative available", 240, -1, ErrCodeInvalidInput},
		{"infinite available", 240, math.Inf(1), ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateLayoutWidths(tt.column, tt.available)
			if tt.code == "" {
				if err != nil {
					t.Errorf("ValidateLayoutWidths() error = %v", err)
				}
				return
			}
			if GetCode(err) != tt.code {
				t.Errorf("ValidateLayoutWidths() code = %v, want %v", GetCode(err), tt.code)
			}
		})
	}
}

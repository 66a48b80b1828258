package errors

import (
	"math"
	"strings"
	"unicode"
)

// ValidateDimension checks that a measured or configured size is a finite,
// non-negative number. name is used in the error message only.
func ValidateDimension(name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return New(ErrCodeInvalidInput, "%s must be a finite number", name)
	}
	if v < 0 {
		return New(ErrCodeInvalidInput, "%s must not be negative (got %v)", name, v)
	}
	return nil
}

// ValidateLayoutWidths validates a column width and an available width at
// an input boundary. A bad column width is a configuration problem; a bad
// available width is an input problem.
func ValidateLayoutWidths(columnWidth, availableWidth float64) error {
	if err := ValidateDimension("column_width", columnWidth); err != nil {
		return Wrap(ErrCodeInvalidConfiguration, err, "layout options")
	}
	return ValidateDimension("available_width", availableWidth)
}

// ValidateTileSize validates the outer size of the tile at index i.
func ValidateTileSize(i int, width, height float64) error {
	if err := ValidateDimension("width", width); err != nil {
		return Wrap(ErrCodeInvalidInput, err, "tile %d", i)
	}
	if err := ValidateDimension("height", height); err != nil {
		return Wrap(ErrCodeInvalidInput, err, "tile %d", i)
	}
	return nil
}

// ValidateBoxModel validates per-tile padding, border and margin.
// A negative value here is a configuration problem, not an input problem.
func ValidateBoxModel(padding, border, margin float64) error {
	for _, f := range []struct {
		name string
		v    float64
	}{{"padding", padding}, {"border", border}, {"margin", margin}} {
		if err := ValidateDimension(f.name, f.v); err != nil {
			return Wrap(ErrCodeInvalidConfiguration, err, "box model")
		}
	}
	return nil
}

// ValidateTileID validates an optional tile identifier. Empty IDs are allowed;
// non-empty ones end up in SVG ids and terminal output, so they must be short
// and free of control characters.
func ValidateTileID(id string) error {
	if id == "" {
		return nil
	}
	if len(id) > 128 {
		return New(ErrCodeInvalidInput, "tile id too long (max 128 characters)")
	}
	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "tile id contains invalid control characters")
		}
	}
	if strings.ContainsAny(id, `<>&"`) {
		return New(ErrCodeInvalidInput, "tile id contains markup characters: %q", id)
	}
	return nil
}

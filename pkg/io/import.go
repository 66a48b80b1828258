package io

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/masonry/pkg/errors"
	"github.com/matzehuels/masonry/pkg/gallery"
	"github.com/matzehuels/masonry/pkg/layout"
)

// Manifest is a decoded tile manifest.
type Manifest struct {
	Tiles []layout.Tile   `json:"tiles" yaml:"tiles"`
	Box   layout.BoxModel `json:"box" yaml:"box"`

	// Optional layout options; nil means "use the caller's default".
	ColumnWidth    *float64 `json:"column_width,omitempty" yaml:"column_width,omitempty"`
	AvailableWidth *float64 `json:"available_width,omitempty" yaml:"available_width,omitempty"`
	Policy         string   `json:"policy,omitempty" yaml:"policy,omitempty"`
	Animate        *bool    `json:"animate,omitempty" yaml:"animate,omitempty"`
}

// Validate checks tile sizes and ids, the box model, the column width and
// the policy name.
func (m *Manifest) Validate() error {
	if m.Tiles == nil {
		return errors.New(errors.ErrCodeInvalidManifest, "manifest has no tiles array")
	}
	for i, t := range m.Tiles {
		if err := errors.ValidateTileSize(i, t.Width, t.Height); err != nil {
			return err
		}
		if err := errors.ValidateTileID(t.ID); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidInput, err, "tile %d", i)
		}
	}
	if err := errors.ValidateBoxModel(m.Box.Padding, m.Box.Border, m.Box.Margin); err != nil {
		return err
	}
	if m.ColumnWidth != nil {
		if err := errors.ValidateDimension("column_width", *m.ColumnWidth); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfiguration, err, "manifest")
		}
	}
	if m.AvailableWidth != nil {
		if err := errors.ValidateDimension("available_width", *m.AvailableWidth); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidInput, err, "manifest")
		}
	}
	if _, err := layout.ParsePolicy(m.Policy); err != nil {
		return err
	}
	return nil
}

// Overrides returns the manifest's options as gallery overrides. The policy
// must already be valid (see Validate).
func (m *Manifest) Overrides() gallery.Overrides {
	ov := gallery.Overrides{ColumnWidth: m.ColumnWidth, Animate: m.Animate}
	if m.Policy != "" {
		if p, err := layout.ParsePolicy(m.Policy); err == nil {
			ov.BestFit = gallery.Bool(p == layout.BestFit)
		}
	}
	return ov
}

// ReadManifest decodes and validates a manifest from r. ReadManifest does
// not close r.
func ReadManifest(r io.Reader, format Format) (*Manifest, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidManifest, "manifest is empty")
	}

	var m Manifest
	switch format {
	case FormatJSON:
		err = json.Unmarshal(data, &m)
	case FormatYAML:
		err = yaml.Unmarshal(data, &m)
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported manifest format %q", format)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidManifest, err, "decode %s manifest", format)
	}

	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// ImportManifest reads the manifest at path; the format follows the file
// extension.
func ImportManifest(path string) (*Manifest, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "manifest %s", path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadManifest(f, FormatFromPath(path))
}

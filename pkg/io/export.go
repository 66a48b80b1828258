package io

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/masonry/pkg/errors"
	"github.com/matzehuels/masonry/pkg/layout"
)

// MarshalResult encodes a layout result. JSON output is indented.
func MarshalResult(r layout.Result, format Format) ([]byte, error) {
	switch format {
	case FormatJSON:
		var buf bytes.Buffer
		enc := json.NewEncoder(&buf)
		enc.SetIndent("", "  ")
		if err := enc.Encode(r); err != nil {
			return nil, fmt.Errorf("encode: %w", err)
		}
		return buf.Bytes(), nil
	case FormatYAML:
		data, err := yaml.Marshal(r)
		if err != nil {
			return nil, fmt.Errorf("encode: %w", err)
		}
		return data, nil
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported result format %q", format)
	}
}

// UnmarshalResult decodes a result produced by MarshalResult.
func UnmarshalResult(data []byte, format Format) (layout.Result, error) {
	var r layout.Result
	var err error
	switch format {
	case FormatJSON:
		err = json.Unmarshal(data, &r)
	case FormatYAML:
		err = yaml.Unmarshal(data, &r)
	default:
		return r, errors.New(errors.ErrCodeInvalidFormat, "unsupported result format %q", format)
	}
	if err != nil {
		return layout.Result{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode %s result", format)
	}
	return r, nil
}

// WriteResult encodes r to w.
func WriteResult(r layout.Result, w io.Writer, format Format) error {
	data, err := MarshalResult(r, format)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// ReadResult decodes a result from r.
func ReadResult(r io.Reader, format Format) (layout.Result, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return layout.Result{}, fmt.Errorf("read result: %w", err)
	}
	return UnmarshalResult(data, format)
}

// WriteResultFile writes r to path; the format follows the file extension.
func WriteResultFile(r layout.Result, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := WriteResult(r, f, FormatFromPath(path)); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

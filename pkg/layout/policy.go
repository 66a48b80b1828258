package layout

import (
	"encoding/json"
	"strings"

	"github.com/matzehuels/masonry/pkg/errors"
)

// Policy selects how tiles are assigned to columns.
type Policy int

const (
	// BestFit appends each tile to the currently shortest column.
	BestFit Policy = iota
	// Sequential assigns tile k to column k mod columns.
	Sequential
)

// Policy names as used in manifests, flags and JSON.
const (
	PolicyNameBestFit    = "bestfit"
	PolicyNameSequential = "sequential"
)

// PolicyFor maps the gallery bestFit option onto a Policy.
func PolicyFor(bestFit bool) Policy {
	if bestFit {
		return BestFit
	}
	return Sequential
}

// ParsePolicy parses a policy name. The empty string selects [BestFit].
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", PolicyNameBestFit, "best-fit", "best_fit":
		return BestFit, nil
	case PolicyNameSequential:
		return Sequential, nil
	default:
		return BestFit, errors.New(errors.ErrCodeInvalidPolicy,
			"invalid policy: %q (must be %q or %q)", s, PolicyNameBestFit, PolicyNameSequential)
	}
}

// String returns the policy name.
func (p Policy) String() string {
	switch p {
	case BestFit:
		return PolicyNameBestFit
	case Sequential:
		return PolicyNameSequential
	default:
		return "unknown"
	}
}

// MarshalJSON encodes the policy by name.
func (p Policy) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

// UnmarshalJSON decodes a policy name.
func (p *Policy) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	v, err := ParsePolicy(s)
	if err != nil {
		return err
	}
	*p = v
	return nil
}

// MarshalText lets YAML and TOML encoders write the policy by name.
func (p Policy) MarshalText() ([]byte, error) { return []byte(p.String()), nil }

// UnmarshalText lets YAML and TOML decoders read the policy by name.
func (p *Policy) UnmarshalText(text []byte) error {
	v, err := ParsePolicy(string(text))
	if err != nil {
		return err
	}
	*p = v
	return nil
}

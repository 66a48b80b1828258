// Package cache stores layout results and rendered artifacts between runs.
//
// Keys are content hashes of everything that influences the output (tiles,
// box model, column width, available width, policy, render options), so an
// idempotent pass always hits. Three backends share the [Cache] interface:
// [NullCache] (disabled), [FileCache] (CLI, under the XDG cache directory)
// and [RedisCache] (shared by API servers).
package cache

import (
	"context"
	"time"
)

// Default lifetimes for cached entries.
const (
	TTLLayout   = 7 * 24 * time.Hour
	TTLArtifact = 7 * 24 * time.Hour
)

// Cache is a byte-oriented key/value store with per-entry expiry.
type Cache interface {
	// Get returns the stored data and whether the key was present. A miss is
	// not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl <= 0 never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// LayoutKeyOpts are the inputs of a layout pass other than the tiles.
type LayoutKeyOpts struct {
	ColumnWidth    float64 `json:"column_width"`
	Padding        float64 `json:"padding"`
	Border         float64 `json:"border"`
	Margin         float64 `json:"margin"`
	AvailableWidth float64 `json:"available_width"`
	Policy         string  `json:"policy"`
}

// ArtifactKeyOpts are the render options that change an artifact's bytes.
type ArtifactKeyOpts struct {
	Format  string  `json:"format"`
	Labels  bool    `json:"labels"`
	Animate bool    `json:"animate"`
	Scale   float64 `json:"scale,omitempty"`
}

// Keyer derives cache keys.
type Keyer interface {
	// LayoutKey keys a layout result by the hash of its tiles and options.
	LayoutKey(tilesHash string, opts LayoutKeyOpts) string

	// ArtifactKey keys a rendered artifact by the hash of its layout.
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer produces "layout:<sha256>" and "artifact:<sha256>" keys.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the default keyer.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

func (k *DefaultKeyer) LayoutKey(tilesHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", tilesHash, opts)
}

func (k *DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", layoutHash, opts)
}

var _ Keyer = (*DefaultKeyer)(nil)

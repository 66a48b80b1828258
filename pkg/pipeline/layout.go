package pipeline

import (
	"encoding/json"

	"github.com/matzehuels/masonry/pkg/cache"
	"github.com/matzehuels/masonry/pkg/layout"
)

// ComputeLayout runs one layout pass for opts. Options must have been
// validated with ValidateForLayout.
func ComputeLayout(opts Options) (layout.Result, error) {
	return layout.Compute(opts.LayoutConfig(), opts.AvailableWidth, opts.Tiles, opts.policy)
}

// HashTiles returns the content hash of a tile list. Ids are included, so
// renaming a tile changes the hash even though placement would not change.
func HashTiles(tiles []layout.Tile) string {
	data, _ := json.Marshal(tiles)
	return cache.Hash(data)
}

// HashResult returns the content hash of a layout result.
func HashResult(r layout.Result) string {
	data, _ := json.Marshal(r)
	return cache.Hash(data)
}

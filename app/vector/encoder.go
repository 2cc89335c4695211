// Package vector maintains one fixed-dimension embedding per
// deduplicated news item and answers similarity queries over it: full
// semantic search, related-item lookup, and topic clustering. The index
// is held in memory and snapshotted to a single file on every mutation.
package vector

import (
	"context"
)

// Encoder translates text into fixed-dimension vectors. Implementations
// must be deterministic for identical input text and model version; a
// model change requires a forced reindex of the whole index.
type Encoder interface {
	Encode(ctx context.Context, texts []string) ([][]float32, error)
	Dimension() int
	Model() string
}

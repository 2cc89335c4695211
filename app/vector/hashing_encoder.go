package vector

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"strings"
	"unicode"
)

var _ Encoder = (*HashingEncoder)(nil)

// HashingEncoder is the local fallback encoder: a feature-hashing
// bag-of-words projection, L2 normalized. It carries no semantics
// beyond token overlap but is fully deterministic and needs no model
// or network, which keeps indexing and tests self-contained.
type HashingEncoder struct {
	dim int
}

func NewHashingEncoder(dim int) (*HashingEncoder, error) {
	if dim <= 0 {
		return nil, fmt.Errorf("encoder dimension must be positive, got %d", dim)
	}
	return &HashingEncoder{dim: dim}, nil
}

func (e *HashingEncoder) Encode(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		vectors[i] = e.encodeOne(text)
	}
	return vectors, nil
}

func (e *HashingEncoder) Dimension() int {
	return e.dim
}

func (e *HashingEncoder) Model() string {
	return fmt.Sprintf("hashing-bow-%d", e.dim)
}

func (e *HashingEncoder) encodeOne(text string) []float32 {
	vector := make([]float32, e.dim)

	for _, token := range tokenize(text) {
		h := fnv.New32a()
		h.Write([]byte(token))
		bucket := int(h.Sum32()) % e.dim
		if bucket < 0 {
			bucket += e.dim
		}
		// Sign hash decorrelates colliding tokens.
		if h.Sum32()&1 == 0 {
			vector[bucket]++
		} else {
			vector[bucket]--
		}
	}

	var norm float64
	for _, v := range vector {
		norm += float64(v) * float64(v)
	}
	if norm > 0 {
		scale := float32(1 / math.Sqrt(norm))
		for i := range vector {
			vector[i] *= scale
		}
	}

	return vector
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

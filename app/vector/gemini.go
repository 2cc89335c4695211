package vector

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"github.com/openclaw/newsbrief/app/errs"
)

var _ Encoder = (*GeminiEncoder)(nil)

// GeminiEncoder embeds text through the Gemini embeddings API. Selected
// when an API key is configured; otherwise the local hashing encoder is
// used. Switching encoders requires a forced reindex.
type GeminiEncoder struct {
	client *genai.Client
	model  string
	dim    int
}

func NewGeminiEncoder(ctx context.Context, apiKey, model string, dim int) (*GeminiEncoder, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	return &GeminiEncoder{
		client: client,
		model:  model,
		dim:    dim,
	}, nil
}

func (e *GeminiEncoder) Encode(ctx context.Context, texts []string) ([][]float32, error) {
	contents := make([]*genai.Content, 0, len(texts))
	for _, text := range texts {
		contents = append(contents, genai.Text(text)...)
	}

	dim := int32(e.dim)
	resp, err := e.client.Models.EmbedContent(ctx, e.model, contents, &genai.EmbedContentConfig{
		OutputDimensionality: &dim,
	})
	if err != nil {
		return nil, errs.Wrap(errs.KindNetwork, err, "failed to embed content")
	}

	if len(resp.Embeddings) != len(texts) {
		return nil, errs.New(errs.KindParse, fmt.Sprintf(
			"embedding count mismatch: sent %d texts, got %d vectors",
			len(texts), len(resp.Embeddings)))
	}

	vectors := make([][]float32, len(resp.Embeddings))
	for i, embedding := range resp.Embeddings {
		vectors[i] = embedding.Values
	}

	return vectors, nil
}

func (e *GeminiEncoder) Dimension() int {
	return e.dim
}

func (e *GeminiEncoder) Model() string {
	return e.model
}

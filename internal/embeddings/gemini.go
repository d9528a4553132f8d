package embeddings

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/viper"
	"google.golang.org/genai"
)

const (
	// DefaultEmbeddingModel is the default model for generating embeddings
	DefaultEmbeddingModel = "gemini-embedding-001"
	// DefaultDimensions is the output dimension for embeddings (Matryoshka)
	DefaultDimensions = int32(768)
)

// GeminiProvider generates embeddings through the Gemini API.
type GeminiProvider struct {
	modelName  string
	dimensions int32
	gClient    *genai.Client
}

// NewGeminiProvider creates a Gemini-backed embedding provider. The API key
// is read from GEMINI_API_KEY (or alternatives) or viper configuration.
func NewGeminiProvider(modelName string) (*GeminiProvider, error) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		if apiKey = os.Getenv("GOOGLE_GEMINI_API_KEY"); apiKey == "" {
			apiKey = viper.GetString("ai.gemini.api_key")
		}
	}
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required. Set GEMINI_API_KEY or ai.gemini.api_key in config")
	}

	if modelName == "" {
		modelName = viper.GetString("ai.gemini.embedding_model")
		if modelName == "" {
			modelName = DefaultEmbeddingModel
		}
	}

	dimensions := int32(viper.GetInt("ai.gemini.dimensions"))
	if dimensions <= 0 {
		dimensions = DefaultDimensions
	}

	ctx := context.Background()
	gClient, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiProvider{
		modelName:  modelName,
		dimensions: dimensions,
		gClient:    gClient,
	}, nil
}

// Embed generates a vector embedding for the given text.
func (p *GeminiProvider) Embed(ctx context.Context, text string) ([]float64, error) {
	if text == "" {
		return nil, ErrNoEmbedding
	}

	contents := []*genai.Content{{
		Parts: []*genai.Part{{Text: text}},
		Role:  "user",
	}}

	dims := p.dimensions
	config := &genai.EmbedContentConfig{
		OutputDimensionality: &dims,
	}

	resp, err := p.gClient.Models.EmbedContent(ctx, p.modelName, contents, config)
	if err != nil {
		return nil, fmt.Errorf("failed to generate embedding: %w", err)
	}

	if resp == nil || len(resp.Embeddings) == 0 || resp.Embeddings[0] == nil {
		return nil, fmt.Errorf("no embedding values returned from API: %w", ErrNoEmbedding)
	}

	values := resp.Embeddings[0].Values
	embedding := make([]float64, len(values))
	for i, val := range values {
		embedding[i] = float64(val)
	}

	return embedding, nil
}

package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/tieubaoca/pdfqa-be/config"
)

// AIService is the model provider used for both indexing and answering.
type AIService interface {
	// Embed returns one vector per text, in input order.
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	Complete(ctx context.Context, system, prompt string) (string, error)
}

func NewAIService(cfg *config.Config) (AIService, error) {
	models := cfg.Models
	switch cfg.ModelProvider {
	case config.ModelProviderOpenAI:
		return NewOpenAIService(models.OpenAI.BaseURL, models.OpenAI.APIKey, models.OpenAI.LLMModel, models.OpenAI.EmbeddingsModel), nil
	case config.ModelProviderOllama:
		baseURL := strings.TrimSuffix(models.Ollama.URL, "/") + "/v1"
		return NewOpenAIService(baseURL, "ollama", models.Ollama.LLMModel, models.Ollama.EmbeddingsModel), nil
	case config.ModelProviderHuggingFace:
		return NewHuggingFaceService(models.HuggingFace), nil
	case config.ModelProviderGemini:
		return NewGeminiService(context.Background(), splitKeys(models.Gemini.APIKey), models.Gemini.LLMModel, models.Gemini.EmbeddingsModel)
	}
	return nil, fmt.Errorf("unsupported model provider: %s", cfg.ModelProvider)
}

func splitKeys(s string) []string {
	var keys []string
	for _, k := range strings.Split(s, ",") {
		if k = strings.TrimSpace(k); k != "" {
			keys = append(keys, k)
		}
	}
	return keys
}

package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// GeminiService holds one client per API key. A failed call moves to the
// next key for the calls that follow; clients are only closed by Close.
type GeminiService struct {
	clients         []*genai.Client
	currentKey      int
	modelName       string
	embeddingsModel string
	mu              sync.Mutex
}

func NewGeminiService(ctx context.Context, apiKeys []string, modelName, embeddingsModel string) (*GeminiService, error) {
	if len(apiKeys) == 0 {
		return nil, errors.New("no API keys provided")
	}

	service := &GeminiService{
		modelName:       modelName,
		embeddingsModel: embeddingsModel,
	}
	for i, key := range apiKeys {
		client, err := genai.NewClient(ctx, option.WithAPIKey(key))
		if err != nil {
			service.Close()
			return nil, fmt.Errorf("failed to create gemini client for key %d: %w", i, err)
		}
		service.clients = append(service.clients, client)
	}
	return service, nil
}

// current returns the active client and its key index.
func (s *GeminiService) current() (*genai.Client, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clients[s.currentKey], s.currentKey
}

// rotateAPIKey moves past failed unless another caller already did so.
func (s *GeminiService) rotateAPIKey(failed int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.clients) < 2 || s.currentKey != failed {
		return
	}
	s.currentKey = (s.currentKey + 1) % len(s.clients)
	zap.L().Info("rotated gemini API key", zap.Int("key_index", s.currentKey))
}

func (s *GeminiService) Complete(ctx context.Context, system, prompt string) (string, error) {
	client, key := s.current()
	model := client.GenerativeModel(s.modelName)
	model.SetTemperature(0)
	if system != "" {
		model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(system)}}
	}

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		s.rotateAPIKey(key)
		return "", err
	}
	if len(resp.Candidates) == 0 {
		return "", errors.New("no response generated")
	}

	var content strings.Builder
	candidate := resp.Candidates[0]
	if candidate.Content != nil {
		for _, part := range candidate.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				content.WriteString(string(text))
			}
		}
	}
	return content.String(), nil
}

func (s *GeminiService) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	client, key := s.current()
	em := client.EmbeddingModel(s.embeddingsModel)
	batch := em.NewBatch()
	for _, t := range texts {
		batch.AddContent(genai.Text(t))
	}
	resp, err := em.BatchEmbedContents(ctx, batch)
	if err != nil {
		s.rotateAPIKey(key)
		return nil, err
	}
	if len(resp.Embeddings) != len(texts) {
		return nil, fmt.Errorf("expected %d embeddings, got %d", len(texts), len(resp.Embeddings))
	}
	vectors := make([][]float32, len(texts))
	for i, e := range resp.Embeddings {
		vectors[i] = e.Values
	}
	return vectors, nil
}

func (s *GeminiService) Close() error {
	var errs error
	for _, c := range s.clients {
		errs = multierr.Append(errs, c.Close())
	}
	return errs
}

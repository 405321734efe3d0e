package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tieubaoca/pdfqa-be/config"
)

// HuggingFaceService chats through the router's OpenAI compatible API and
// embeds with the inference feature-extraction pipeline.
type HuggingFaceService struct {
	chat            *OpenAIService
	httpClient      *http.Client
	inferenceURL    string
	apiToken        string
	embeddingsModel string
}

func NewHuggingFaceService(cfg config.HuggingFaceConfig) *HuggingFaceService {
	return &HuggingFaceService{
		chat:            NewOpenAIService(cfg.ChatURL, cfg.APIToken, cfg.LLMModel, cfg.EmbeddingsModel),
		httpClient:      &http.Client{Timeout: 2 * time.Minute},
		inferenceURL:    strings.TrimSuffix(cfg.InferenceURL, "/"),
		apiToken:        cfg.APIToken,
		embeddingsModel: cfg.EmbeddingsModel,
	}
}

func (s *HuggingFaceService) Complete(ctx context.Context, system, prompt string) (string, error) {
	return s.chat.Complete(ctx, system, prompt)
}

func (s *HuggingFaceService) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	body, err := json.Marshal(map[string]any{
		"inputs":  texts,
		"options": map[string]bool{"wait_for_model": true},
	})
	if err != nil {
		return nil, err
	}
	url := fmt.Sprintf("%s/models/%s/pipeline/feature-extraction", s.inferenceURL, s.embeddingsModel)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if s.apiToken != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiToken)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("feature extraction request failed: %w", err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("feature extraction returned %s: %s", resp.Status, strings.TrimSpace(string(data)))
	}
	vectors, err := decodeFeatures(data)
	if err != nil {
		return nil, err
	}
	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("expected %d embeddings, got %d", len(texts), len(vectors))
	}
	return vectors, nil
}

// decodeFeatures accepts sentence vectors, or token vectors which are
// mean pooled.
func decodeFeatures(data []byte) ([][]float32, error) {
	var pooled [][]float32
	if err := json.Unmarshal(data, &pooled); err == nil {
		return pooled, nil
	}
	var tokens [][][]float32
	if err := json.Unmarshal(data, &tokens); err != nil {
		return nil, fmt.Errorf("unexpected feature extraction response: %w", err)
	}
	out := make([][]float32, len(tokens))
	for i, seq := range tokens {
		out[i] = meanPool(seq)
	}
	return out, nil
}

func meanPool(seq [][]float32) []float32 {
	if len(seq) == 0 {
		return nil
	}
	out := make([]float32, len(seq[0]))
	for _, tok := range seq {
		for j := range out {
			if j < len(tok) {
				out[j] += tok[j]
			}
		}
	}
	for j := range out {
		out[j] /= float32(len(seq))
	}
	return out
}

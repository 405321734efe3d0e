package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/tieubaoca/pdfqa-be/database"
	"github.com/tieubaoca/pdfqa-be/logger"
	"github.com/tieubaoca/pdfqa-be/repository"
	"github.com/tieubaoca/pdfqa-be/types"
	"go.uber.org/zap"
)

const stuffPrompt = `Use the following pieces of context to answer the question at the end. If you don't know the answer, just say that you don't know, don't try to make up an answer.

%s

Question: %s
Helpful Answer:`

type QAService struct {
	ai           AIService
	vectorDB     database.VectorDatabase
	history      repository.HistoryRepo
	topK         int
	historyLimit int
}

func NewQAService(ai AIService, vectorDB database.VectorDatabase, history repository.HistoryRepo, topK, historyLimit int) *QAService {
	if history == nil {
		history = repository.NewNoopHistoryRepo()
	}
	if topK <= 0 {
		topK = 4
	}
	return &QAService{
		ai:           ai,
		vectorDB:     vectorDB,
		history:      history,
		topK:         topK,
		historyLimit: historyLimit,
	}
}

// Ask answers question from the user's own documents. History is best
// effort: failures to read or write it are logged and ignored.
func (s *QAService) Ask(ctx context.Context, uid, question string) (*types.AskResponse, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, types.ErrEmptyQuestion
	}
	log := zap.L().With(zap.String("uid", uid))

	vectors, err := s.ai.Embed(ctx, []string{question})
	if err != nil {
		return nil, fmt.Errorf("failed to embed question: %w", err)
	}
	if len(vectors) != 1 {
		return nil, fmt.Errorf("expected 1 embedding, got %d", len(vectors))
	}
	retrieved, err := s.vectorDB.Search(ctx, uid, vectors[0], s.topK)
	if err != nil {
		return nil, fmt.Errorf("failed to search documents: %w", err)
	}

	previous, err := s.history.Recent(ctx, uid, s.historyLimit)
	if err != nil {
		log.Warn("failed to load history", zap.Error(err))
		previous = nil
	}

	prompt := buildPrompt(retrieved, previous, question)
	log.Debug("asking model", zap.Int("chunks", len(retrieved)), zap.String("prompt", logger.Truncate(prompt, 200)))
	answer, err := s.ai.Complete(ctx, "", prompt)
	if err != nil {
		return nil, fmt.Errorf("failed to generate answer: %w", err)
	}

	now := time.Now().UnixMilli()
	for _, msg := range []types.Message{
		{Role: types.RoleUser, Content: question, CreatedAt: now},
		{Role: types.RoleAssistant, Content: answer, CreatedAt: now + 1},
	} {
		if err := s.history.Append(ctx, uid, msg); err != nil {
			log.Warn("failed to save history", zap.Error(err))
			break
		}
	}

	sources := make([]types.Source, len(retrieved))
	for i, c := range retrieved {
		sources[i] = types.Source{DocumentID: c.DocumentID, Page: c.Page, Score: c.Score}
	}
	return &types.AskResponse{Answer: answer, Sources: sources}, nil
}

func buildPrompt(chunks []types.ScoredChunk, history []types.Message, question string) string {
	parts := make([]string, len(chunks))
	for i, c := range chunks {
		parts[i] = c.Content
	}
	q := question
	if len(history) > 0 {
		lines := make([]string, len(history))
		for i, m := range history {
			lines[i] = m.Content
		}
		q = fmt.Sprintf("Previous context: %s\n\nQuestion: %s", strings.Join(lines, "\n"), question)
	}
	return fmt.Sprintf(stuffPrompt, strings.Join(parts, "\n\n"), q)
}

package repository

import (
	"context"

	"github.com/tieubaoca/pdfqa-be/types"
)

// HistoryRepo stores the question/answer exchange of each user. Recent
// returns the newest limit messages in chronological order.
type HistoryRepo interface {
	Append(ctx context.Context, uid string, msg types.Message) error
	Recent(ctx context.Context, uid string, limit int) ([]types.Message, error)
	Clear(ctx context.Context, uid string) error
}

type noopHistoryRepo struct{}

// NewNoopHistoryRepo returns a repo that remembers nothing.
func NewNoopHistoryRepo() HistoryRepo {
	return noopHistoryRepo{}
}

func (noopHistoryRepo) Append(ctx context.Context, uid string, msg types.Message) error {
	return nil
}

func (noopHistoryRepo) Recent(ctx context.Context, uid string, limit int) ([]types.Message, error) {
	return nil, nil
}

func (noopHistoryRepo) Clear(ctx context.Context, uid string) error {
	return nil
}

func reverse(msgs []types.Message) {
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
}

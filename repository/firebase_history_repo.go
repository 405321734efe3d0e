package repository

import (
	"context"
	"strings"
	"time"

	"firebase.google.com/go/v4/db"
	"github.com/tieubaoca/pdfqa-be/types"
	"go.uber.org/zap"
)

// firebaseHistoryRepo keeps messages in the realtime database under a path
// template such as "users/{uid}/messages". Push keys sort chronologically.
type firebaseHistoryRepo struct {
	client       *db.Client
	pathTemplate string
}

func NewFirebaseHistoryRepo(client *db.Client, pathTemplate string) HistoryRepo {
	return &firebaseHistoryRepo{
		client:       client,
		pathTemplate: pathTemplate,
	}
}

func (r *firebaseHistoryRepo) ref(uid string) *db.Ref {
	return r.client.NewRef(historyPath(r.pathTemplate, uid))
}

func historyPath(template, uid string) string {
	return strings.ReplaceAll(template, "{uid}", uid)
}

func (r *firebaseHistoryRepo) Append(ctx context.Context, uid string, msg types.Message) error {
	if msg.CreatedAt == 0 {
		msg.CreatedAt = time.Now().UnixMilli()
	}
	_, err := r.ref(uid).Push(ctx, msg)
	return err
}

func (r *firebaseHistoryRepo) Recent(ctx context.Context, uid string, limit int) ([]types.Message, error) {
	if limit <= 0 {
		return nil, nil
	}
	nodes, err := r.ref(uid).OrderByKey().LimitToLast(limit).GetOrdered(ctx)
	if err != nil {
		return nil, err
	}
	msgs := make([]types.Message, 0, len(nodes))
	for _, node := range nodes {
		msg, ok := decodeNode(node)
		if !ok {
			zap.L().Warn("skipping unreadable history entry", zap.String("uid", uid), zap.String("key", node.Key()))
			continue
		}
		msgs = append(msgs, msg)
	}
	return msgs, nil
}

// decodeNode accepts both structured messages and bare strings, which
// older clients wrote.
func decodeNode(node db.QueryNode) (types.Message, bool) {
	var msg types.Message
	if err := node.Unmarshal(&msg); err == nil && msg.Content != "" {
		return msg, true
	}
	var text string
	if err := node.Unmarshal(&text); err == nil && text != "" {
		return types.Message{Role: types.RoleUser, Content: text}, true
	}
	return types.Message{}, false
}

func (r *firebaseHistoryRepo) Clear(ctx context.Context, uid string) error {
	return r.ref(uid).Delete(ctx)
}

package repository

import (
	"context"
	"time"

	"github.com/tieubaoca/pdfqa-be/types"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.uber.org/zap"
)

const historyCollection = "messages"

type mongoHistoryRepo struct {
	collection *mongo.Collection
}

func NewMongoHistoryRepo(db *mongo.Database) HistoryRepo {
	collection := db.Collection(historyCollection)
	_, err := collection.Indexes().CreateOne(context.Background(), mongo.IndexModel{
		Keys: bson.D{
			{Key: "user_id", Value: 1},
			{Key: "created_at", Value: -1},
		},
	})
	if err != nil {
		zap.L().Warn("failed to create history index", zap.Error(err))
	}
	return &mongoHistoryRepo{
		collection: collection,
	}
}

func (r *mongoHistoryRepo) Append(ctx context.Context, uid string, msg types.Message) error {
	if msg.CreatedAt == 0 {
		msg.CreatedAt = time.Now().UnixMilli()
	}
	_, err := r.collection.InsertOne(ctx, types.HistoryRecord{
		UserID:    uid,
		Role:      msg.Role,
		Content:   msg.Content,
		CreatedAt: msg.CreatedAt,
	})
	return err
}

func (r *mongoHistoryRepo) Recent(ctx context.Context, uid string, limit int) ([]types.Message, error) {
	if limit <= 0 {
		return nil, nil
	}
	cursor, err := r.collection.Find(ctx, historyFilter(uid), recentOptions(limit))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var records []types.HistoryRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, err
	}
	msgs := make([]types.Message, len(records))
	for i, rec := range records {
		msgs[i] = rec.Message()
	}
	reverse(msgs)
	return msgs, nil
}

func (r *mongoHistoryRepo) Clear(ctx context.Context, uid string) error {
	_, err := r.collection.DeleteMany(ctx, historyFilter(uid))
	return err
}

func historyFilter(uid string) bson.M {
	return bson.M{"user_id": uid}
}

// recentOptions selects the newest limit records, ties broken by insertion order.
func recentOptions(limit int) *options.FindOptionsBuilder {
	return options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}).
		SetLimit(int64(limit))
}

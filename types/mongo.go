package types

// HistoryRecord is the persisted form of a Message in MongoDB and SQLite.
type HistoryRecord struct {
	ID        string `json:"id" bson:"_id,omitempty"`
	UserID    string `json:"user_id" bson:"user_id"`
	Role      string `json:"role" bson:"role"`
	Content   string `json:"content" bson:"content"`
	CreatedAt int64  `json:"created_at" bson:"created_at"`
}

func (r HistoryRecord) Message() Message {
	return Message{Role: r.Role, Content: r.Content, CreatedAt: r.CreatedAt}
}

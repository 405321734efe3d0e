package types

const (
	TypeWebsocketPing       = "ping"
	TypeWebsocketPong       = "pong"
	TypeWebsocketAsk        = "ask"
	TypeWebsocketAnswer     = "answer"
	TypeWebsocketProcessing = "processing"
	TypeWebsocketError      = "error"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type WebsocketRequest struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

type WebSocketResponse struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

type WebSocketProcessingResponse struct {
	Message string `json:"message"`
}

type WebSocketAskPayload struct {
	Question string `json:"question"`
}

type WebSocketErrorResponse struct {
	Error string `json:"error"`
}

// Message is one entry of a user's question/answer history.
type Message struct {
	Role      string `json:"role" bson:"role"`
	Content   string `json:"content" bson:"content"`
	CreatedAt int64  `json:"created_at" bson:"created_at"`
}

package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"slices"
	"time"

	"github.com/gorilla/websocket"
	"github.com/tieubaoca/pdfqa-be/types"
	"go.uber.org/zap"
)

const (
	wsReadLimit = 512 * 1024
	wsIdle      = 60 * time.Second
)

type WebSocketService struct {
	qa       *QAService
	upgrader websocket.Upgrader
}

// NewWebSocketService accepts any origin when allowedOrigins is empty or
// contains "*".
func NewWebSocketService(qa *QAService, allowedOrigins []string) *WebSocketService {
	allowAll := len(allowedOrigins) == 0 || slices.Contains(allowedOrigins, "*")
	return &WebSocketService{
		qa: qa,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return allowAll || slices.Contains(allowedOrigins, r.Header.Get("Origin"))
			},
		},
	}
}

// HandleAsk serves one authenticated connection. Each "ask" frame gets a
// "processing" frame followed by an "answer" or "error" frame.
func (s *WebSocketService) HandleAsk(w http.ResponseWriter, r *http.Request, uid string) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		zap.L().Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	conn.SetReadLimit(wsReadLimit)
	conn.SetReadDeadline(time.Now().Add(wsIdle))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsIdle))
	})

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	log := zap.L().With(zap.String("uid", uid))

	for {
		_, p, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Debug("websocket read error", zap.Error(err))
			}
			return
		}
		conn.SetReadDeadline(time.Now().Add(wsIdle))

		var req types.WebsocketRequest
		if err := json.Unmarshal(p, &req); err != nil {
			if writeErr := writeError(conn, "invalid message"); writeErr != nil {
				return
			}
			continue
		}

		var werr error
		switch req.Type {
		case types.TypeWebsocketPing:
			werr = conn.WriteJSON(types.WebSocketResponse{Type: types.TypeWebsocketPong})
		case types.TypeWebsocketAsk:
			werr = s.handleAsk(ctx, conn, uid, req.Payload)
		default:
			werr = writeError(conn, "unsupported message type: "+req.Type)
		}
		if werr != nil {
			log.Debug("websocket write error", zap.Error(werr))
			return
		}
	}
}

func (s *WebSocketService) handleAsk(ctx context.Context, conn *websocket.Conn, uid string, raw interface{}) error {
	payloadBytes, err := json.Marshal(raw)
	if err != nil {
		return writeError(conn, "invalid payload")
	}
	var payload types.WebSocketAskPayload
	if err := json.Unmarshal(payloadBytes, &payload); err != nil {
		return writeError(conn, "invalid payload")
	}

	if err := conn.WriteJSON(types.WebSocketResponse{
		Type:    types.TypeWebsocketProcessing,
		Payload: types.WebSocketProcessingResponse{Message: "Processing question"},
	}); err != nil {
		return err
	}

	res, err := s.qa.Ask(ctx, uid, payload.Question)
	if err != nil {
		msg := "failed to answer question"
		if errors.Is(err, types.ErrEmptyQuestion) {
			msg = err.Error()
		} else {
			zap.L().Error("websocket ask failed", zap.String("uid", uid), zap.Error(err))
		}
		return writeError(conn, msg)
	}
	return conn.WriteJSON(types.WebSocketResponse{
		Type:    types.TypeWebsocketAnswer,
		Payload: res,
	})
}

func writeError(conn *websocket.Conn, msg string) error {
	return conn.WriteJSON(types.WebSocketResponse{
		Type:    types.TypeWebsocketError,
		Payload: types.WebSocketErrorResponse{Error: msg},
	})
}

package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tieubaoca/pdfqa-be/middleware"
	"github.com/tieubaoca/pdfqa-be/types"
)

type QAService interface {
	Ask(ctx context.Context, uid, question string) (*types.AskResponse, error)
}

type WebSocketService interface {
	HandleAsk(w http.ResponseWriter, r *http.Request, uid string)
}

type QAHandler interface {
	HandleAsk(c *gin.Context)
	HandleWebSocket(c *gin.Context)
}

type qaHandler struct {
	qa QAService
	ws WebSocketService
}

func NewQAHandler(qa QAService, ws WebSocketService) QAHandler {
	return &qaHandler{
		qa: qa,
		ws: ws,
	}
}

func (h *qaHandler) HandleAsk(c *gin.Context) {
	var req types.AskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}
	resp, err := h.qa.Ask(c.Request.Context(), middleware.UserID(c), req.Question)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, resp)
}

func (h *qaHandler) HandleWebSocket(c *gin.Context) {
	h.ws.HandleAsk(c.Writer, c.Request, middleware.UserID(c))
}

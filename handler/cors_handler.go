package handler

import (
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"
)

type CorsHandler struct {
	allowedOrigins []string
	allowAll       bool
}

// NewCorsHandler allows every origin when allowedOrigins is empty or
// contains "*".
func NewCorsHandler(allowedOrigins []string) *CorsHandler {
	return &CorsHandler{
		allowedOrigins: allowedOrigins,
		allowAll:       len(allowedOrigins) == 0 || slices.Contains(allowedOrigins, "*"),
	}
}

func (h *CorsHandler) CorsMiddleware(c *gin.Context) {
	origin := c.GetHeader("Origin")
	switch {
	case h.allowAll:
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
	case origin != "" && slices.Contains(h.allowedOrigins, origin):
		c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		c.Writer.Header().Add("Vary", "Origin")
	}
	c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
	c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

	if c.Request.Method == http.MethodOptions {
		c.AbortWithStatus(http.StatusOK)
		return
	}
	c.Next()
}

package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/tieubaoca/pdfqa-be/auth"
	"github.com/tieubaoca/pdfqa-be/types"
	"go.uber.org/zap"
)

const userContextKey = "uid"

// AuthMiddleware accepts "Authorization: Bearer <token>" and stores the
// verified uid on the gin context.
func AuthMiddleware(verifier auth.Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c.GetHeader("Authorization"))
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, types.DataResponse{
				Status:  false,
				Message: "Missing authentication token",
			})
			return
		}

		uid, err := verifier.Verify(c.Request.Context(), token)
		if err != nil {
			zap.L().Debug("rejected token", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, types.DataResponse{
				Status:  false,
				Message: "Invalid authentication credentials",
			})
			return
		}
		c.Set(userContextKey, uid)
		c.Next()
	}
}

// UserID returns the uid set by AuthMiddleware, or "" outside it.
func UserID(c *gin.Context) string {
	return c.GetString(userContextKey)
}

func bearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func HandleHealth(appName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
			"app":    appName,
		})
	}
}

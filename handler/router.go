package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/tieubaoca/pdfqa-be/auth"
	"github.com/tieubaoca/pdfqa-be/middleware"
)

type Handlers struct {
	AppName string
	Cors    *CorsHandler
	PDF     PDFHandler
	QA      QAHandler
	User    UserHandler
}

// NewRouter registers every route. Everything except /health requires a
// bearer token accepted by verifier.
func NewRouter(h Handlers, verifier auth.Verifier) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogger(), h.Cors.CorsMiddleware)

	router.GET("/health", HandleHealth(h.AppName))

	authorized := router.Group("/")
	authorized.Use(middleware.AuthMiddleware(verifier))
	{
		pdf := authorized.Group("/pdf")
		pdf.POST("/upload", h.PDF.HandleUpload)
		pdf.GET("/:document_id", h.PDF.HandleDownload)
		pdf.DELETE("/:document_id", h.PDF.HandleDelete)

		qa := authorized.Group("/qa")
		qa.POST("/ask", h.QA.HandleAsk)
		qa.GET("/ws", h.QA.HandleWebSocket)

		user := authorized.Group("/user")
		user.GET("/me", h.User.HandleMe)
		user.GET("/files", h.User.HandleListFiles)
		user.GET("/files/metadata", h.User.HandleFileMetadata)
		user.POST("/clear_data", h.User.HandleClearData)

		authorized.POST("/clear_user_data", h.User.HandleClearData)
	}
	return router
}

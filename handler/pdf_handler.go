package handler

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tieubaoca/pdfqa-be/middleware"
	"github.com/tieubaoca/pdfqa-be/types"
)

// DocumentService is the part of service.DocumentService the PDF routes use.
type DocumentService interface {
	Upload(ctx context.Context, uid, filename string, r io.Reader, size int64, progress chan<- types.ProcessingDocumentStatus) (*types.UploadResult, error)
	Delete(ctx context.Context, uid, documentID string) error
	Open(ctx context.Context, uid, documentID string) (io.ReadCloser, error)
}

type PDFHandler interface {
	HandleUpload(c *gin.Context)
	HandleDelete(c *gin.Context)
	HandleDownload(c *gin.Context)
}

type pdfHandler struct {
	documents DocumentService
}

func NewPDFHandler(documents DocumentService) PDFHandler {
	return &pdfHandler{
		documents: documents,
	}
}

type uploadOutcome struct {
	result *types.UploadResult
	err    error
}

// HandleUpload indexes the multipart "file" field. With ?stream=true the
// response is an SSE stream of "progress" events closed by a "result" or
// "error" event.
func (h *pdfHandler) HandleUpload(c *gin.Context) {
	uid := middleware.UserID(c)
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		badRequest(c, "Invalid file")
		return
	}
	defer file.Close()

	ctx := c.Request.Context()
	if c.Query("stream") != "true" {
		result, err := h.documents.Upload(ctx, uid, header.Filename, file, header.Size, nil)
		if err != nil {
			respondError(c, err)
			return
		}
		result.OriginalName = header.Filename
		respondOK(c, result)
		return
	}

	progress := make(chan types.ProcessingDocumentStatus)
	done := make(chan uploadOutcome, 1)
	go func() {
		result, err := h.documents.Upload(ctx, uid, header.Filename, file, header.Size, progress)
		done <- uploadOutcome{result: result, err: err}
	}()

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Status(http.StatusOK)

	// Upload closes progress before it returns.
	for status := range progress {
		c.SSEvent("progress", status)
		c.Writer.Flush()
	}
	out := <-done
	if out.err != nil {
		c.Error(out.err)
		c.SSEvent("error", errorResponse(out.err))
	} else {
		out.result.OriginalName = header.Filename
		c.SSEvent("result", types.DataResponse{Status: true, Data: out.result})
	}
	c.Writer.Flush()
}

func (h *pdfHandler) HandleDelete(c *gin.Context) {
	documentID := c.Param("document_id")
	if err := h.documents.Delete(c.Request.Context(), middleware.UserID(c), documentID); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"document_id": documentID})
}

func (h *pdfHandler) HandleDownload(c *gin.Context) {
	documentID := c.Param("document_id")
	rc, err := h.documents.Open(c.Request.Context(), middleware.UserID(c), documentID)
	if err != nil {
		respondError(c, err)
		return
	}
	defer rc.Close()

	c.DataFromReader(http.StatusOK, -1, "application/pdf", rc, map[string]string{
		"Content-Disposition": fmt.Sprintf("inline; filename=%q", documentID),
	})
}

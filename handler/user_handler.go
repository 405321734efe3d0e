package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/tieubaoca/pdfqa-be/middleware"
	"github.com/tieubaoca/pdfqa-be/service"
	"github.com/tieubaoca/pdfqa-be/types"
)

type UserHandler interface {
	HandleMe(c *gin.Context)
	HandleListFiles(c *gin.Context)
	HandleFileMetadata(c *gin.Context)
	HandleClearData(c *gin.Context)
}

type userHandler struct {
	userService service.UserService
}

func NewUserHandler(userService service.UserService) UserHandler {
	return &userHandler{
		userService: userService,
	}
}

func (h *userHandler) HandleMe(c *gin.Context) {
	respondOK(c, types.UserResponse{UserID: middleware.UserID(c)})
}

func (h *userHandler) HandleListFiles(c *gin.Context) {
	files, err := h.userService.ListFiles(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, types.FilesResponse{Files: files})
}

func (h *userHandler) HandleFileMetadata(c *gin.Context) {
	var req types.FileMetadataRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		badRequest(c, "path is required")
		return
	}
	meta, err := h.userService.GetFileMetadata(c.Request.Context(), middleware.UserID(c), req.Path)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, meta)
}

// HandleClearData reports partial progress alongside the combined error
// when some of the user's data could not be removed.
func (h *userHandler) HandleClearData(c *gin.Context) {
	result, err := h.userService.ClearData(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		if result == nil {
			respondError(c, err)
			return
		}
		c.Error(err)
		c.JSON(statusFor(err), types.DataResponse{
			Status:  false,
			Message: err.Error(),
			Data:    result,
		})
		return
	}
	respondOK(c, result)
}

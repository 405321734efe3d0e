package types

type AskRequest struct {
	Question string `json:"question" binding:"required"`
}

type FileMetadataRequest struct {
	Path string `form:"path" binding:"required"`
}

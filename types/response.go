package types

type DataResponse struct {
	Status  bool        `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

type UploadResult struct {
	DocumentID   string `json:"document_id"`
	OriginalName string `json:"original_name,omitempty"`
	Pages        int    `json:"pages"`
	Chunks       int    `json:"chunks"`
	Stored       bool   `json:"stored"`
}

type ProcessingDocumentStatus struct {
	Status          string  `json:"status"`
	Message         string  `json:"message"`
	Progress        float64 `json:"progress"`
	TotalChunks     int     `json:"total_chunks"`
	ProcessedChunks int     `json:"processed_chunks"`
}

type Source struct {
	DocumentID string  `json:"document_id"`
	Page       int     `json:"page"`
	Score      float32 `json:"score"`
}

type AskResponse struct {
	Answer  string   `json:"answer"`
	Sources []Source `json:"sources"`
}

type UserResponse struct {
	UserID string `json:"user_id"`
}

type FilesResponse struct {
	Files []string `json:"files"`
}

type ClearDataResult struct {
	FilesDeleted   int  `json:"files_deleted"`
	VectorsCleared bool `json:"vectors_cleared"`
	HistoryCleared bool `json:"history_cleared"`
}

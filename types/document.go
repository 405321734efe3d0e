package types

import "time"

// Page is the extracted text of a single PDF page.
type Page struct {
	Number int
	Text   string
}

type DocumentChunk struct {
	Content  string           // The actual text content
	Page     int              // Page number where the chunk is from
	Index    int              // Position of the chunk inside the document
	Metadata DocumentMetadata // Associated metadata for the chunk
}

// DocumentMetadata contains metadata information for PDF chunks
type DocumentMetadata struct {
	Title      string // Title of the PDF document
	Source     string // Storage key of the source file
	PageNum    int    // Current page number
	TotalPages int    // Total number of pages in the document
}

// DocumentServiceConfig contains configuration options for PDF processing
type DocumentServiceConfig struct {
	MaxChunkSize   int   // Maximum size for text chunks
	OverlapSize    int   // Size of overlap between chunks
	MaxUploadSize  int64 // Largest accepted upload in bytes, 0 disables the check
	EmbedBatchSize int   // Number of chunks embedded per provider call
	EmbedWorkers   int   // Embedding batches in flight at once
	KeepFiles      bool  // Keep the uploaded PDF in storage after indexing
}

// Chunk is a stored vector record. UserID scopes every query against it.
type Chunk struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	DocumentID string    `json:"document_id"`
	Page       int       `json:"page"`
	Index      int       `json:"chunk_index"`
	Content    string    `json:"content"`
	Embedding  []float32 `json:"-"`
	CreatedAt  int64     `json:"created_at"`
}

type ScoredChunk struct {
	Chunk
	Score float32 `json:"score"`
}

type FileMetadata struct {
	Path       string    `json:"path"`
	Size       int64     `json:"size"`
	CreatedAt  time.Time `json:"created_at"`
	ModifiedAt time.Time `json:"modified_at"`
}

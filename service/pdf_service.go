package service

import (
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/ledongthuc/pdf"
	"github.com/tieubaoca/pdfqa-be/types"
	"go.uber.org/zap"
)

// PDFProcessor turns an uploaded PDF into embeddable chunks.
type PDFProcessor interface {
	ExtractPages(r io.ReaderAt, size int64) ([]types.Page, error)
	Chunk(pages []types.Page, metadata types.DocumentMetadata) []types.DocumentChunk
}

// PDFService handles PDF processing operations
type PDFService struct {
	maxChunkSize int // Maximum size of each text chunk, in characters
	overlapSize  int // Size of overlap between chunks
}

var DefaultDocumentServiceConfig = types.DocumentServiceConfig{
	MaxChunkSize:   1000,
	OverlapSize:    100,
	EmbedBatchSize: 32,
	KeepFiles:      true,
}

// NewPDFService creates a new PDF service with configurable chunk sizes
func NewPDFService(config types.DocumentServiceConfig) *PDFService {
	if config.MaxChunkSize <= 0 {
		config.MaxChunkSize = DefaultDocumentServiceConfig.MaxChunkSize
	}
	if config.OverlapSize < 0 || config.OverlapSize >= config.MaxChunkSize {
		config.OverlapSize = 0
	}
	return &PDFService{
		maxChunkSize: config.MaxChunkSize,
		overlapSize:  config.OverlapSize,
	}
}

// ExtractPages returns the text of every non blank page, numbered from 1.
// Data the parser cannot read is reported as types.ErrInvalidFile.
func (s *PDFService) ExtractPages(r io.ReaderAt, size int64) (pages []types.Page, err error) {
	// The parser panics on some malformed inputs.
	defer func() {
		if p := recover(); p != nil {
			pages = nil
			err = fmt.Errorf("%w: %v", types.ErrInvalidFile, p)
		}
	}()

	reader, err := pdf.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrInvalidFile, err)
	}

	totalPages := reader.NumPage()
	zap.L().Debug("extracting pdf", zap.Int("pages", totalPages))
	for pageNum := 1; pageNum <= totalPages; pageNum++ {
		page := reader.Page(pageNum)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			zap.L().Warn("failed to extract page text", zap.Int("page", pageNum), zap.Error(err))
			continue
		}
		text = s.cleanText(text)
		if text == "" {
			continue
		}
		pages = append(pages, types.Page{Number: pageNum, Text: text})
	}
	if len(pages) == 0 {
		return nil, types.ErrEmptyDocument
	}
	return pages, nil
}

// Chunk splits every page separately, so a chunk never spans pages. Index
// runs across the whole document.
func (s *PDFService) Chunk(pages []types.Page, metadata types.DocumentMetadata) []types.DocumentChunk {
	var chunks []types.DocumentChunk
	for _, page := range pages {
		pageMeta := metadata
		pageMeta.PageNum = page.Number
		for _, content := range s.splitText(page.Text) {
			chunks = append(chunks, types.DocumentChunk{
				Content:  content,
				Page:     page.Number,
				Index:    len(chunks),
				Metadata: pageMeta,
			})
		}
	}
	return chunks
}

// splitText cuts text into pieces of at most maxChunkSize runes, preferring
// a sentence end, then a space, and starts each following piece
// overlapSize runes before the previous cut.
func (s *PDFService) splitText(text string) []string {
	runes := []rune(strings.TrimSpace(text))
	textLen := len(runes)
	if textLen == 0 {
		return nil
	}
	if textLen <= s.maxChunkSize {
		return []string{string(runes)}
	}

	var chunks []string
	currentPos := 0
	for currentPos < textLen {
		chunkEnd := currentPos + s.maxChunkSize
		if chunkEnd >= textLen {
			if chunk := strings.TrimSpace(string(runes[currentPos:])); chunk != "" {
				chunks = append(chunks, chunk)
			}
			break
		}

		// Find nearest sentence end
		cut := chunkEnd
		found := false
		for i := chunkEnd - 1; i > currentPos; i-- {
			if runes[i] == '.' || runes[i] == '?' || runes[i] == '!' {
				cut = i + 1
				found = true
				break
			}
		}
		// If no sentence end found, use word boundary
		if !found {
			for i := chunkEnd - 1; i > currentPos; i-- {
				if unicode.IsSpace(runes[i]) {
					cut = i
					break
				}
			}
		}

		if chunk := strings.TrimSpace(string(runes[currentPos:cut])); chunk != "" {
			chunks = append(chunks, chunk)
		}

		next := cut - s.overlapSize
		if next <= currentPos {
			next = cut
		}
		// Start the overlap on a word.
		if next < cut && next > 0 && !unicode.IsSpace(runes[next-1]) {
			for i := next; i < cut; i++ {
				if unicode.IsSpace(runes[i]) {
					next = i + 1
					break
				}
			}
		}
		currentPos = next
	}
	return chunks
}

var textReplacer = strings.NewReplacer(
	"\u0000", "", // Null character
	"\ufffd", "", // Unicode replacement character
	"\u001b", "", // Escape character
	"\r", "",
	"\f", "\n",
	"\uf8ff", "", // Apple logo
	"‡", "",
	"†", "",
)

func (s *PDFService) cleanText(text string) string {
	cleaned := textReplacer.Replace(text)
	lines := strings.Split(cleaned, "\n")
	for i, line := range lines {
		lines[i] = strings.Join(strings.Fields(line), " ")
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

package service

import (
	"bytes"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tieubaoca/pdfqa-be/types"
)

func TestSplitTextShortText(t *testing.T) {
	s := NewPDFService(types.DocumentServiceConfig{MaxChunkSize: 100, OverlapSize: 10})
	assert.Equal(t, []string{"Hello world."}, s.splitText("  Hello world.  "))
	assert.Empty(t, s.splitText("   "))
}

func TestSplitTextRespectsBoundaries(t *testing.T) {
	s := NewPDFService(types.DocumentServiceConfig{MaxChunkSize: 40, OverlapSize: 0})
	text := "The first sentence is here. The second sentence follows it. And a third one closes."
	chunks := s.splitText(text)
	require.Greater(t, len(chunks), 1)
	for _, c := range chunks {
		assert.LessOrEqual(t, utf8.RuneCountInString(c), 40)
	}
	assert.Equal(t, "The first sentence is here.", chunks[0])
	assert.Equal(t, strings.Fields(text), strings.Fields(strings.Join(chunks, " ")))
}

func TestSplitTextSentenceEndAtChunkLimit(t *testing.T) {
	s := NewPDFService(types.DocumentServiceConfig{MaxChunkSize: 20, OverlapSize: 0})
	assert.Equal(t,
		[]string{"Alpha beta gam done.", "Next sentence here."},
		s.splitText("Alpha beta gam done. Next sentence here."))
}

func TestSplitTextOverlap(t *testing.T) {
	s := NewPDFService(types.DocumentServiceConfig{MaxChunkSize: 30, OverlapSize: 10})
	chunks := s.splitText("alpha beta gamma delta epsilon zeta eta theta iota kappa lambda")
	require.Greater(t, len(chunks), 1)
	for i := 1; i < len(chunks); i++ {
		assert.Contains(t, strings.Fields(chunks[i-1]), strings.Fields(chunks[i])[0], "chunk %d should overlap the previous one", i)
	}
}

func TestSplitTextAlwaysProgresses(t *testing.T) {
	s := NewPDFService(types.DocumentServiceConfig{MaxChunkSize: 10, OverlapSize: 9})
	text := strings.Repeat("x", 95)
	chunks := s.splitText(text)
	require.NotEmpty(t, chunks)
	for _, c := range chunks {
		assert.LessOrEqual(t, len(c), 10)
	}
}

func TestSplitTextIsRuneSafe(t *testing.T) {
	s := NewPDFService(types.DocumentServiceConfig{MaxChunkSize: 7, OverlapSize: 2})
	for _, c := range s.splitText("Tiếng Việt có dấu rất nhiều chữ cái đặc biệt") {
		assert.True(t, utf8.ValidString(c), c)
		assert.LessOrEqual(t, utf8.RuneCountInString(c), 7)
	}
}

func TestChunkKeepsPagesAndIndexes(t *testing.T) {
	s := NewPDFService(types.DocumentServiceConfig{MaxChunkSize: 20, OverlapSize: 0})
	pages := []types.Page{
		{Number: 1, Text: "Page one has some words."},
		{Number: 3, Text: "Short."},
	}
	chunks := s.Chunk(pages, types.DocumentMetadata{Title: "doc.pdf", TotalPages: 3})
	require.GreaterOrEqual(t, len(chunks), 3)
	for i, c := range chunks {
		assert.Equal(t, i, c.Index)
		assert.Equal(t, c.Page, c.Metadata.PageNum)
		assert.Equal(t, "doc.pdf", c.Metadata.Title)
	}
	last := chunks[len(chunks)-1]
	assert.Equal(t, 3, last.Page)
	assert.Equal(t, "Short.", last.Content)
}

func TestCleanText(t *testing.T) {
	s := NewPDFService(DefaultDocumentServiceConfig)
	assert.Equal(t, "a b\nc", s.cleanText("  a\u0000   b\r\n c �"))
}

func TestExtractPagesRejectsGarbage(t *testing.T) {
	s := NewPDFService(DefaultDocumentServiceConfig)
	data := []byte("%PDF-1.4 this is not really a pdf")
	_, err := s.ExtractPages(bytes.NewReader(data), int64(len(data)))
	assert.ErrorIs(t, err, types.ErrInvalidFile)
}

func TestExtractPagesReadsText(t *testing.T) {
	s := NewPDFService(DefaultDocumentServiceConfig)
	data := minimalPDF("Hello from page one", "", "Goodbye from page three")
	pages, err := s.ExtractPages(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	require.Len(t, pages, 2)
	assert.Equal(t, 1, pages[0].Number)
	assert.Contains(t, pages[0].Text, "Hello from page one")
	assert.Equal(t, 3, pages[1].Number)
	assert.Contains(t, pages[1].Text, "Goodbye from page three")
}

func TestExtractPagesEmptyDocument(t *testing.T) {
	s := NewPDFService(DefaultDocumentServiceConfig)
	data := minimalPDF("")
	_, err := s.ExtractPages(bytes.NewReader(data), int64(len(data)))
	assert.ErrorIs(t, err, types.ErrEmptyDocument)
}

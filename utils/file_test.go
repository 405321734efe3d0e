package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeFileName(t *testing.T) {
	cases := map[string]string{
		"report.pdf":          "report.pdf",
		"../../etc/passwd":    "passwd",
		`C:\docs\my file.pdf`: "my_file.pdf",
		"Résumé (final).PDF":  "R_sum_final_.PDF",
		"...":                 "document",
		"":                    "document",
	}
	for in, want := range cases {
		assert.Equal(t, want, SanitizeFileName(in), in)
	}
}

func TestTimestampedFileName(t *testing.T) {
	ts := time.UnixMilli(1700000000123)
	assert.Equal(t, "report_1700000000123.pdf", TimestampedFileName("report.PDF", ts))
	assert.Equal(t, "my_notes_1700000000123.pdf", TimestampedFileName("my notes.pdf", ts))
	assert.Equal(t, "document_1700000000123.pdf", TimestampedFileName(".pdf", ts))
}

func TestIsPDF(t *testing.T) {
	assert.True(t, IsPDF("a.pdf"))
	assert.True(t, IsPDF("a.PDF"))
	assert.False(t, IsPDF("a.txt"))
	assert.False(t, IsPDF("pdf"))
}

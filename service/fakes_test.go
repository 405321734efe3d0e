package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"io"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tieubaoca/pdfqa-be/database"
	"github.com/tieubaoca/pdfqa-be/storage"
	"github.com/tieubaoca/pdfqa-be/types"
)

const embedDims = 16

// fakeAI embeds by hashing words into a small bag-of-words vector.
type fakeAI struct {
	mu       sync.Mutex
	prompts  []string
	answer   string
	embedErr error
	failFrom int // fail Embed calls from this call number on, 0 disables
	calls    int
}

func (f *fakeAI) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	f.calls++
	call := f.calls
	f.mu.Unlock()
	if f.embedErr != nil && (f.failFrom == 0 || call >= f.failFrom) {
		return nil, f.embedErr
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v := make([]float32, embedDims)
		for _, w := range strings.Fields(strings.ToLower(t)) {
			h := fnv.New32a()
			h.Write([]byte(strings.Trim(w, ".,?!")))
			v[h.Sum32()%embedDims]++
		}
		out[i] = v
	}
	return out, nil
}

func (f *fakeAI) Complete(ctx context.Context, system, prompt string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, prompt)
	if f.answer == "" {
		return "answer", nil
	}
	return f.answer, nil
}

func (f *fakeAI) lastPrompt() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.prompts) == 0 {
		return ""
	}
	return f.prompts[len(f.prompts)-1]
}

// fakePDF treats everything after the header as form-feed separated pages.
type fakePDF struct {
	*PDFService
}

func (f fakePDF) ExtractPages(r io.ReaderAt, size int64) ([]types.Page, error) {
	data := make([]byte, size)
	if _, err := r.ReadAt(data, 0); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	body := strings.TrimPrefix(string(data), "%PDF-")
	var pages []types.Page
	for i, text := range strings.Split(body, "\f") {
		if text = strings.TrimSpace(text); text != "" {
			pages = append(pages, types.Page{Number: i + 1, Text: text})
		}
	}
	if len(pages) == 0 {
		return nil, types.ErrEmptyDocument
	}
	return pages, nil
}

func fakePDFBody(pages ...string) []byte {
	return []byte("%PDF-" + strings.Join(pages, "\f"))
}

type fixture struct {
	store   *storage.LocalStorage
	vectors *database.LocalStore
	ai      *fakeAI
	docs    *DocumentService
}

func newFixture(t *testing.T, cfg types.DocumentServiceConfig) *fixture {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.NewLocalStorage(filepath.Join(dir, "files"))
	require.NoError(t, err)
	vectors, err := database.NewLocalStore(filepath.Join(dir, "vectors.db"))
	require.NoError(t, err)
	t.Cleanup(func() { vectors.Close() })

	ai := &fakeAI{}
	pdf := fakePDF{NewPDFService(cfg)}
	return &fixture{
		store:   store,
		vectors: vectors,
		ai:      ai,
		docs:    NewDocumentService(store, vectors, ai, pdf, cfg),
	}
}

func (f *fixture) upload(t *testing.T, uid, name string, pages ...string) *types.UploadResult {
	t.Helper()
	body := fakePDFBody(pages...)
	res, err := f.docs.Upload(context.Background(), uid, name, bytes.NewReader(body), int64(len(body)), nil)
	require.NoError(t, err)
	return res
}

// minimalPDF writes a valid PDF with one text line per page.
func minimalPDF(pages ...string) []byte {
	var buf bytes.Buffer
	var offsets []int
	write := func(obj string) {
		offsets = append(offsets, buf.Len())
		buf.WriteString(obj)
	}
	objects := 3 + 2*len(pages)

	buf.WriteString("%PDF-1.4\n")
	kids := make([]string, len(pages))
	for i := range pages {
		kids[i] = fmt.Sprintf("%d 0 R", 4+2*i)
	}
	write("1 0 obj\n<< /Type /Catalog /Pages 2 0 R >>\nendobj\n")
	write(fmt.Sprintf("2 0 obj\n<< /Type /Pages /Kids [%s] /Count %d >>\nendobj\n", strings.Join(kids, " "), len(pages)))
	write("3 0 obj\n<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>\nendobj\n")
	for i, text := range pages {
		pageObj := 4 + 2*i
		write(fmt.Sprintf("%d 0 obj\n<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 3 0 R >> >> /Contents %d 0 R >>\nendobj\n", pageObj, pageObj+1))
		stream := fmt.Sprintf("BT /F1 12 Tf 72 712 Td (%s) Tj ET", text)
		write(fmt.Sprintf("%d 0 obj\n<< /Length %d >>\nstream\n%s\nendstream\nendobj\n", pageObj+1, len(stream), stream))
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", objects+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", objects+1, xref)
	return buf.Bytes()
}

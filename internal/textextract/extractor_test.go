package textextract

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/proof-extractor/internal/common"
)

type call struct {
	name string
	args []string
}

type fakeRunner struct {
	mu      sync.Mutex
	calls   []call
	pdftext string
	pdfErr  error
	pages   int
	ocrText string
	ocrErr  error
}

func (f *fakeRunner) Run(_ context.Context, name string, args ...string) ([]byte, []byte, error) {
	f.mu.Lock()
	f.calls = append(f.calls, call{name: name, args: args})
	f.mu.Unlock()

	switch name {
	case "pdftotext":
		if f.pdfErr != nil {
			return nil, []byte("Syntax Error"), f.pdfErr
		}
		return []byte(f.pdftext), nil, nil
	case "pdftoppm":
		prefix := args[len(args)-1]
		for i := 1; i <= f.pages; i++ {
			if err := os.WriteFile(prefix+"-"+string(rune('0'+i))+".png", []byte("png"), 0o600); err != nil {
				return nil, nil, err
			}
		}
		return nil, nil, nil
	case "tesseract":
		if f.ocrErr != nil {
			return nil, []byte("read error"), f.ocrErr
		}
		return []byte(f.ocrText), nil, nil
	}
	return nil, nil, errors.New("unexpected command " + name)
}

func (f *fakeRunner) names() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.calls))
	for _, c := range f.calls {
		out = append(out, c.name)
	}
	return out
}

func newTestExtractor(r Runner, cfg Config) *Extractor {
	return NewExtractor(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)), WithRunner(r))
}

func TestExtractBytesPlainText(t *testing.T) {
	r := &fakeRunner{}
	e := newTestExtractor(r, Config{})

	res, err := e.ExtractBytes(context.Background(), "notes.MD", []byte("Community Lead\r\n\r\n\r\n\r\nEkoLance\t\tpart-time  "))
	require.NoError(t, err)
	assert.Equal(t, MethodPlainText, res.Method)
	assert.Equal(t, "Community Lead\n\nEkoLance part-time", res.Text)
	assert.Empty(t, r.names())
}

func TestExtractBytesPDFTextLayer(t *testing.T) {
	r := &fakeRunner{pdftext: "Certificate of Completion\fAwarded to Ada Lovelace\f"}
	e := newTestExtractor(r, Config{})

	res, err := e.ExtractBytes(context.Background(), "cert.pdf", []byte("%PDF-1.7"))
	require.NoError(t, err)
	assert.Equal(t, MethodPDFText, res.Method)
	assert.Equal(t, 2, res.Pages)
	assert.Equal(t, "Certificate of Completion\nAwarded to Ada Lovelace", res.Text)
	assert.Equal(t, []string{"pdftotext"}, r.names())
}

func TestExtractBytesScannedPDFFallsBackToOCR(t *testing.T) {
	tests := []struct {
		name    string
		runner  *fakeRunner
		maxPage int
		pages   int
	}{
		{name: "thin text layer", runner: &fakeRunner{pdftext: "  p. 1 \f", pages: 2, ocrText: "Open Source Contributor"}, pages: 2},
		{name: "pdftotext failure", runner: &fakeRunner{pdfErr: errors.New("exit status 1"), pages: 1, ocrText: "Open Source Contributor"}, pages: 1},
		{name: "page limit", runner: &fakeRunner{pages: 3, ocrText: "Open Source Contributor"}, maxPage: 2, pages: 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestExtractor(tt.runner, Config{MaxPages: tt.maxPage})

			res, err := e.ExtractBytes(context.Background(), "scan.pdf", []byte("%PDF-1.7"))
			require.NoError(t, err)
			assert.Equal(t, MethodPDFOCR, res.Method)
			assert.Equal(t, tt.pages, res.Pages)
			assert.Equal(t, strings.Repeat("Open Source Contributor\n\n", tt.pages-1)+"Open Source Contributor", res.Text)

			names := tt.runner.names()
			require.GreaterOrEqual(t, len(names), 2)
			assert.Equal(t, "pdftotext", names[0])
			assert.Equal(t, "pdftoppm", names[1])
		})
	}
}

func TestExtractBytesImageUsesTesseract(t *testing.T) {
	r := &fakeRunner{ocrText: "freeCodeCamp\nResponsive Web Design"}
	e := newTestExtractor(r, Config{TesseractLang: "eng+deu", TessdataDir: "/opt/tessdata"})

	res, err := e.ExtractBytes(context.Background(), "badge.png", []byte{0x89, 'P', 'N', 'G'})
	require.NoError(t, err)
	assert.Equal(t, MethodImageOCR, res.Method)
	assert.Equal(t, "freeCodeCamp\nResponsive Web Design", res.Text)

	require.Len(t, r.calls, 1)
	args := r.calls[0].args
	assert.Equal(t, "stdout", args[1])
	assert.Equal(t, []string{"-l", "eng+deu", "--tessdata-dir", "/opt/tessdata"}, args[2:])
	assert.Equal(t, ".png", filepath.Ext(args[0]))
}

func TestExtractBytesErrors(t *testing.T) {
	e := newTestExtractor(&fakeRunner{ocrErr: errors.New("exit status 1")}, Config{})

	_, err := e.ExtractBytes(context.Background(), "resume.docx", []byte("x"))
	require.Error(t, err)
	assert.True(t, common.IsPermanent(err))

	_, err = e.ExtractBytes(context.Background(), "photo.jpg", []byte("x"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tesseract")
}

func TestExtractFileUnsupported(t *testing.T) {
	e := newTestExtractor(&fakeRunner{}, Config{})
	_, err := e.ExtractFile(context.Background(), filepath.Join(t.TempDir(), "a.xlsx"))
	require.Error(t, err)
	assert.True(t, common.IsPermanent(err))
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"a\r\nb\rc", "a\nb\nc"},
		{"Title\n-----\nBody", "Title\n\nBody"},
		{"a\t\tb    c   \nd", "a b c\nd"},
		{"one\n\n\n\n\ntwo", "one\n\ntwo"},
		{"page1\fpage2", "page1\npage2"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Normalize(tt.in), "input %q", tt.in)
	}
}

// Package textextract pulls plain text out of uploaded documents with the
// poppler and tesseract command-line tools.
package textextract

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/joseph-ayodele/proof-extractor/constants"
	"github.com/joseph-ayodele/proof-extractor/internal/common"
)

// Extraction methods.
const (
	MethodPlainText = "plain-text"
	MethodPDFText   = "pdf-text"
	MethodPDFOCR    = "pdf-ocr"
	MethodImageOCR  = "image-ocr"
)

// minPDFTextChars is the embedded-text yield below which a PDF is treated as scanned.
const minPDFTextChars = 20

type Config struct {
	Pdftotext     string // binary name or absolute path; if empty -> "pdftotext"
	Pdftoppm      string // binary name or absolute path; if empty -> "pdftoppm"
	Tesseract     string // binary name or absolute path; if empty -> "tesseract"
	TesseractLang string // default "eng"
	TessdataDir   string
	DPI           int // rasterization DPI for scanned PDFs, default 300
	MaxPages      int // 0 = no limit
}

type Result struct {
	Text     string
	Pages    int
	Method   string
	Duration time.Duration
	Warnings []string
}

type Extractor struct {
	cfg    Config
	runner Runner
	logger *slog.Logger
}

type Option func(*Extractor)

// WithRunner replaces the command runner.
func WithRunner(r Runner) Option {
	return func(e *Extractor) { e.runner = r }
}

func NewExtractor(cfg Config, logger *slog.Logger, opts ...Option) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Pdftotext == "" {
		cfg.Pdftotext = "pdftotext"
	}
	if cfg.Pdftoppm == "" {
		cfg.Pdftoppm = "pdftoppm"
	}
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.TesseractLang == "" {
		cfg.TesseractLang = "eng"
	}
	if cfg.DPI <= 0 {
		cfg.DPI = 300
	}
	e := &Extractor{cfg: cfg, runner: execRunner{logger: logger}, logger: logger}
	for _, o := range opts {
		o(e)
	}
	return e
}

// ExtractFile picks a strategy based on file extension.
func (e *Extractor) ExtractFile(ctx context.Context, path string) (Result, error) {
	start := time.Now()
	ext := constants.NormalizeExt(filepath.Ext(path))
	e.logger.Debug("starting text extraction", "path", path, "ext", ext)

	var (
		res Result
		err error
	)
	switch {
	case isText(ext):
		var b []byte
		if b, err = os.ReadFile(path); err == nil {
			res = Result{Text: Normalize(string(b)), Pages: 1, Method: MethodPlainText}
		}
	case ext == "pdf":
		res, err = e.extractPDF(ctx, path)
	case isImage(ext):
		res, err = e.extractImage(ctx, path)
	default:
		e.logger.Warn("unsupported text extraction extension", "extension", ext)
		return Result{}, common.Permanentf("unsupported file type %q", ext)
	}
	res.Duration = time.Since(start)
	if err != nil {
		return res, err
	}
	e.logger.Info("text extracted", "method", res.Method, "pages", res.Pages, "chars", len(res.Text), "elapsed_ms", res.Duration.Milliseconds())
	return res, nil
}

// ExtractBytes extracts text from an in-memory upload. Plain text is decoded
// directly; other documents are spooled to a temp file for the tools.
func (e *Extractor) ExtractBytes(ctx context.Context, filename string, data []byte) (Result, error) {
	ext := constants.NormalizeExt(filepath.Ext(filename))
	if isText(ext) {
		return Result{Text: Normalize(string(data)), Pages: 1, Method: MethodPlainText}, nil
	}
	if ext != "pdf" && !isImage(ext) {
		return Result{}, common.Permanentf("unsupported file type %q", ext)
	}

	tmpDir, err := os.MkdirTemp("", "proof-text-*")
	if err != nil {
		return Result{}, fmt.Errorf("create temp dir: %w", err)
	}
	defer e.removeAll(tmpDir)

	path := filepath.Join(tmpDir, "upload."+ext)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return Result{}, fmt.Errorf("spool upload: %w", err)
	}
	return e.ExtractFile(ctx, path)
}

func (e *Extractor) extractPDF(ctx context.Context, path string) (Result, error) {
	text, pages, warns, err := e.pdfToText(ctx, path)
	if err == nil && nonSpaceCount(text) >= minPDFTextChars {
		return Result{Text: Normalize(text), Pages: pages, Method: MethodPDFText, Warnings: warns}, nil
	}
	if err != nil {
		warns = append(warns, "pdftotext: "+err.Error())
	}
	e.logger.Debug("pdf text layer too thin, falling back to ocr", "path", path, "chars", nonSpaceCount(text))

	ocrText, ocrPages, ocrWarns, err := e.pdfToOCR(ctx, path)
	warns = append(warns, ocrWarns...)
	if err != nil {
		return Result{Method: MethodPDFOCR, Warnings: warns}, fmt.Errorf("pdf ocr: %w", err)
	}
	return Result{Text: Normalize(ocrText), Pages: ocrPages, Method: MethodPDFOCR, Warnings: warns}, nil
}

func (e *Extractor) pdfToText(ctx context.Context, path string) (string, int, []string, error) {
	// pdftotext -layout -enc UTF-8 -eol unix <path> -
	out, errb, err := e.runner.Run(ctx, e.cfg.Pdftotext, "-layout", "-enc", "UTF-8", "-eol", "unix", path, "-")
	if err != nil {
		return "", 0, nonEmpty(string(errb)), err
	}
	text := string(out)
	// form feed separates pages
	return text, 1 + strings.Count(strings.TrimRight(text, "\f"), "\f"), nil, nil
}

func (e *Extractor) pdfToOCR(ctx context.Context, path string) (string, int, []string, error) {
	tmpDir, err := os.MkdirTemp("", "proof-pp-*")
	if err != nil {
		return "", 0, nil, err
	}
	defer e.removeAll(tmpDir)

	prefix := filepath.Join(tmpDir, "page")
	// pdftoppm -r 300 -png <in.pdf> <tmp/page>
	_, errb, err := e.runner.Run(ctx, e.cfg.Pdftoppm, "-r", fmt.Sprintf("%d", e.cfg.DPI), "-png", path, prefix)
	if err != nil {
		return "", 0, nonEmpty(string(errb)), err
	}

	matches, _ := filepath.Glob(prefix + "-*.png")
	sort.Strings(matches)
	if e.cfg.MaxPages > 0 && len(matches) > e.cfg.MaxPages {
		matches = matches[:e.cfg.MaxPages]
	}
	if len(matches) == 0 {
		return "", 0, []string{"pdftoppm produced no images"}, fmt.Errorf("no pages rendered")
	}

	var b strings.Builder
	var warns []string
	for _, img := range matches {
		txt, err := e.tesseract(ctx, img)
		if err != nil {
			warns = append(warns, err.Error())
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(txt)
	}
	return b.String(), len(matches), warns, nil
}

func (e *Extractor) extractImage(ctx context.Context, path string) (Result, error) {
	txt, err := e.tesseract(ctx, path)
	if err != nil {
		return Result{Method: MethodImageOCR}, err
	}
	return Result{Text: Normalize(txt), Pages: 1, Method: MethodImageOCR}, nil
}

func (e *Extractor) tesseract(ctx context.Context, path string) (string, error) {
	// tesseract <file> stdout -l <lang>
	args := []string{path, "stdout", "-l", e.cfg.TesseractLang}
	if e.cfg.TessdataDir != "" {
		args = append(args, "--tessdata-dir", e.cfg.TessdataDir)
	}
	out, errb, err := e.runner.Run(ctx, e.cfg.Tesseract, args...)
	if err != nil {
		return "", fmt.Errorf("tesseract: %w: %s", err, truncate(string(errb), 512))
	}
	return string(out), nil
}

func (e *Extractor) removeAll(dir string) {
	if err := os.RemoveAll(dir); err != nil {
		e.logger.Warn("failed to remove temp dir", "dir", dir, "error", err)
	}
}

func isText(ext string) bool {
	_, ok := constants.TextExtensions[ext]
	return ok
}

func isImage(ext string) bool {
	mt, ok := constants.MimeForExt(ext)
	return ok && mt != constants.MimePDF
}

func nonEmpty(s string) []string {
	if s = strings.TrimSpace(s); s == "" {
		return nil
	}
	return []string{s}
}

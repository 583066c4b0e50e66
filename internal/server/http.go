package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/joseph-ayodele/proof-extractor/constants"
	"github.com/joseph-ayodele/proof-extractor/internal/common"
	"github.com/joseph-ayodele/proof-extractor/internal/services/proofs"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// HTTPHandler serves the JSON/multipart API over the proof service.
type HTTPHandler struct {
	svc         *proofs.Service
	maxUploadMB int
	logger      *slog.Logger
}

// NewHTTPHandler builds the router.
func NewHTTPHandler(svc *proofs.Service, maxUploadMB int, logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	if maxUploadMB <= 0 {
		maxUploadMB = constants.MaxUploadMBDefault
	}
	h := &HTTPHandler{svc: svc, maxUploadMB: maxUploadMB, logger: logger}

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(h.requestLogger)
	r.Use(chimiddleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/v1", func(r chi.Router) {
		r.Post("/extract", h.Extract)
		r.Post("/extract/text", h.ExtractText)

		r.Get("/cache/stats", h.CacheStats)
		r.Delete("/cache", h.ClearCache)

		r.Get("/proofs", h.ListProofs)
		r.Get("/proofs/export", h.ExportProofs)
		r.Get("/proofs/{id}", h.GetProof)
	})
	return r
}

// requestLogger carries chi's request id into the service context and logs
// each request once it completes.
func (h *HTTPHandler) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		reqID := chimiddleware.GetReqID(r.Context())
		logger := h.logger.With("req_id", reqID)

		ctx := common.WithRequestID(r.Context(), reqID)
		ctx = common.WithLogger(ctx, logger)

		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r.WithContext(ctx))

		logger.Info("http.request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
	})
}

// Extract handles POST /v1/extract (multipart: file, proof_type).
func (h *HTTPHandler) Extract(w http.ResponseWriter, r *http.Request) {
	filename, mimeType, data, err := h.readUpload(w, r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	resp, err := h.svc.Extract(r.Context(), proofs.ExtractRequest{
		Filename:  filename,
		MimeType:  mimeType,
		Data:      data,
		ProofType: strings.TrimSpace(r.FormValue("proof_type")),
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

type textRequestDTO struct {
	Text      string `json:"text"`
	ProofType string `json:"proof_type"`
}

// ExtractText handles POST /v1/extract/text with either a JSON body
// {text, proof_type} or a multipart document upload.
func (h *HTTPHandler) ExtractText(w http.ResponseWriter, r *http.Request) {
	mt, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mt == "multipart/form-data" {
		filename, _, data, err := h.readUpload(w, r)
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		out, err := h.svc.ExtractDocumentText(r.Context(), proofs.DocumentTextRequest{
			Filename:  filename,
			Data:      data,
			ProofType: strings.TrimSpace(r.FormValue("proof_type")),
		})
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, out)
		return
	}

	var req textRequestDTO
	body := http.MaxBytesReader(w, r.Body, h.maxBodyBytes())
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		h.writeError(w, r, common.Permanent("invalid JSON body", common.ErrInvalidInput))
		return
	}
	out, err := h.svc.ExtractText(r.Context(), proofs.TextRequest{Text: req.Text, ProofType: strings.TrimSpace(req.ProofType)})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *HTTPHandler) CacheStats(w http.ResponseWriter, r *http.Request) {
	st, err := h.svc.CacheStats(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (h *HTTPHandler) ClearCache(w http.ResponseWriter, r *http.Request) {
	n, err := h.svc.ClearCache(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"cleared": n})
}

func (h *HTTPHandler) ListProofs(w http.ResponseWriter, r *http.Request) {
	req, err := listRequest(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	list, err := h.svc.ListProofs(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if list == nil {
		writeJSON(w, http.StatusOK, map[string]any{"proofs": []any{}})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"proofs": list})
}

func (h *HTTPHandler) GetProof(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.GetProof(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// ExportProofs handles GET /v1/proofs/export and streams an XLSX workbook.
func (h *HTTPHandler) ExportProofs(w http.ResponseWriter, r *http.Request) {
	req, err := listRequest(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	data, rows, err := h.svc.ExportProofs(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="proofs.xlsx"`)
	w.Header().Set("X-Export-Rows", strconv.Itoa(rows))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func listRequest(r *http.Request) (proofs.ListProofsRequest, error) {
	q := r.URL.Query()
	req := proofs.ListProofsRequest{
		ProofType: strings.TrimSpace(q.Get("proof_type")),
		Status:    strings.ToUpper(strings.TrimSpace(q.Get("status"))),
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return req, common.Permanent("limit must be a non-negative integer", common.ErrInvalidInput)
		}
		req.Limit = n
	}
	return req, nil
}

// readUpload reads the multipart "file" part. The body is capped slightly
// above the upload limit so the service can report the size violation.
func (h *HTTPHandler) readUpload(w http.ResponseWriter, r *http.Request) (string, string, []byte, error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodyBytes())
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return "", "", nil, common.Permanentf("upload exceeds maximum limit of %dMB", h.maxUploadMB)
		}
		return "", "", nil, common.Permanent("invalid multipart form", common.ErrInvalidInput)
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		return "", "", nil, common.Permanent("file is required", common.ErrInvalidInput)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return "", "", nil, fmt.Errorf("read upload: %w", err)
	}
	return header.Filename, header.Header.Get("Content-Type"), data, nil
}

func (h *HTTPHandler) maxBodyBytes() int64 {
	return int64(h.maxUploadMB+1) * 1024 * 1024
}

func (h *HTTPHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := common.HTTPStatus(err)
	msg := err.Error()
	logger := common.LoggerFromContext(r.Context(), h.logger)
	if code == http.StatusInternalServerError {
		logger.Error("http.request.failed", "path", r.URL.Path, "error", err)
		msg = "internal error"
	} else {
		logger.Warn("http.request.rejected", "path", r.URL.Path, "status", code, "error", err)
	}
	writeJSON(w, code, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"syscall"
	"time"

	"github.com/joseph-ayodele/proof-extractor/internal/common"
)

// HTTPResponse is the raw answer of an upstream JSON endpoint.
type HTTPResponse struct {
	Status int
	Body   []byte
}

// PostJSON sends body as JSON to a full URL with optional headers. A non-nil
// error means no HTTP response was received; non-2xx statuses are returned as
// a response, not an error, so callers can classify them. Header values are
// never logged.
func PostJSON(ctx context.Context, client *http.Client, url string, body any, headers map[string]string, logger *slog.Logger) (HTTPResponse, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if client == nil {
		client = &http.Client{Timeout: 45 * time.Second}
	}
	start := time.Now()
	reqID := common.RequestIDFromContext(ctx)

	bs, err := json.Marshal(body)
	if err != nil {
		logger.Error("llm.http.encode_error", "req_id", reqID, "error", err)
		return HTTPResponse{}, fmt.Errorf("encode json: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(bs))
	if err != nil {
		logger.Error("llm.http.build_request_error", "req_id", reqID, "error", err)
		return HTTPResponse{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	logger.Info("llm.http.request", "req_id", reqID, "url", url, "content_length", len(bs))

	resp, err := client.Do(req)
	if err != nil {
		logger.Error("llm.http.send_error", "req_id", reqID, "error", err, "elapsed_ms", time.Since(start).Milliseconds())
		return HTTPResponse{}, err
	}
	defer func(Body io.ReadCloser) {
		if err := Body.Close(); err != nil {
			logger.Warn("llm.http.response_body_close_error", "req_id", reqID, "error", err)
		}
	}(resp.Body)

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		logger.Error("llm.http.read_error", "req_id", reqID, "status", resp.StatusCode, "error", err)
		return HTTPResponse{}, fmt.Errorf("read body: %w", err)
	}

	logger.Info("llm.http.response",
		"req_id", reqID,
		"status", resp.StatusCode,
		"bytes", len(raw),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return HTTPResponse{Status: resp.StatusCode, Body: raw}, nil
}

// ClassifyStatus maps an HTTP status to an outcome kind: 2xx is ok, 429 and
// 5xx are transient, everything else (400 and 401 included) is permanent.
func ClassifyStatus(status int) OutcomeKind {
	switch {
	case status >= 200 && status < 300:
		return OutcomeOK
	case status == http.StatusTooManyRequests:
		return OutcomeTransient
	case status >= 500 && status < 600:
		return OutcomeTransient
	default:
		return OutcomePermanent
	}
}

// ClassifyTransportError maps a failure that produced no HTTP response.
// Timeouts, refused or reset connections and truncated reads are transient;
// anything else (bad URL, unsupported scheme, encode failure) is permanent.
func ClassifyTransportError(err error) OutcomeKind {
	if err == nil {
		return OutcomeOK
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return OutcomeTransient
	}
	if errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.ECONNRESET) {
		return OutcomeTransient
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return OutcomeTransient
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return OutcomeTransient
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return OutcomeTransient
	}
	return OutcomePermanent
}

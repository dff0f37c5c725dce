package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ringsight/backend/internal/domain"
	"github.com/ringsight/backend/internal/engine"
	"github.com/ringsight/backend/internal/ledger"
)

// ResultSink receives finished analysis results for persistence. Mirror
// failures never affect the API response; the analysis is already complete.
type ResultSink interface {
	SaveAnalysis(ctx context.Context, analysisID string, result domain.AnalysisResult) error
}

// APIHandlers exposes HTTP handlers for the REST API.
type APIHandlers struct {
	logger         *slog.Logger
	engine         *engine.Engine
	sink           ResultSink
	maxUploadBytes int64
}

// NewAPIHandlers constructs an APIHandlers instance. The sink is optional.
func NewAPIHandlers(logger *slog.Logger, eng *engine.Engine, sink ResultSink, maxUploadBytes int64) *APIHandlers {
	if maxUploadBytes <= 0 {
		maxUploadBytes = 50 << 20
	}
	return &APIHandlers{
		logger:         logger,
		engine:         eng,
		sink:           sink,
		maxUploadBytes: maxUploadBytes,
	}
}

// handleAnalyze accepts a CSV ledger (multipart "file" field or raw body)
// and responds with the full analysis result.
func (h *APIHandlers) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)

	body, err := h.ledgerReader(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	defer body.Close()

	parsed, err := ledger.Parse(body, ledger.Options{})
	switch {
	case errors.Is(err, ledger.ErrEmptyLedger):
		// A ledger with no rows is a valid "no fraud found" input.
		parsed = ledger.ParseResult{}
	case err != nil:
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result := h.engine.Analyze(parsed.Transactions)
	if skipped := len(parsed.SkippedRows); skipped > 0 {
		result.Notes = append(result.Notes, fmt.Sprintf("%d malformed rows skipped during parsing", skipped))
		h.logger.Warn("ledger rows skipped", "count", skipped, "first", parsed.SkippedRows[0].Error())
	}

	if h.sink != nil {
		h.mirrorResult(result)
	}

	if r.URL.Query().Get("download") != "" {
		w.Header().Set("Content-Disposition", `attachment; filename="ringsight_report.json"`)
	}
	respondJSON(w, http.StatusOK, result)
}

// ledgerReader extracts the CSV stream from a multipart upload or, failing
// that, treats the request body as the ledger itself.
func (h *APIHandlers) ledgerReader(r *http.Request) (io.ReadCloser, error) {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil || !strings.HasPrefix(mediaType, "multipart/") {
		return r.Body, nil
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, errors.New("multipart upload requires a \"file\" field")
	}
	if !strings.HasSuffix(strings.ToLower(header.Filename), ".csv") {
		file.Close()
		return nil, errors.New("only CSV files are accepted")
	}
	return file, nil
}

// mirrorResult pushes the result to the graph sink in the background with
// its own deadline, detached from the request lifecycle.
func (h *APIHandlers) mirrorResult(result domain.AnalysisResult) {
	analysisID := uuid.NewString()
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := h.sink.SaveAnalysis(ctx, analysisID, result); err != nil {
			h.logger.Error("failed to mirror analysis", "error", err, "analysisId", analysisID)
			return
		}
		h.logger.Info("analysis mirrored", "analysisId", analysisID,
			"rings", result.Summary.FraudRingsDetected)
	}()
}

func writeError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{
		"error": msg,
	})
}

func methodNotAllowed(w http.ResponseWriter, allowed ...string) {
	w.Header().Set("Allow", strings.Join(allowed, ", "))
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}

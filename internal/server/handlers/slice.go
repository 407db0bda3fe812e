package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/zvakanaka/orcaslicer-web/pkg/scheduler"
)

// stdoutHeaderLimit bounds the engine output carried in the response header.
const stdoutHeaderLimit = 500

// Submitter is the scheduler contract the slice endpoint needs.
type Submitter interface {
	Submit(ctx context.Context, req scheduler.Request) (*scheduler.Result, error)
	Status() scheduler.Status
}

// SliceHandler serves slice submission and status.
type SliceHandler struct {
	sched  Submitter
	logger *zap.Logger
}

// NewSliceHandler returns a handler over the given scheduler.
func NewSliceHandler(sched Submitter, logger *zap.Logger) *SliceHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SliceHandler{sched: sched, logger: logger}
}

// Status handles GET /api/slice/status with a non-blocking state read.
func (h *SliceHandler) Status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.sched.Status())
}

// Slice handles POST /api/slice: multipart field "model" plus form fields
// naming the three profiles. On success the response body is the G-code
// artifact with timing and engine output carried in headers.
func (h *SliceHandler) Slice(w http.ResponseWriter, r *http.Request) {
	file, header, err := r.FormFile("model")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			payloadTooLarge(w, maxErr.Limit)
			return
		}
		badRequest(w, `No model file provided. Use multipart field "model".`)
		return
	}
	defer func() { _ = file.Close() }()

	if header.Filename == "" {
		badRequest(w, "Empty model filename")
		return
	}
	lower := strings.ToLower(header.Filename)
	if !strings.HasSuffix(lower, ".stl") && !strings.HasSuffix(lower, ".3mf") {
		badRequest(w, "Model must be an STL or 3MF file")
		return
	}

	printer := strings.TrimSpace(r.FormValue("printer"))
	process := strings.TrimSpace(r.FormValue("process"))
	filament := strings.TrimSpace(r.FormValue("filament"))
	if printer == "" || process == "" || filament == "" {
		badRequest(w, "All three profile names required: printer, process, filament")
		return
	}

	model, err := io.ReadAll(file)
	if err != nil {
		badRequest(w, "Failed to read model upload")
		return
	}

	req := scheduler.Request{
		ModelName: header.Filename,
		Model:     model,
		Printer:   printer,
		Process:   process,
		Filament:  filament,
		BedType:   strings.TrimSpace(r.FormValue("bed_type")),
		Orient:    parseFlag(r.FormValue("orient")),
	}

	res, err := h.sched.Submit(r.Context(), req)
	if err != nil {
		respondWithError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", res.GCodeName))
	w.Header().Set("X-Slice-Time-Seconds", fmt.Sprintf("%.2f", res.Elapsed.Seconds()))
	w.Header().Set("X-Slicer-Stdout", headerExcerpt(res.Stdout))
	_, _ = w.Write(res.GCode)
}

func parseFlag(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "on", "yes":
		return true
	default:
		return false
	}
}

// headerExcerpt makes engine output safe for an HTTP header value.
func headerExcerpt(s string) string {
	if len(s) > stdoutHeaderLimit {
		s = s[:stdoutHeaderLimit]
	}
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.ReplaceAll(s, "\r", " ")
}

// Package errors maps core errors onto the service's JSON error envelope
// and HTTP status codes.
package errors

import (
	"encoding/json"
	stderrors "errors"
	"net/http"

	"github.com/zvakanaka/orcaslicer-web/pkg/profile"
	"github.com/zvakanaka/orcaslicer-web/pkg/profilestore"
	"github.com/zvakanaka/orcaslicer-web/pkg/scheduler"
	"github.com/zvakanaka/orcaslicer-web/pkg/slicer"
)

// excerptLimit bounds how much engine output is embedded in an error
// response. Full output is available in the server logs.
const excerptLimit = 2000

// ErrorDetail is the body of the error envelope.
type ErrorDetail struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// HTTPErrorResponse is the JSON envelope returned for every error status.
type HTTPErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// Respond writes an error envelope with the given status.
func Respond(w http.ResponseWriter, status int, code, message string, details map[string]any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(HTTPErrorResponse{Error: ErrorDetail{
		Code:    code,
		Message: message,
		Details: details,
	}})
}

// RespondWithError maps a core error to its HTTP representation.
//
// Busy maps to 409, a missing profile to 404, resolution and validation
// failures to 400, engine rejection to 502, timeout to 504, and an
// unlaunchable engine to 500.
func RespondWithError(w http.ResponseWriter, r *http.Request, err error) {
	var sliceErr *scheduler.SliceError

	switch {
	case scheduler.IsBusy(err):
		Respond(w, http.StatusConflict, "SLICER_BUSY", "Slicer is busy. Try again later.", map[string]any{"busy": true})

	case profilestore.IsNotFound(err):
		Respond(w, http.StatusNotFound, "NOT_FOUND", err.Error(), nil)

	case stderrors.Is(err, profilestore.ErrAlreadyExists):
		Respond(w, http.StatusConflict, "ALREADY_EXISTS", err.Error(), nil)

	case stderrors.Is(err, profilestore.ErrInvalidName),
		stderrors.Is(err, profile.ErrInvalidCategory),
		stderrors.Is(err, profile.ErrInvalidDocument),
		stderrors.Is(err, scheduler.ErrInvalidModel),
		profile.IsUnknownBaseProfile(err),
		profile.IsInheritanceCycle(err):
		Respond(w, http.StatusBadRequest, "INVALID_REQUEST", err.Error(), nil)

	case slicer.IsTimeout(err):
		Respond(w, http.StatusGatewayTimeout, "SLICE_TIMEOUT", err.Error(), nil)

	case stderrors.As(err, &sliceErr):
		Respond(w, http.StatusBadGateway, "SLICE_FAILED", sliceErr.Error(), map[string]any{
			"exit_code": sliceErr.ExitCode,
			"stdout":    excerpt(sliceErr.Stdout),
			"stderr":    excerpt(sliceErr.Stderr),
		})

	case scheduler.IsSliceFailed(err):
		Respond(w, http.StatusBadGateway, "SLICE_FAILED", err.Error(), nil)

	case slicer.IsLaunch(err):
		Respond(w, http.StatusInternalServerError, "SLICER_UNAVAILABLE", err.Error(), nil)

	default:
		Respond(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
	}
}

func excerpt(s string) string {
	if len(s) > excerptLimit {
		return s[:excerptLimit]
	}
	return s
}

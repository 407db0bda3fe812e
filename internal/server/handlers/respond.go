// Package handlers implements the HTTP API: profile CRUD, slice
// submission, status, and health.
package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	apperrors "github.com/zvakanaka/orcaslicer-web/internal/errors"
)

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func respondWithError(w http.ResponseWriter, r *http.Request, err error) {
	apperrors.RespondWithError(w, r, err)
}

func badRequest(w http.ResponseWriter, message string) {
	apperrors.Respond(w, http.StatusBadRequest, "INVALID_REQUEST", message, nil)
}

func payloadTooLarge(w http.ResponseWriter, limit int64) {
	apperrors.Respond(w, http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE",
		fmt.Sprintf("Upload exceeds the %d byte limit", limit), nil)
}

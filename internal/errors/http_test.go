package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zvakanaka/orcaslicer-web/pkg/profile"
	"github.com/zvakanaka/orcaslicer-web/pkg/profilestore"
	"github.com/zvakanaka/orcaslicer-web/pkg/scheduler"
	"github.com/zvakanaka/orcaslicer-web/pkg/slicer"
)

func respond(t *testing.T, err error) (int, HTTPErrorResponse) {
	t.Helper()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	RespondWithError(rec, req, err)

	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	var body HTTPErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return rec.Code, body
}

func TestRespondWithError_Mapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"busy", scheduler.ErrBusy, http.StatusConflict, "SLICER_BUSY"},
		{"not found", fmt.Errorf("process/x: %w", profilestore.ErrNotFound), http.StatusNotFound, "NOT_FOUND"},
		{"already exists", profilestore.ErrAlreadyExists, http.StatusConflict, "ALREADY_EXISTS"},
		{"invalid name", profilestore.ErrInvalidName, http.StatusBadRequest, "INVALID_REQUEST"},
		{"invalid category", profile.ErrInvalidCategory, http.StatusBadRequest, "INVALID_REQUEST"},
		{"invalid document", profile.ErrInvalidDocument, http.StatusBadRequest, "INVALID_REQUEST"},
		{"invalid model", scheduler.ErrInvalidModel, http.StatusBadRequest, "INVALID_REQUEST"},
		{"unknown base", &profile.ResolutionError{Category: profile.CategoryProcess, Base: "x", Err: profile.ErrUnknownBaseProfile}, http.StatusBadRequest, "INVALID_REQUEST"},
		{"cycle", &profile.ResolutionError{Category: profile.CategoryProcess, Base: "x", Err: profile.ErrInheritanceCycle}, http.StatusBadRequest, "INVALID_REQUEST"},
		{"timeout", slicer.ErrTimeout, http.StatusGatewayTimeout, "SLICE_TIMEOUT"},
		{"slice failed", &scheduler.SliceError{ExitCode: 1}, http.StatusBadGateway, "SLICE_FAILED"},
		{"launch", slicer.ErrLaunch, http.StatusInternalServerError, "SLICER_UNAVAILABLE"},
		{"unknown", stderrors.New("boom"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := respond(t, tt.err)
			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, tt.wantCode, body.Error.Code)
			assert.NotEmpty(t, body.Error.Message)
		})
	}
}

func TestRespondWithError_SliceErrorDetails(t *testing.T) {
	err := &scheduler.SliceError{
		ExitCode: 2,
		Stdout:   "progress",
		Stderr:   strings.Repeat("x", excerptLimit+500),
	}

	status, body := respond(t, err)
	assert.Equal(t, http.StatusBadGateway, status)
	assert.Equal(t, float64(2), body.Error.Details["exit_code"])
	assert.Equal(t, "progress", body.Error.Details["stdout"])
	assert.Len(t, body.Error.Details["stderr"], excerptLimit)
}

func TestRespondWithError_InternalHidesMessage(t *testing.T) {
	_, body := respond(t, stderrors.New("secret db password leaked"))
	assert.Equal(t, "Internal server error", body.Error.Message)
}

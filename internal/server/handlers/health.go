package handlers

import (
	"net/http"
	"os"
)

// BaseIndexInfo reports how many bundled profiles were indexed at startup.
type BaseIndexInfo interface {
	Count() int
}

// HealthHandler reports service health, degraded when the engine binary is
// missing.
type HealthHandler struct {
	slicerBinary string
	index        BaseIndexInfo
}

// NewHealthHandler returns a health handler for the given engine binary.
func NewHealthHandler(slicerBinary string, index BaseIndexInfo) *HealthHandler {
	return &HealthHandler{slicerBinary: slicerBinary, index: index}
}

// HealthResponse is the health endpoint body.
type HealthResponse struct {
	Status       string `json:"status"`
	SlicerFound  bool   `json:"slicer_found"`
	BaseProfiles int    `json:"base_profiles"`
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	info, err := os.Stat(h.slicerBinary)
	found := err == nil && !info.IsDir()

	status := "ok"
	if !found {
		status = "degraded"
	}

	writeJSON(w, http.StatusOK, HealthResponse{
		Status:       status,
		SlicerFound:  found,
		BaseProfiles: h.index.Count(),
	})
}

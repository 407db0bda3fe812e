package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/zvakanaka/orcaslicer-web/pkg/profile"
	"github.com/zvakanaka/orcaslicer-web/pkg/profilestore"
)

// ProfilesHandler serves the profile CRUD API.
type ProfilesHandler struct {
	store    *profilestore.Store
	ingestor *profile.Ingestor
	logger   *zap.Logger
}

// NewProfilesHandler returns a handler over the given store and ingestor.
func NewProfilesHandler(store *profilestore.Store, ingestor *profile.Ingestor, logger *zap.Logger) *ProfilesHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProfilesHandler{store: store, ingestor: ingestor, logger: logger}
}

// ListResponse is the body of the list endpoint.
type ListResponse struct {
	Category profile.Category    `json:"category"`
	Profiles []profilestore.Info `json:"profiles"`
}

// List handles GET /api/profiles/{category}.
func (h *ProfilesHandler) List(w http.ResponseWriter, r *http.Request) {
	category, err := categoryParam(r)
	if err != nil {
		respondWithError(w, r, err)
		return
	}
	profiles, err := h.store.List(category)
	if err != nil {
		respondWithError(w, r, err)
		return
	}
	if profiles == nil {
		profiles = []profilestore.Info{}
	}
	writeJSON(w, http.StatusOK, ListResponse{Category: category, Profiles: profiles})
}

// Upload handles POST /api/profiles/{category}. The document arrives as
// multipart field "file"; an optional "name" field overrides the name
// derived from the file name. Duplicates are rejected; PUT replaces.
func (h *ProfilesHandler) Upload(w http.ResponseWriter, r *http.Request) {
	category, err := categoryParam(r)
	if err != nil {
		respondWithError(w, r, err)
		return
	}

	data, filename, ok := h.readUpload(w, r, "file")
	if !ok {
		return
	}

	name := strings.TrimSpace(r.FormValue("name"))
	if name == "" {
		name = strings.TrimSuffix(path.Base(filename), path.Ext(filename))
	}
	name = profilestore.SanitizeName(name)
	if name == "" {
		badRequest(w, "Could not derive a valid profile name")
		return
	}

	if h.store.Exists(category, name) {
		respondWithError(w, r, fmt.Errorf("%s/%s: %w (use PUT to replace)", category, name, profilestore.ErrAlreadyExists))
		return
	}

	if _, err := h.ingestor.Ingest(category, name, data); err != nil {
		respondWithError(w, r, err)
		return
	}
	h.logger.Info("Profile uploaded",
		zap.String("category", string(category)),
		zap.String("name", name),
		zap.Int("bytes", len(data)))

	info, err := h.store.Stat(category, name)
	if err != nil {
		respondWithError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, info)
}

// Get handles GET /api/profiles/{category}/{name}, returning the raw
// stored document.
func (h *ProfilesHandler) Get(w http.ResponseWriter, r *http.Request) {
	category, err := categoryParam(r)
	if err != nil {
		respondWithError(w, r, err)
		return
	}
	name := chi.URLParam(r, "name")

	data, err := h.store.Get(category, name)
	if err != nil {
		respondWithError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name+".json"))
	_, _ = w.Write(data)
}

// Replace handles PUT /api/profiles/{category}/{name}, creating or
// overwriting the named profile.
func (h *ProfilesHandler) Replace(w http.ResponseWriter, r *http.Request) {
	category, err := categoryParam(r)
	if err != nil {
		respondWithError(w, r, err)
		return
	}
	name := chi.URLParam(r, "name")

	data, _, ok := h.readUpload(w, r, "file")
	if !ok {
		return
	}

	if _, err := h.ingestor.Ingest(category, name, data); err != nil {
		respondWithError(w, r, err)
		return
	}
	h.logger.Info("Profile replaced",
		zap.String("category", string(category)),
		zap.String("name", name))

	info, err := h.store.Stat(category, name)
	if err != nil {
		respondWithError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

type renameRequest struct {
	NewName string `json:"new_name"`
}

// Rename handles PATCH /api/profiles/{category}/{name}.
func (h *ProfilesHandler) Rename(w http.ResponseWriter, r *http.Request) {
	category, err := categoryParam(r)
	if err != nil {
		respondWithError(w, r, err)
		return
	}
	name := chi.URLParam(r, "name")

	var body renameRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.NewName == "" {
		badRequest(w, "JSON body with 'new_name' required")
		return
	}

	newName := profilestore.SanitizeName(body.NewName)
	if newName == "" {
		badRequest(w, "Invalid new name")
		return
	}

	info, err := h.store.Rename(category, name, newName)
	if err != nil {
		respondWithError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

// Delete handles DELETE /api/profiles/{category}/{name}.
func (h *ProfilesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	category, err := categoryParam(r)
	if err != nil {
		respondWithError(w, r, err)
		return
	}
	name := chi.URLParam(r, "name")

	if err := h.store.Delete(category, name); err != nil {
		respondWithError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"deleted":  name,
		"category": category,
	})
}

// readUpload extracts a multipart file field, reporting errors itself.
func (h *ProfilesHandler) readUpload(w http.ResponseWriter, r *http.Request, field string) ([]byte, string, bool) {
	file, header, err := r.FormFile(field)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			payloadTooLarge(w, maxErr.Limit)
			return nil, "", false
		}
		badRequest(w, fmt.Sprintf("No file provided. Use multipart field %q.", field))
		return nil, "", false
	}
	defer func() { _ = file.Close() }()

	if header.Filename == "" {
		badRequest(w, "Empty filename")
		return nil, "", false
	}

	data, err := io.ReadAll(file)
	if err != nil {
		badRequest(w, "Failed to read upload")
		return nil, "", false
	}
	return data, header.Filename, true
}

func categoryParam(r *http.Request) (profile.Category, error) {
	return profile.ParseCategory(chi.URLParam(r, "category"))
}

package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-chi/chi/v5"

	"github.com/placeshare/placeshare/internal/asset"
	"github.com/placeshare/placeshare/internal/auth"
	"github.com/placeshare/placeshare/internal/handler/dto"
	"github.com/placeshare/placeshare/internal/service"
)

const (
	// multipartMemory is how much of a multipart body is held in memory
	// before spilling to temp files.
	multipartMemory = 1 << 20
	// multipartOverhead covers the text fields and part headers on top of
	// the image itself.
	multipartOverhead = 64 << 10
)

// imageExtensions maps accepted sniffed content types to stored extensions.
var imageExtensions = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
}

// Stager stores uploads before the place write. *asset.Manager
// implements it.
type Stager interface {
	Stage(ctx context.Context, r io.Reader, ext string) (asset.StagedRef, error)
}

// PlaceHandler handles HTTP requests for place operations.
type PlaceHandler struct {
	svc       *service.PlaceService
	assets    Stager
	logger    *slog.Logger
	maxUpload int64
}

// NewPlaceHandler creates a new PlaceHandler. maxUpload bounds the image
// size in bytes.
func NewPlaceHandler(svc *service.PlaceService, assets Stager, maxUpload int64, logger *slog.Logger) *PlaceHandler {
	return &PlaceHandler{
		svc:       svc,
		assets:    assets,
		logger:    logger,
		maxUpload: maxUpload,
	}
}

// Get handles GET /api/places/{pid}.
func (h *PlaceHandler) Get(w http.ResponseWriter, r *http.Request) {
	place, err := h.svc.GetPlace(r.Context(), chi.URLParam(r, "pid"))
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.PlaceEnvelope{Place: dto.ToPlaceResponse(place)})
}

// ListByUser handles GET /api/places/user/{uid}.
func (h *PlaceHandler) ListByUser(w http.ResponseWriter, r *http.Request) {
	places, err := h.svc.ListPlacesByUser(r.Context(), chi.URLParam(r, "uid"))
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToPlaceListEnvelope(places))
}

// Create handles POST /api/places as multipart/form-data with the fields
// title, description, address and image.
func (h *PlaceHandler) Create(w http.ResponseWriter, r *http.Request) {
	limit := h.maxUpload + multipartOverhead
	if r.ContentLength > limit {
		writeError(w, http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE", "Image is too large.")
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, limit)

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE", "Image is too large.")
			return
		}
		writeError(w, http.StatusBadRequest, "INVALID_FORM", "Invalid multipart form.")
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	title := r.FormValue("title")
	description := r.FormValue("description")
	address := r.FormValue("address")
	if err := dto.ValidatePlaceFields(title, description, address); err != nil {
		writeError(w, http.StatusUnprocessableEntity, string(service.KindInvalidInput), "Invalid inputs passed, please check your data.")
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, string(service.KindInvalidInput), "An image is required.")
		return
	}
	defer file.Close()

	if header.Size > h.maxUpload {
		writeError(w, http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE", "Image is too large.")
		return
	}

	ext, err := sniffImage(file)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, string(service.KindInvalidInput), "Invalid mime type!")
		return
	}

	ref, err := h.assets.Stage(r.Context(), file, ext)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "stage_failed", "error", err)
		writeError(w, http.StatusInternalServerError, string(service.KindCreateFailed), "Creating place failed, please try again.")
		return
	}

	place, err := h.svc.CreatePlace(r.Context(), service.CreatePlaceInput{
		PrincipalID: auth.PrincipalFromContext(r.Context()),
		Title:       title,
		Description: description,
		Address:     address,
		Image:       ref,
	})
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.PlaceEnvelope{Place: dto.ToPlaceResponse(place)})
}

// Update handles PATCH /api/places/{pid}.
func (h *PlaceHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdatePlaceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}
	if err := dto.ValidatePlaceUpdate(req.Title, req.Description); err != nil {
		writeError(w, http.StatusUnprocessableEntity, string(service.KindInvalidInput), "Invalid inputs passed, please check your data.")
		return
	}

	place, err := h.svc.UpdatePlace(r.Context(), service.UpdatePlaceInput{
		PrincipalID: auth.PrincipalFromContext(r.Context()),
		PlaceID:     chi.URLParam(r, "pid"),
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.PlaceEnvelope{Place: dto.ToPlaceResponse(place)})
}

// Delete handles DELETE /api/places/{pid}.
func (h *PlaceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	err := h.svc.DeletePlace(r.Context(), service.DeletePlaceInput{
		PrincipalID: auth.PrincipalFromContext(r.Context()),
		PlaceID:     chi.URLParam(r, "pid"),
	})
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.MessageResponse{Message: "Deleted place."})
}

// sniffImage detects the content type of an upload and rewinds it.
func sniffImage(file io.ReadSeeker) (string, error) {
	mime, err := mimetype.DetectReader(file)
	if err != nil {
		return "", err
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return "", err
	}

	for m := mime; m != nil; m = m.Parent() {
		if ext, ok := imageExtensions[m.String()]; ok {
			return ext, nil
		}
	}
	return "", errors.New("unsupported image type " + mime.String())
}

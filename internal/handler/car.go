package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/carhive/carhive/internal/auth"
	"github.com/carhive/carhive/internal/handler/dto"
	"github.com/carhive/carhive/internal/model"
	"github.com/carhive/carhive/internal/service"
)

// maxMultipartMemory is how much of a multipart body is held in memory
// before spilling to temp files.
const maxMultipartMemory = 32 << 20 // 32MB

// CarHandler handles HTTP requests for car listing operations.
type CarHandler struct {
	svc    *service.CarService
	logger *slog.Logger
}

// NewCarHandler creates a new CarHandler.
func NewCarHandler(svc *service.CarService, logger *slog.Logger) *CarHandler {
	return &CarHandler{
		svc:    svc,
		logger: logger,
	}
}

// carForm is the parsed multipart body shared by Create and Update.
type carForm struct {
	title       string
	description string
	tags        model.Tags
	images      []service.ImageUpload
	closers     []func() error
}

// close releases the opened multipart file handles.
func (f *carForm) close() {
	for _, c := range f.closers {
		_ = c()
	}
}

// Create handles POST /api/cars.
func (h *CarHandler) Create(w http.ResponseWriter, r *http.Request) {
	ownerID := auth.UserIDFromContext(r.Context())

	form, err := h.parseCarForm(w, r)
	if err != nil {
		return // error already written
	}
	defer form.close()

	car, err := h.svc.CreateCar(r.Context(), service.CreateCarInput{
		OwnerID:     ownerID,
		Title:       form.title,
		Description: form.description,
		Tags:        form.tags,
		Images:      form.images,
	})
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("car_created",
		"car_id", car.ID,
		"owner_id", car.OwnerID,
		"image_count", len(car.Images),
	)

	writeJSON(w, http.StatusCreated, dto.ToCarResponse(car))
}

// List handles GET /api/cars.
func (h *CarHandler) List(w http.ResponseWriter, r *http.Request) {
	ownerID := auth.UserIDFromContext(r.Context())

	cars, err := h.svc.ListCars(r.Context(), service.ListCarsInput{
		OwnerID: ownerID,
		Search:  r.URL.Query().Get("search"),
	})
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToCarListResponse(cars))
}

// Get handles GET /api/cars/{id}.
func (h *CarHandler) Get(w http.ResponseWriter, r *http.Request) {
	ownerID := auth.UserIDFromContext(r.Context())

	id := chi.URLParam(r, "id")
	if id == "" {
		h.writeError(w, http.StatusBadRequest, "MISSING_ID", "Car ID is required")
		return
	}

	car, err := h.svc.GetCar(r.Context(), ownerID, id)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToCarResponse(car))
}

// Update handles PUT /api/cars/{id}.
func (h *CarHandler) Update(w http.ResponseWriter, r *http.Request) {
	ownerID := auth.UserIDFromContext(r.Context())

	id := chi.URLParam(r, "id")
	if id == "" {
		h.writeError(w, http.StatusBadRequest, "MISSING_ID", "Car ID is required")
		return
	}

	form, err := h.parseCarForm(w, r)
	if err != nil {
		return // error already written
	}
	defer form.close()

	car, err := h.svc.UpdateCar(r.Context(), service.UpdateCarInput{
		OwnerID:     ownerID,
		ID:          id,
		Title:       form.title,
		Description: form.description,
		Tags:        form.tags,
		Images:      form.images,
	})
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("car_updated",
		"car_id", car.ID,
		"owner_id", car.OwnerID,
		"images_replaced", len(form.images) > 0,
	)

	writeJSON(w, http.StatusOK, dto.ToCarResponse(car))
}

// Delete handles DELETE /api/cars/{id}.
func (h *CarHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ownerID := auth.UserIDFromContext(r.Context())

	id := chi.URLParam(r, "id")
	if id == "" {
		h.writeError(w, http.StatusBadRequest, "MISSING_ID", "Car ID is required")
		return
	}

	if err := h.svc.DeleteCar(r.Context(), ownerID, id); err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("car_deleted", "car_id", id, "owner_id", ownerID)

	writeJSON(w, http.StatusOK, dto.MessageResponse{Message: "Car deleted successfully"})
}

// parseCarForm parses the multipart body used by Create and Update.
// On failure the HTTP error has already been written and a non-nil
// error is returned.
func (h *CarHandler) parseCarForm(w http.ResponseWriter, r *http.Request) (*carForm, error) {
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		// Bodies sent without Content-Length get past the middleware's
		// up-front check and trip MaxBytesReader here instead.
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.writeError(w, http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE", "Request body too large")
			return nil, err
		}
		h.writeError(w, http.StatusBadRequest, "INVALID_MULTIPART", "Invalid multipart form body")
		return nil, err
	}

	tags, err := dto.ParseTags(r.FormValue("tags"))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "INVALID_TAGS", "Tags must be a JSON object")
		return nil, err
	}

	form := &carForm{
		title:       r.FormValue("title"),
		description: r.FormValue("description"),
		tags:        tags,
	}

	files := r.MultipartForm.File["images"]
	if len(files) > model.MaxCarImages {
		h.writeError(w, http.StatusBadRequest, "TOO_MANY_IMAGES", "A listing may carry at most 10 images")
		return nil, service.ErrTooManyImages
	}

	for _, fh := range files {
		f, err := fh.Open()
		if err != nil {
			form.close()
			h.writeError(w, http.StatusBadRequest, "INVALID_MULTIPART", "Invalid multipart form body")
			return nil, err
		}
		form.closers = append(form.closers, f.Close)
		form.images = append(form.images, service.ImageUpload{
			Filename: fh.Filename,
			Data:     f,
		})
	}

	return form, nil
}

// handleServiceError maps car service errors to HTTP responses.
func (h *CarHandler) handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrCarNotFound):
		h.writeError(w, http.StatusNotFound, "CAR_NOT_FOUND", "Car not found")
	case errors.Is(err, service.ErrTitleRequired):
		h.writeError(w, http.StatusBadRequest, "TITLE_REQUIRED", "Title is required")
	case errors.Is(err, service.ErrDescriptionRequired):
		h.writeError(w, http.StatusBadRequest, "DESCRIPTION_REQUIRED", "Description is required")
	case errors.Is(err, service.ErrTitleTooLong):
		h.writeError(w, http.StatusBadRequest, "TITLE_TOO_LONG", "Title exceeds maximum length")
	case errors.Is(err, service.ErrDescriptionTooLong):
		h.writeError(w, http.StatusBadRequest, "DESCRIPTION_TOO_LONG", "Description exceeds maximum length")
	case errors.Is(err, service.ErrTooManyImages):
		h.writeError(w, http.StatusBadRequest, "TOO_MANY_IMAGES", "A listing may carry at most 10 images")
	case errors.Is(err, service.ErrUploadFailed):
		h.logger.Error("upload_error", "error", err)
		h.writeError(w, http.StatusInternalServerError, "UPLOAD_FAILED", "Image upload failed")
	default:
		h.logger.Error("internal_error", "error", err)
		h.writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
	}
}

// writeError writes an error response.
func (h *CarHandler) writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, dto.ErrorResponse{
		Error: message,
		Code:  code,
	})
}

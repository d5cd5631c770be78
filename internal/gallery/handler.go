package gallery

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/gallery/service/internal/middleware"
	"github.com/gallery/service/internal/response"
	"github.com/gallery/service/internal/storage"
)

// Handler holds HTTP handlers for gallery endpoints.
type Handler struct {
	svc            *Service
	maxUploadBytes int64
}

// NewHandler creates a new gallery Handler.
func NewHandler(svc *Service, maxUploadBytes int64) *Handler {
	return &Handler{svc: svc, maxUploadBytes: maxUploadBytes}
}

// Routes mounts the gallery endpoints. The caller installs authentication.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/upload-image", h.Upload)
	r.Post("/delete-file", h.Delete)
	r.Get("/images/{name}/url", h.URL)
}

type deleteRequest struct {
	File string `json:"file" example:"0f8fad5b-d9cb-469f-a165-70867728950e-beach.jpg"`
}

type deleteData struct {
	Success bool `json:"success" example:"true"`
}

type urlData struct {
	URL string `json:"url"`
}

// List godoc
//
//	@Summary		List images
//	@Description	Returns the caller's images, newest first, each with a time-limited download URL. An image whose URL cannot be signed is returned with an empty url.
//	@Tags			images
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	response.Envelope{data=[]Image}
//	@Failure		401	{object}	response.Envelope
//	@Failure		500	{object}	response.Envelope
//	@Router			/ [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFrom(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	images, err := h.svc.List(r.Context(), principal)
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.OK(w, images)
}

// Upload godoc
//
//	@Summary		Upload image
//	@Description	Stores an image, generates a title and description for it and records it for the caller.
//	@Tags			images
//	@Accept			multipart/form-data
//	@Produce		json
//	@Security		BearerAuth
//	@Param			image	formData	file	true	"Image file"
//	@Success		201		{object}	response.Envelope{data=Image}
//	@Failure		400		{object}	response.Envelope
//	@Failure		401		{object}	response.Envelope
//	@Failure		413		{object}	response.Envelope
//	@Failure		500		{object}	response.Envelope
//	@Router			/upload-image [post]
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFrom(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.RequestTooLarge(w, "image too large")
			return
		}
		response.BadRequest(w, "invalid multipart body")
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile("image")
	if err != nil {
		response.BadRequest(w, "image field required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		response.BadRequest(w, "could not read image")
		return
	}

	img, err := h.svc.Upload(r.Context(), principal, data, header.Header.Get("Content-Type"), header.Filename)
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.Created(w, img)
}

// Delete godoc
//
//	@Summary		Delete image
//	@Description	Removes the image, its metadata blob and its records. Deleting an image that is already gone succeeds, so failed calls can be retried.
//	@Tags			images
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		deleteRequest	true	"Blob name"
//	@Success		200		{object}	response.Envelope{data=deleteData}
//	@Failure		400		{object}	response.Envelope
//	@Failure		401		{object}	response.Envelope
//	@Failure		404		{object}	response.Envelope
//	@Failure		500		{object}	response.Envelope
//	@Router			/delete-file [post]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFrom(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	var req deleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	if req.File == "" {
		response.BadRequest(w, "file is required")
		return
	}

	if err := h.svc.Delete(r.Context(), principal, req.File); err != nil {
		switch {
		case errors.Is(err, ErrInvalidInput):
			response.BadRequest(w, err.Error())
			return
		case errors.Is(err, ErrNotFound):
			response.NotFound(w, "image not found")
			return
		}
		response.Fail(w, http.StatusInternalServerError, "delete incomplete, retry", deleteData{Success: false})
		return
	}
	response.OK(w, deleteData{Success: true})
}

// URL godoc
//
//	@Summary		Get download URL
//	@Description	Returns a time-limited download URL for one of the caller's images.
//	@Tags			images
//	@Produce		json
//	@Security		BearerAuth
//	@Param			name	path		string	true	"Blob name"
//	@Success		200		{object}	response.Envelope{data=urlData}
//	@Failure		401		{object}	response.Envelope
//	@Failure		404		{object}	response.Envelope
//	@Failure		500		{object}	response.Envelope
//	@Router			/images/{name}/url [get]
func (h *Handler) URL(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFrom(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	u, err := h.svc.URL(r.Context(), principal, chi.URLParam(r, "name"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.OK(w, urlData{URL: u})
}

// writeError maps service error kinds onto HTTP statuses.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		response.BadRequest(w, err.Error())
	case errors.Is(err, ErrNotFound), errors.Is(err, storage.ErrNotFound):
		response.NotFound(w, "image not found")
	case errors.Is(err, storage.ErrPermissionDenied):
		response.Forbidden(w, "storage permission denied")
	default:
		log.Ctx(r.Context()).Error().Err(err).Msg("request failed")
		response.InternalError(w)
	}
}

package api

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/tendant/simple-dri/pkg/dri"
)

// maxMemory is the part of a multipart body kept in memory before spilling to disk
const maxMemory = 32 << 20

// UploadsHandler receives files for later attachment to records
type UploadsHandler struct {
	service dri.Service
	logger  *slog.Logger
}

func NewUploadsHandler(service dri.Service, logger *slog.Logger) *UploadsHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &UploadsHandler{
		service: service,
		logger:  logger,
	}
}

// Routes returns the router for upload endpoints
func (h *UploadsHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.UploadFile)
	return r
}

// UploadResponse carries the location of a stored upload
type UploadResponse struct {
	FileLocation string `json:"fileLocation"`
}

// UploadFile spools the multipart "file" field to a temporary file and hands
// it to the service, which moves it into upload storage.
func (h *UploadsHandler) UploadFile(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxMemory); err != nil {
		h.logger.Error("Failed to parse multipart form", "error", err)
		writeError(w, r, http.StatusBadRequest, "Invalid multipart form")
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if errors.Is(err, http.ErrMissingFile) {
		writeServiceError(w, r, dri.ErrNoFile)
		return
	} else if err != nil {
		h.logger.Error("Failed to read form file", "error", err)
		writeError(w, r, http.StatusBadRequest, "Invalid file")
		return
	}
	defer file.Close()

	tmp, err := os.CreateTemp("", "dri-upload-*")
	if err != nil {
		h.logger.Error("Failed to create temporary file", "error", err)
		writeError(w, r, http.StatusInternalServerError, "Failed to store upload")
		return
	}
	size, err := io.Copy(tmp, file)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(tmp.Name())
		h.logger.Error("Failed to spool upload", "error", err)
		writeError(w, r, http.StatusInternalServerError, "Failed to store upload")
		return
	}

	location, err := h.service.UploadFile(r.Context(), dri.FileUpload{
		Path: tmp.Name(),
		Name: header.Filename,
		Size: size,
	})
	if err != nil {
		// the service only removes the temporary file on success
		os.Remove(tmp.Name())
		writeServiceError(w, r, err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, UploadResponse{FileLocation: location})
}

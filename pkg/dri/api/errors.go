package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/render"
	"github.com/tendant/simple-dri/pkg/dri"
	"github.com/tendant/simple-dri/pkg/dri/fedora"
)

// ErrorResponse is the JSON body of every failed request
type ErrorResponse struct {
	Error string `json:"error"`
}

// statusFor maps service errors to HTTP status codes.
func statusFor(err error) int {
	var pubErr *dri.PublicationError
	var statusErr *fedora.StatusError

	switch {
	case errors.Is(err, dri.ErrArchiveNotConfigured), errors.Is(err, dri.ErrBlobStoreNotConfigured):
		return http.StatusServiceUnavailable
	case errors.Is(err, dri.ErrRecordNotFound), errors.Is(err, dri.ErrNoRecordTypes):
		return http.StatusNotFound
	case errors.Is(err, dri.ErrNoFile),
		errors.Is(err, dri.ErrInvalidFileName),
		errors.Is(err, dri.ErrInvalidRecordType),
		errors.Is(err, dri.ErrInvalidPagination),
		errors.Is(err, dri.ErrInvalidQueryField),
		errors.Is(err, dri.ErrInvalidPropertyKey),
		errors.Is(err, dri.ErrInvalidNamespace):
		return http.StatusBadRequest
	case errors.Is(err, dri.ErrAlreadyPublished):
		return http.StatusConflict
	case errors.As(err, &pubErr), errors.As(err, &statusErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	render.Status(r, status)
	render.JSON(w, r, ErrorResponse{Error: msg})
}

func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	writeError(w, r, statusFor(err), err.Error())
}

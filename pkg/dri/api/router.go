package api

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/tendant/simple-dri/pkg/dri"
)

// Routes mounts the record and upload endpoints behind the request id,
// logging, recovery and metrics middleware. Mount the result under /api/v1.
func Routes(service dri.Service, logger *slog.Logger) chi.Router {
	if logger == nil {
		logger = slog.Default()
	}
	r := chi.NewRouter()
	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware(logger))
	r.Use(RecoveryMiddleware(logger))
	r.Use(MetricsMiddleware)
	r.Mount("/records", NewRecordsHandler(service, logger).Routes())
	r.Mount("/uploads", NewUploadsHandler(service, logger).Routes())
	return r
}

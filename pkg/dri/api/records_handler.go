package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/tendant/simple-dri/pkg/dri"
)

const defaultPageSize = 20

// RecordsHandler serves the record endpoints
type RecordsHandler struct {
	service dri.Service
	logger  *slog.Logger
}

func NewRecordsHandler(service dri.Service, logger *slog.Logger) *RecordsHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &RecordsHandler{
		service: service,
		logger:  logger,
	}
}

// Routes returns the router for record endpoints
func (h *RecordsHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/types", h.GetRecordTypes)
	r.Get("/recent", h.LastCreated)
	r.Get("/edited", h.LastEdited)
	r.Get("/search", h.QueryRecords)
	r.Get("/count", h.CountRecords)
	r.Post("/", h.CreateRecord)
	r.Route("/{id}", func(r chi.Router) {
		r.Get("/", h.GetRecord)
		r.Patch("/", h.UpdateRecord)
		r.Put("/", h.UpdateRecord)
		r.Delete("/", h.RemoveRecord)
		r.Get("/children", h.GetChildren)
		r.Get("/dc", h.ConvertToDC)
		r.Get("/mods", h.ConvertToMODS)
		r.Post("/approve", h.ApproveRecord)
	})
	return r
}

// IDResponse carries the id of a created or removed record
type IDResponse struct {
	ID string `json:"id"`
}

// CountResponse carries a record count
type CountResponse struct {
	Count int64 `json:"count"`
}

// ApproveResponse carries the archive id of a published record
type ApproveResponse struct {
	FedoraID string `json:"fedoraId"`
}

// GetRecord returns a single record
func (h *RecordsHandler) GetRecord(w http.ResponseWriter, r *http.Request) {
	record, err := h.service.GetRecord(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	render.JSON(w, r, record)
}

// GetChildren returns one page of a record's children
func (h *RecordsHandler) GetChildren(w http.ResponseWriter, r *http.Request) {
	page, err := intParam(r, "page", 0)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "Invalid page")
		return
	}
	pageSize, err := intParam(r, "pageSize", defaultPageSize)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "Invalid pageSize")
		return
	}

	result, err := h.service.GetChildren(r.Context(), chi.URLParam(r, "id"), page, pageSize)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	render.JSON(w, r, result)
}

// CreateRecord creates a record and returns its id
func (h *RecordsHandler) CreateRecord(w http.ResponseWriter, r *http.Request) {
	var req dri.CreateRecordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("Failed to decode request", "error", err)
		writeError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}

	id, err := h.service.CreateRecord(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, IDResponse{ID: id})
}

// UpdateRecord applies a partial update
func (h *RecordsHandler) UpdateRecord(w http.ResponseWriter, r *http.Request) {
	var req dri.UpdateRecordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("Failed to decode request", "error", err)
		writeError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.service.UpdateRecord(r.Context(), chi.URLParam(r, "id"), req); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RemoveRecord deletes a record and returns its id
func (h *RecordsHandler) RemoveRecord(w http.ResponseWriter, r *http.Request) {
	id, err := h.service.RemoveRecord(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	render.JSON(w, r, IDResponse{ID: id})
}

// CountRecords counts records, optionally by type and parent
func (h *RecordsHandler) CountRecords(w http.ResponseWriter, r *http.Request) {
	filter := dri.RecordFilter{Type: r.URL.Query().Get("type")}
	if r.URL.Query().Has("parentId") {
		parentID := r.URL.Query().Get("parentId")
		filter.ParentID = &parentID
	}

	count, err := h.service.CountRecords(r.Context(), filter)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	render.JSON(w, r, CountResponse{Count: count})
}

// GetRecordTypes lists the configured record types
func (h *RecordsHandler) GetRecordTypes(w http.ResponseWriter, r *http.Request) {
	types, err := h.service.GetRecordTypes(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	render.JSON(w, r, types)
}

// LastCreated lists the newest records, optionally of one type
func (h *RecordsHandler) LastCreated(w http.ResponseWriter, r *http.Request) {
	var (
		records []*dri.Record
		err     error
	)
	if recordType := r.URL.Query().Get("type"); recordType != "" {
		records, err = h.service.LastCreatedByType(r.Context(), recordType)
	} else {
		records, err = h.service.LastCreated(r.Context())
	}
	h.renderRecords(w, r, records, err)
}

// LastEdited lists the most recently modified records, optionally of one type
func (h *RecordsHandler) LastEdited(w http.ResponseWriter, r *http.Request) {
	var (
		records []*dri.Record
		err     error
	)
	if recordType := r.URL.Query().Get("type"); recordType != "" {
		records, err = h.service.LastEditedByType(r.Context(), recordType)
	} else {
		records, err = h.service.LastEdited(r.Context())
	}
	h.renderRecords(w, r, records, err)
}

// QueryRecords searches records by field prefix
func (h *RecordsHandler) QueryRecords(w http.ResponseWriter, r *http.Request) {
	field := r.URL.Query().Get("field")
	if field == "" {
		writeError(w, r, http.StatusBadRequest, "field is required")
		return
	}
	records, err := h.service.QueryRecords(r.Context(), field, r.URL.Query().Get("value"))
	h.renderRecords(w, r, records, err)
}

func (h *RecordsHandler) renderRecords(w http.ResponseWriter, r *http.Request, records []*dri.Record, err error) {
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if records == nil {
		records = []*dri.Record{}
	}
	render.JSON(w, r, records)
}

// ConvertToDC renders a record as Dublin Core XML
func (h *RecordsHandler) ConvertToDC(w http.ResponseWriter, r *http.Request) {
	doc, err := h.service.ConvertToDC(r.Context(), chi.URLParam(r, "id"))
	h.writeXML(w, r, doc, err)
}

// ConvertToMODS renders a record as MODS XML
func (h *RecordsHandler) ConvertToMODS(w http.ResponseWriter, r *http.Request) {
	doc, err := h.service.ConvertToMODS(r.Context(), chi.URLParam(r, "id"))
	h.writeXML(w, r, doc, err)
}

func (h *RecordsHandler) writeXML(w http.ResponseWriter, r *http.Request, doc string, err error) {
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(doc)); err != nil {
		h.logger.Error("Failed to write response", "error", err)
	}
}

// ApproveRecord publishes a record to the archive
func (h *RecordsHandler) ApproveRecord(w http.ResponseWriter, r *http.Request) {
	var req dri.ApproveRecordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("Failed to decode request", "error", err)
		writeError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}

	pid, err := h.service.ApproveRecord(r.Context(), chi.URLParam(r, "id"), req.Namespace)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	render.JSON(w, r, ApproveResponse{FedoraID: pid})
}

func intParam(r *http.Request, name string, fallback int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}
	return strconv.Atoi(raw)
}

package dri

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path"
	"path/filepath"
	"time"
)

// service implements the Service interface
type service struct {
	repository  Repository
	blobStore   BlobStore
	archive     Archive
	converter   MetadataConverter
	eventSink   EventSink
	logger      *slog.Logger
	recordTypes []string
	now         func() time.Time
	removeFile  func(name string) error
}

// Option represents a functional option for configuring the service
type Option func(*service)

// WithRepository sets the record store
func WithRepository(repo Repository) Option {
	return func(s *service) {
		s.repository = repo
	}
}

// WithBlobStore sets the storage uploaded files are written to
func WithBlobStore(store BlobStore) Option {
	return func(s *service) {
		s.blobStore = store
	}
}

// WithArchive sets the archival repository used by ApproveRecord
func WithArchive(archive Archive) Option {
	return func(s *service) {
		s.archive = archive
	}
}

// WithConverter sets the metadata converter
func WithConverter(converter MetadataConverter) Option {
	return func(s *service) {
		s.converter = converter
	}
}

// WithEventSink sets the event sink for the service
func WithEventSink(sink EventSink) Option {
	return func(s *service) {
		s.eventSink = sink
	}
}

// WithLogger sets the logger for the service
func WithLogger(logger *slog.Logger) Option {
	return func(s *service) {
		s.logger = logger
	}
}

// WithRecordTypes sets the list of valid record types
func WithRecordTypes(types ...string) Option {
	return func(s *service) {
		s.recordTypes = append([]string(nil), types...)
	}
}

// WithClock overrides the time source
func WithClock(now func() time.Time) Option {
	return func(s *service) {
		s.now = now
	}
}

// New creates a new service instance with the given options
func New(options ...Option) (Service, error) {
	s := &service{
		eventSink:  NewNoopEventSink(),
		logger:     slog.Default(),
		now:        time.Now,
		removeFile: os.Remove,
	}

	for _, option := range options {
		option(s)
	}

	if s.repository == nil {
		return nil, fmt.Errorf("repository is required")
	}
	if s.converter == nil {
		return nil, fmt.Errorf("converter is required")
	}

	return s, nil
}

// Record operations

func (s *service) GetRecord(ctx context.Context, id string) (*Record, error) {
	record, err := s.repository.GetRecord(ctx, id)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to get record", "id", id, "error", err)
		return nil, err
	}
	return record, nil
}

func (s *service) GetChildren(ctx context.Context, id string, page, pageSize int) (*Page, error) {
	if page < 0 || pageSize <= 0 {
		return nil, fmt.Errorf("%w: page %d, page size %d", ErrInvalidPagination, page, pageSize)
	}

	filter := RecordFilter{ParentID: &id}
	count, err := s.repository.CountRecords(ctx, filter)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to count children", "parent_id", id, "error", err)
		return nil, err
	}

	records, err := s.repository.ListRecords(ctx, ListRecordsParams{
		Filter: filter,
		SortBy: SortByDateCreated,
		Limit:  pageSize,
		Offset: page * pageSize,
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to list children", "parent_id", id, "error", err)
		return nil, err
	}

	return &Page{
		Records:    records,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: int(math.Ceil(float64(count) / float64(pageSize))),
	}, nil
}

func (s *service) CreateRecord(ctx context.Context, req CreateRecordRequest) (string, error) {
	if err := s.validateType(req.Type); err != nil {
		return "", err
	}
	if err := ValidatePropertyKeys(req.Properties); err != nil {
		return "", err
	}

	record := &Record{
		Label:        NewHash(),
		Type:         req.Type,
		ParentID:     req.ParentID,
		Properties:   req.Properties.Clone(),
		FileLocation: req.FileLocation,
		DateCreated:  s.now().UTC(),
	}
	if record.Properties == nil {
		record.Properties = Properties{}
	}

	if err := s.repository.CreateRecord(ctx, record); err != nil {
		s.logger.ErrorContext(ctx, "Failed to create record", "type", req.Type, "error", err)
		return "", err
	}

	s.fire(ctx, "created", func() error { return s.eventSink.RecordCreated(ctx, record) })
	return record.ID, nil
}

func (s *service) UpdateRecord(ctx context.Context, id string, req UpdateRecordRequest) error {
	if req.Type != nil {
		if err := s.validateType(*req.Type); err != nil {
			return err
		}
	}
	if err := ValidatePropertyKeys(req.Properties); err != nil {
		return err
	}

	update := RecordUpdate{
		Type:         req.Type,
		ParentID:     req.ParentID,
		Properties:   req.Properties,
		FileLocation: req.FileLocation,
		DateModified: s.now().UTC(),
	}
	if err := s.repository.UpdateRecord(ctx, id, update); err != nil {
		s.logger.ErrorContext(ctx, "Failed to update record", "id", id, "error", err)
		return err
	}

	s.fire(ctx, "updated", func() error { return s.eventSink.RecordUpdated(ctx, id) })
	return nil
}

func (s *service) RemoveRecord(ctx context.Context, id string) (string, error) {
	record, err := s.repository.GetRecord(ctx, id)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to get record for removal", "id", id, "error", err)
		return "", err
	}
	if err := s.repository.DeleteRecord(ctx, record.ID); err != nil {
		s.logger.ErrorContext(ctx, "Failed to remove record", "id", id, "error", err)
		return "", err
	}

	s.fire(ctx, "deleted", func() error { return s.eventSink.RecordDeleted(ctx, record.ID) })
	return record.ID, nil
}

func (s *service) CountRecords(ctx context.Context, filter RecordFilter) (int64, error) {
	count, err := s.repository.CountRecords(ctx, filter)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to count records", "error", err)
		return 0, err
	}
	return count, nil
}

func (s *service) GetRecordTypes(ctx context.Context) ([]string, error) {
	if len(s.recordTypes) == 0 {
		s.logger.ErrorContext(ctx, "No record types configured")
		return nil, ErrNoRecordTypes
	}
	return append([]string(nil), s.recordTypes...), nil
}

func (s *service) validateType(recordType string) error {
	if len(s.recordTypes) == 0 {
		return nil
	}
	for _, t := range s.recordTypes {
		if t == recordType {
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrInvalidRecordType, recordType)
}

// Recent records

func (s *service) LastCreated(ctx context.Context) ([]*Record, error) {
	return s.recent(ctx, RecordFilter{}, SortByDateCreated)
}

func (s *service) LastCreatedByType(ctx context.Context, recordType string) ([]*Record, error) {
	return s.recent(ctx, RecordFilter{Type: recordType}, SortByDateCreated)
}

func (s *service) LastEdited(ctx context.Context) ([]*Record, error) {
	return s.recent(ctx, RecordFilter{ModifiedOnly: true}, SortByDateModified)
}

func (s *service) LastEditedByType(ctx context.Context, recordType string) ([]*Record, error) {
	return s.recent(ctx, RecordFilter{Type: recordType, ModifiedOnly: true}, SortByDateModified)
}

func (s *service) recent(ctx context.Context, filter RecordFilter, sortBy SortField) ([]*Record, error) {
	records, err := s.repository.ListRecords(ctx, ListRecordsParams{
		Filter:     filter,
		SortBy:     sortBy,
		Descending: true,
		Limit:      RecentLimit,
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to list recent records", "sort_by", sortBy, "type", filter.Type, "error", err)
		return nil, err
	}
	return records, nil
}

func (s *service) QueryRecords(ctx context.Context, field, value string) ([]*Record, error) {
	if err := ValidateQueryField(field); err != nil {
		return nil, err
	}
	records, err := s.repository.QueryRecords(ctx, field, value)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to query records", "field", field, "error", err)
		return nil, err
	}
	return records, nil
}

// Descriptive metadata

func (s *service) ConvertToDC(ctx context.Context, id string) (string, error) {
	record, err := s.GetRecord(ctx, id)
	if err != nil {
		return "", err
	}
	return s.converter.ToDC(record)
}

func (s *service) ConvertToMODS(ctx context.Context, id string) (string, error) {
	record, err := s.GetRecord(ctx, id)
	if err != nil {
		return "", err
	}
	return s.converter.ToMODS(record)
}

// File intake

func (s *service) UploadFile(ctx context.Context, file FileUpload) (string, error) {
	if file.Size == 0 {
		s.logger.InfoContext(ctx, "No files")
		return "", ErrNoFile
	}
	name := filepath.Base(file.Name)
	if name == "." || name == ".." || name == string(filepath.Separator) || name == "" {
		return "", fmt.Errorf("%w: %q", ErrInvalidFileName, file.Name)
	}
	if s.blobStore == nil {
		return "", ErrBlobStoreNotConfigured
	}

	key := path.Join(NewHash(), name)

	src, err := os.Open(file.Path)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to open uploaded file", "path", file.Path, "error", err)
		return "", err
	}
	err = s.blobStore.Upload(ctx, key, src)
	src.Close()
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to store uploaded file", "key", key, "error", err)
		return "", err
	}

	if err := s.removeFile(file.Path); err != nil {
		s.logger.ErrorContext(ctx, "Failed to remove temporary file", "path", file.Path, "error", err)
		// nobody would hold the key of a blob left behind here
		if delErr := s.blobStore.Delete(ctx, key); delErr != nil {
			s.logger.ErrorContext(ctx, "Failed to delete stored upload", "key", key, "error", delErr)
		}
		return "", err
	}

	s.logger.InfoContext(ctx, "File uploaded", "key", key, "size", file.Size)
	return key, nil
}

func (s *service) fire(ctx context.Context, event string, fn func() error) {
	if s.eventSink == nil {
		return
	}
	if err := fn(); err != nil {
		s.logger.WarnContext(ctx, "Event sink failed", "event", event, "error", err)
	}
}

package dri

import "context"

// Service defines the main interface for the dri library
type Service interface {
	// Record operations
	GetRecord(ctx context.Context, id string) (*Record, error)
	GetChildren(ctx context.Context, id string, page, pageSize int) (*Page, error)
	CreateRecord(ctx context.Context, req CreateRecordRequest) (string, error)
	UpdateRecord(ctx context.Context, id string, req UpdateRecordRequest) error
	RemoveRecord(ctx context.Context, id string) (string, error)
	CountRecords(ctx context.Context, filter RecordFilter) (int64, error)
	GetRecordTypes(ctx context.Context) ([]string, error)

	// Recent records
	LastCreated(ctx context.Context) ([]*Record, error)
	LastCreatedByType(ctx context.Context, recordType string) ([]*Record, error)
	LastEdited(ctx context.Context) ([]*Record, error)
	LastEditedByType(ctx context.Context, recordType string) ([]*Record, error)

	// QueryRecords matches the start of field against value, ignoring case
	QueryRecords(ctx context.Context, field, value string) ([]*Record, error)

	// Descriptive metadata
	ConvertToDC(ctx context.Context, id string) (string, error)
	ConvertToMODS(ctx context.Context, id string) (string, error)

	// File intake
	UploadFile(ctx context.Context, file FileUpload) (string, error)

	// Publication
	ApproveRecord(ctx context.Context, id, namespace string) (string, error)
}

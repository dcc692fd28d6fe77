package dri

import (
	"context"
	"io"
	"time"
)

// Repository defines the interface for record persistence
type Repository interface {
	// CreateRecord stores a new record, assigning record.ID when it is empty
	CreateRecord(ctx context.Context, record *Record) error

	// GetRecord returns ErrRecordNotFound when no record has the id
	GetRecord(ctx context.Context, id string) (*Record, error)

	// UpdateRecord applies a partial update to a single record
	UpdateRecord(ctx context.Context, id string, update RecordUpdate) error

	// DeleteRecord removes a record
	DeleteRecord(ctx context.Context, id string) error

	// ListRecords returns filtered, ordered and paged records
	ListRecords(ctx context.Context, params ListRecordsParams) ([]*Record, error)

	// CountRecords counts records matching the filter
	CountRecords(ctx context.Context, filter RecordFilter) (int64, error)

	// QueryRecords returns records whose field starts with prefix, ignoring case
	QueryRecords(ctx context.Context, field, prefix string) ([]*Record, error)
}

// BlobStore defines the interface for storage of uploaded files
type BlobStore interface {
	// Upload uploads content directly
	Upload(ctx context.Context, objectKey string, reader io.Reader) error

	// Download downloads content directly
	Download(ctx context.Context, objectKey string) (io.ReadCloser, error)

	// Delete deletes content
	Delete(ctx context.Context, objectKey string) error

	// GetObjectMeta retrieves metadata for an object
	GetObjectMeta(ctx context.Context, objectKey string) (*ObjectMeta, error)
}

// Archive is the external archival repository records are published to.
type Archive interface {
	// CreateObject creates an empty object under namespace and returns its id
	CreateObject(ctx context.Context, namespace, label string) (string, error)

	// AddMetadataDatastream attaches an inline XML datastream
	AddMetadataDatastream(ctx context.Context, pid, dsID string, content []byte) error

	// AddMediaDatastream attaches a managed content datastream
	AddMediaDatastream(ctx context.Context, pid, dsID string, media MediaFile) error
}

// EventSink defines the interface for event handling
type EventSink interface {
	// RecordCreated is fired when a record is created
	RecordCreated(ctx context.Context, record *Record) error

	// RecordUpdated is fired when a record is updated
	RecordUpdated(ctx context.Context, recordID string) error

	// RecordDeleted is fired when a record is deleted
	RecordDeleted(ctx context.Context, recordID string) error

	// RecordPublished is fired when a record is fully published
	RecordPublished(ctx context.Context, recordID, fedoraID string) error
}

// ObjectMeta contains metadata about an object in storage
type ObjectMeta struct {
	Key         string
	Size        int64
	ContentType string
	UpdatedAt   time.Time
	ETag        string
	Metadata    map[string]string
}

// MediaFile is the media content attached to an archival object.
type MediaFile struct {
	Name     string
	MimeType string
	Size     int64
	Reader   io.Reader
}

// FileUpload is a file received by the host application and spooled to a
// temporary location.
type FileUpload struct {
	Path string // temporary location
	Name string // target file name
	Size int64
}

// MetadataConverter renders a record as descriptive metadata for the archive.
type MetadataConverter interface {
	// ToDC renders simple Dublin Core
	ToDC(record *Record) (string, error)

	// ToMODS renders MODS
	ToMODS(record *Record) (string, error)
}

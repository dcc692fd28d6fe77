package dri

import (
	"errors"
	"fmt"
)

// Error types
var (
	// ErrRecordNotFound indicates a record was not found
	ErrRecordNotFound = errors.New("record not found")

	// ErrNoFile indicates an upload carried no data
	ErrNoFile = errors.New("no file")

	// ErrInvalidFileName indicates an upload name that cannot be stored
	ErrInvalidFileName = errors.New("invalid file name")

	// ErrNoRecordTypes indicates no record types were configured
	ErrNoRecordTypes = errors.New("no record types configured")

	// ErrInvalidRecordType indicates a type outside the configured list
	ErrInvalidRecordType = errors.New("invalid record type")

	// ErrInvalidPagination indicates a negative page or non-positive page size
	ErrInvalidPagination = errors.New("invalid pagination")

	// ErrInvalidPropertyKey indicates a property key that is empty, contains
	// a dot or starts with a dollar sign
	ErrInvalidPropertyKey = errors.New("invalid property key")

	// ErrInvalidQueryField indicates a field the text query cannot match against
	ErrInvalidQueryField = errors.New("invalid query field")

	// ErrInvalidNamespace indicates an empty archival namespace
	ErrInvalidNamespace = errors.New("invalid namespace")

	// ErrAlreadyPublished indicates the record already has a complete archival object
	ErrAlreadyPublished = errors.New("record already published")

	// ErrArchiveNotConfigured indicates ApproveRecord was called without an archive
	ErrArchiveNotConfigured = errors.New("archive not configured")

	// ErrBlobStoreNotConfigured indicates file operations without a blob store
	ErrBlobStoreNotConfigured = errors.New("blob store not configured")
)

// Publication steps reported by PublicationError.
const (
	StepCreateObject   = "create_object"
	StepRecordObject   = "record_object"
	StepAttachMetadata = "attach_metadata"
	StepAttachMedia    = "attach_media"
	StepComplete       = "complete"
)

// PublicationError is returned by ApproveRecord when a step fails. FedoraID is
// set once the archival object exists, in which case the object is left in
// the archive without its full content.
type PublicationError struct {
	RecordID string
	FedoraID string
	Step     string
	Err      error
}

func (e *PublicationError) Error() string {
	if e.FedoraID == "" {
		return fmt.Sprintf("publication of record %s failed at %s: %v", e.RecordID, e.Step, e.Err)
	}
	return fmt.Sprintf("publication of record %s failed at %s (object %s): %v", e.RecordID, e.Step, e.FedoraID, e.Err)
}

func (e *PublicationError) Unwrap() error {
	return e.Err
}

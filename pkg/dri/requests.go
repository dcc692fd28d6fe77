package dri

// Request DTOs

// CreateRecordRequest contains parameters for creating a new record
type CreateRecordRequest struct {
	Type         string     `json:"type"`
	ParentID     string     `json:"parentId,omitempty"`
	Properties   Properties `json:"properties"`
	FileLocation string     `json:"fileLocation,omitempty"`
}

// UpdateRecordRequest contains the fields to change on a record. Absent fields
// are left as they are.
type UpdateRecordRequest struct {
	Type         *string    `json:"type,omitempty"`
	ParentID     *string    `json:"parentId,omitempty"`
	Properties   Properties `json:"properties,omitempty"`
	FileLocation *string    `json:"fileLocation,omitempty"`
}

// ApproveRecordRequest contains parameters for publishing a record
type ApproveRecordRequest struct {
	Namespace string `json:"namespace"`
}

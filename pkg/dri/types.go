package dri

import (
	"strings"
	"time"
)

// RecentLimit is the number of records returned by the "recent" queries.
const RecentLimit = 5

// PublicationStatus tracks how far a record got through ApproveRecord.
type PublicationStatus string

const (
	PublicationStatusNone      PublicationStatus = ""
	PublicationStatusPartial   PublicationStatus = "partial"
	PublicationStatusPublished PublicationStatus = "published"
)

// Datastream identifiers used when publishing a record.
const (
	DatastreamDC    = "DC"
	DatastreamMedia = "MEDIA"
)

// SortField names a timestamp records can be ordered by.
type SortField string

const (
	SortByDateCreated  SortField = "dateCreated"
	SortByDateModified SortField = "dateModified"
)

// Record is a metadata document in the repository's record collection.
type Record struct {
	ID                string            `json:"_id"`
	Label             string            `json:"label"`
	Type              string            `json:"type"`
	ParentID          string            `json:"parentId,omitempty"`
	Properties        Properties        `json:"properties"`
	FileLocation      string            `json:"fileLocation,omitempty"`
	FedoraID          string            `json:"fedoraId,omitempty"`
	PublicationStatus PublicationStatus `json:"publicationStatus,omitempty"`
	DateCreated       time.Time         `json:"dateCreated"`
	DateModified      *time.Time        `json:"dateModified,omitempty"`
}

// Clone returns a copy of the record that shares no mutable state with r.
func (r *Record) Clone() *Record {
	c := *r
	c.Properties = r.Properties.Clone()
	if r.DateModified != nil {
		t := *r.DateModified
		c.DateModified = &t
	}
	return &c
}

// Properties is the open descriptive-field bag of a record.
type Properties map[string]interface{}

// Lookup resolves a dotted path ("titleInfo.title") inside the bag.
func (p Properties) Lookup(path string) (interface{}, bool) {
	if p == nil || path == "" {
		return nil, false
	}
	var cur interface{} = map[string]interface{}(p)
	for _, seg := range strings.Split(path, ".") {
		switch m := cur.(type) {
		case map[string]interface{}:
			v, ok := m[seg]
			if !ok {
				return nil, false
			}
			cur = v
		case Properties:
			v, ok := m[seg]
			if !ok {
				return nil, false
			}
			cur = v
		default:
			return nil, false
		}
	}
	return cur, true
}

// String returns the value at path when it is a non-empty string.
func (p Properties) String(path string) string {
	v, ok := p.Lookup(path)
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}

// Strings returns the non-empty string values at path. A single string yields
// a one-element slice, a list keeps only its string entries.
func (p Properties) Strings(path string) []string {
	v, ok := p.Lookup(path)
	if !ok {
		return nil
	}
	switch t := v.(type) {
	case string:
		if t == "" {
			return nil
		}
		return []string{t}
	case []string:
		var out []string
		for _, s := range t {
			if s != "" {
				out = append(out, s)
			}
		}
		return out
	case []interface{}:
		var out []string
		for _, e := range t {
			if s, ok := e.(string); ok && s != "" {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// Title returns titleInfo.title, falling back to a top-level title.
func (p Properties) Title() string {
	if t := p.String("titleInfo.title"); t != "" {
		return t
	}
	return p.String("title")
}

// Subtitle returns titleInfo.subTitle, falling back to a top-level subtitle.
func (p Properties) Subtitle() string {
	if t := p.String("titleInfo.subTitle"); t != "" {
		return t
	}
	return p.String("subtitle")
}

// Clone deep-copies nested maps and lists.
func (p Properties) Clone() Properties {
	if p == nil {
		return nil
	}
	out := make(Properties, len(p))
	for k, v := range p {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v interface{}) interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		m := make(map[string]interface{}, len(t))
		for k, e := range t {
			m[k] = cloneValue(e)
		}
		return m
	case Properties:
		return t.Clone()
	case []interface{}:
		l := make([]interface{}, len(t))
		for i, e := range t {
			l[i] = cloneValue(e)
		}
		return l
	case []string:
		return append([]string(nil), t...)
	}
	return v
}

// Page is one page of child records.
type Page struct {
	Records    []*Record `json:"records"`
	Page       int       `json:"page"`
	PageSize   int       `json:"pageSize"`
	TotalPages int       `json:"totalPages"`
}

// RecordFilter restricts list and count operations. Zero values match
// everything. A ParentID pointing at "" selects records without a parent.
type RecordFilter struct {
	Type         string
	ParentID     *string
	ModifiedOnly bool
}

// Matches reports whether r passes the filter.
func (f RecordFilter) Matches(r *Record) bool {
	if f.Type != "" && r.Type != f.Type {
		return false
	}
	if f.ParentID != nil && r.ParentID != *f.ParentID {
		return false
	}
	if f.ModifiedOnly && r.DateModified == nil {
		return false
	}
	return true
}

// ListRecordsParams contains parameters for listing records.
type ListRecordsParams struct {
	Filter     RecordFilter
	SortBy     SortField
	Descending bool
	Limit      int
	Offset     int
}

// RecordUpdate is a partial update. Nil fields are left untouched; Properties
// keys are merged into the stored bag one level deep.
type RecordUpdate struct {
	Type              *string
	ParentID          *string
	Properties        Properties
	FileLocation      *string
	FedoraID          *string
	PublicationStatus *PublicationStatus
	DateModified      time.Time
}

// Apply merges the update into r.
func (u RecordUpdate) Apply(r *Record) {
	if u.Type != nil {
		r.Type = *u.Type
	}
	if u.ParentID != nil {
		r.ParentID = *u.ParentID
	}
	if len(u.Properties) > 0 {
		if r.Properties == nil {
			r.Properties = Properties{}
		}
		for k, v := range u.Properties {
			r.Properties[k] = cloneValue(v)
		}
	}
	if u.FileLocation != nil {
		r.FileLocation = *u.FileLocation
	}
	if u.FedoraID != nil {
		r.FedoraID = *u.FedoraID
	}
	if u.PublicationStatus != nil {
		r.PublicationStatus = *u.PublicationStatus
	}
	t := u.DateModified
	r.DateModified = &t
}

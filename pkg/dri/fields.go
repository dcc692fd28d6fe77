package dri

import (
	"fmt"
	"regexp"
	"strings"
)

// Queryable top-level record fields, keyed by their collection name.
const (
	FieldType              = "type"
	FieldLabel             = "label"
	FieldParentID          = "parentId"
	FieldFileLocation      = "fileLocation"
	FieldFedoraID          = "fedoraId"
	FieldPublicationStatus = "publicationStatus"
	propertiesPrefix       = "properties."
)

var propertySegment = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// ValidateQueryField checks that field names a record field the text query
// can match against: one of the top-level string fields or a dotted path
// below properties.
func ValidateQueryField(field string) error {
	switch field {
	case FieldType, FieldLabel, FieldParentID, FieldFileLocation, FieldFedoraID, FieldPublicationStatus:
		return nil
	}
	path, ok := PropertyPath(field)
	if !ok {
		return fmt.Errorf("%w: %q", ErrInvalidQueryField, field)
	}
	for _, seg := range path {
		if !propertySegment.MatchString(seg) {
			return fmt.Errorf("%w: %q", ErrInvalidQueryField, field)
		}
	}
	return nil
}

// ValidatePropertyKeys checks every key of props, nested maps included. Keys
// are path segments for Lookup and the text query, so they may not be empty,
// contain a dot or start with "$".
func ValidatePropertyKeys(props Properties) error {
	return validateKeys(map[string]interface{}(props), "")
}

func validateKeys(v interface{}, prefix string) error {
	switch t := v.(type) {
	case map[string]interface{}:
		for k, e := range t {
			if k == "" || strings.Contains(k, ".") || strings.HasPrefix(k, "$") {
				return fmt.Errorf("%w: %q", ErrInvalidPropertyKey, prefix+k)
			}
			if err := validateKeys(e, prefix+k+"."); err != nil {
				return err
			}
		}
	case Properties:
		return validateKeys(map[string]interface{}(t), prefix)
	case []interface{}:
		for _, e := range t {
			if err := validateKeys(e, prefix); err != nil {
				return err
			}
		}
	}
	return nil
}

// PropertyPath splits "properties.a.b" into ["a", "b"].
func PropertyPath(field string) ([]string, bool) {
	if !strings.HasPrefix(field, propertiesPrefix) || len(field) == len(propertiesPrefix) {
		return nil, false
	}
	return strings.Split(strings.TrimPrefix(field, propertiesPrefix), "."), true
}

// FieldValue returns the string value of a validated query field on r.
func FieldValue(r *Record, field string) (string, bool) {
	switch field {
	case FieldType:
		return r.Type, true
	case FieldLabel:
		return r.Label, true
	case FieldParentID:
		return r.ParentID, r.ParentID != ""
	case FieldFileLocation:
		return r.FileLocation, r.FileLocation != ""
	case FieldFedoraID:
		return r.FedoraID, r.FedoraID != ""
	case FieldPublicationStatus:
		return string(r.PublicationStatus), r.PublicationStatus != ""
	}
	path, ok := PropertyPath(field)
	if !ok {
		return "", false
	}
	v, ok := r.Properties.Lookup(strings.Join(path, "."))
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// PrefixPattern is the case-insensitive regular expression the text query
// uses for value. The value is matched literally.
func PrefixPattern(value string) string {
	return "^" + regexp.QuoteMeta(value)
}

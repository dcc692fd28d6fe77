// Package convert maps records to the flat descriptive-metadata formats the
// archive expects: simple Dublin Core (oai_dc) and MODS.
//
// Every output field reads a fixed, ordered list of property paths and takes
// the first one present. Properties outside the mapping are dropped and
// missing fields are omitted, so the output only depends on the record.
package convert

import (
	"encoding/xml"
	"fmt"

	"github.com/tendant/simple-dri/pkg/dri"
)

// Converter implements dri.MetadataConverter.
type Converter struct{}

// New returns the default converter.
func New() dri.MetadataConverter {
	return &Converter{}
}

// ToDC implements dri.MetadataConverter.
func (c *Converter) ToDC(record *dri.Record) (string, error) {
	return ToDC(record)
}

// ToMODS implements dri.MetadataConverter.
func (c *Converter) ToMODS(record *dri.Record) (string, error) {
	return ToMODS(record)
}

// first returns the values of the first path present in props.
func first(props dri.Properties, paths ...string) []string {
	for _, p := range paths {
		if v := props.Strings(p); len(v) > 0 {
			return v
		}
	}
	return nil
}

func firstString(props dri.Properties, paths ...string) string {
	if v := first(props, paths...); len(v) > 0 {
		return v[0]
	}
	return ""
}

func marshal(v interface{}) (string, error) {
	out, err := xml.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal metadata: %w", err)
	}
	return xml.Header + string(out), nil
}

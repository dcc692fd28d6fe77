package convert

import (
	"encoding/xml"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/simple-dri/pkg/dri"
)

func sampleRecord() *dri.Record {
	return &dri.Record{
		ID:   "r1",
		Type: "item",
		Properties: dri.Properties{
			"titleInfo": map[string]interface{}{"title": "Harbour & Docks", "subTitle": "1890"},
			"name":      map[string]interface{}{"namePart": []interface{}{"Smith, J.", "Doe, A."}},
			"subject":   map[string]interface{}{"topic": []interface{}{"Ports", "Shipping"}},
			"abstract":  "Photographs of the harbour.",
			"originInfo": map[string]interface{}{
				"publisher":  "City Archive",
				"dateIssued": "1890",
				"place":      map[string]interface{}{"placeTerm": "Dublin"},
			},
			"typeOfResource":      "still image",
			"genre":               "photograph",
			"language":            map[string]interface{}{"languageTerm": "eng"},
			"physicalDescription": map[string]interface{}{"form": "glass plate", "extent": "12 plates"},
			"identifier":          "ARCH-1",
			"accessCondition":     "Public domain",
			"note":                "Donated 1950",
			"unmapped":            "dropped",
		},
	}
}

func TestToDC(t *testing.T) {
	record := sampleRecord()
	record.FedoraID = "dri:7"

	out, err := ToDC(record)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, xml.Header))
	assert.Contains(t, out, `<oai_dc:dc xmlns:oai_dc="http://www.openarchives.org/OAI/2.0/oai_dc/"`)
	assert.Contains(t, out, `xmlns:dc="http://purl.org/dc/elements/1.1/"`)
	assert.Contains(t, out, "<dc:title>Harbour &amp; Docks</dc:title>")
	assert.Contains(t, out, "<dc:creator>Smith, J.</dc:creator>")
	assert.Contains(t, out, "<dc:creator>Doe, A.</dc:creator>")
	assert.Contains(t, out, "<dc:subject>Ports</dc:subject>")
	assert.Contains(t, out, "<dc:subject>Shipping</dc:subject>")
	assert.Contains(t, out, "<dc:description>Photographs of the harbour.</dc:description>")
	assert.Contains(t, out, "<dc:publisher>City Archive</dc:publisher>")
	assert.Contains(t, out, "<dc:date>1890</dc:date>")
	assert.Contains(t, out, "<dc:type>still image</dc:type>")
	assert.Contains(t, out, "<dc:format>glass plate</dc:format>")
	assert.Contains(t, out, "<dc:identifier>ARCH-1</dc:identifier>")
	assert.Contains(t, out, "<dc:identifier>dri:7</dc:identifier>")
	assert.Contains(t, out, "<dc:language>eng</dc:language>")
	assert.Contains(t, out, "<dc:rights>Public domain</dc:rights>")
	assert.NotContains(t, out, "dropped")

	// element order follows the mapping
	assert.Less(t, strings.Index(out, "<dc:title>"), strings.Index(out, "<dc:creator>"))
	assert.Less(t, strings.Index(out, "<dc:creator>"), strings.Index(out, "<dc:rights>"))
}

func TestToDC_Minimal(t *testing.T) {
	out, err := ToDC(&dri.Record{Type: "collection", Properties: dri.Properties{"title": "Letters"}})
	require.NoError(t, err)

	assert.Contains(t, out, "<dc:title>Letters</dc:title>")
	// falls back to the record type
	assert.Contains(t, out, "<dc:type>collection</dc:type>")
	assert.NotContains(t, out, "<dc:creator>")
	assert.NotContains(t, out, "<dc:identifier>")
}

func TestToDC_Deterministic(t *testing.T) {
	a, err := ToDC(sampleRecord())
	require.NoError(t, err)
	b, err := ToDC(sampleRecord())
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestToMODS(t *testing.T) {
	out, err := ToMODS(sampleRecord())
	require.NoError(t, err)

	var doc struct {
		XMLName   xml.Name `xml:"http://www.loc.gov/mods/v3 mods"`
		Version   string   `xml:"version,attr"`
		TitleInfo struct {
			Title    string `xml:"title"`
			SubTitle string `xml:"subTitle"`
		} `xml:"titleInfo"`
		Names      []string `xml:"name>namePart"`
		Type       string   `xml:"typeOfResource"`
		Genre      []string `xml:"genre"`
		Publisher  string   `xml:"originInfo>publisher"`
		Place      string   `xml:"originInfo>place>placeTerm"`
		DateIssued string   `xml:"originInfo>dateIssued"`
		Language   string   `xml:"language>languageTerm"`
		Form       string   `xml:"physicalDescription>form"`
		Extent     string   `xml:"physicalDescription>extent"`
		Abstract   string   `xml:"abstract"`
		Note       string   `xml:"note"`
		Topics     []string `xml:"subject>topic"`
		Identifier string   `xml:"identifier"`
		Access     string   `xml:"accessCondition"`
	}
	require.NoError(t, xml.Unmarshal([]byte(out), &doc))

	assert.Equal(t, "3.4", doc.Version)
	assert.Equal(t, "Harbour & Docks", doc.TitleInfo.Title)
	assert.Equal(t, "1890", doc.TitleInfo.SubTitle)
	assert.Equal(t, []string{"Smith, J.", "Doe, A."}, doc.Names)
	assert.Equal(t, "still image", doc.Type)
	assert.Equal(t, []string{"photograph"}, doc.Genre)
	assert.Equal(t, "City Archive", doc.Publisher)
	assert.Equal(t, "Dublin", doc.Place)
	assert.Equal(t, "1890", doc.DateIssued)
	assert.Equal(t, "eng", doc.Language)
	assert.Equal(t, "glass plate", doc.Form)
	assert.Equal(t, "12 plates", doc.Extent)
	assert.Equal(t, "Photographs of the harbour.", doc.Abstract)
	assert.Equal(t, "Donated 1950", doc.Note)
	assert.Equal(t, []string{"Ports", "Shipping"}, doc.Topics)
	assert.Equal(t, "ARCH-1", doc.Identifier)
	assert.Equal(t, "Public domain", doc.Access)
}

func TestToMODS_OmitsEmptySections(t *testing.T) {
	out, err := ToMODS(&dri.Record{Properties: dri.Properties{}})
	require.NoError(t, err)

	assert.Contains(t, out, `<mods xmlns="http://www.loc.gov/mods/v3" version="3.4">`)
	assert.NotContains(t, out, "<titleInfo>")
	assert.NotContains(t, out, "<originInfo>")
	assert.NotContains(t, out, "<physicalDescription>")
	assert.NotContains(t, out, "<typeOfResource>")
}

func TestConverterImplementsInterface(t *testing.T) {
	var c dri.MetadataConverter = New()
	out, err := c.ToDC(&dri.Record{Properties: dri.Properties{"title": "x"}})
	require.NoError(t, err)
	assert.Contains(t, out, "<dc:title>x</dc:title>")
}

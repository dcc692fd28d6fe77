package convert

import (
	"encoding/xml"

	"github.com/tendant/simple-dri/pkg/dri"
)

const (
	oaiDCNamespace = "http://www.openarchives.org/OAI/2.0/oai_dc/"
	dcNamespace    = "http://purl.org/dc/elements/1.1/"
	xsiNamespace   = "http://www.w3.org/2001/XMLSchema-instance"
	oaiDCSchema    = "http://www.openarchives.org/OAI/2.0/oai_dc/ http://www.openarchives.org/OAI/2.0/oai_dc.xsd"
)

// dcField maps one Dublin Core element to the property paths it reads.
type dcField struct {
	element string
	paths   []string
}

// dcFields is ordered as the elements appear in the output.
var dcFields = []dcField{
	{"title", []string{"titleInfo.title", "title"}},
	{"creator", []string{"name.namePart", "creator", "author"}},
	{"subject", []string{"subject.topic", "subject"}},
	{"description", []string{"abstract", "description"}},
	{"publisher", []string{"originInfo.publisher", "publisher"}},
	{"contributor", []string{"contributor"}},
	{"date", []string{"originInfo.dateIssued", "originInfo.dateCreated", "date"}},
	{"type", []string{"typeOfResource", "dcType"}},
	{"format", []string{"physicalDescription.form", "format"}},
	{"identifier", []string{"identifier"}},
	{"source", []string{"source"}},
	{"language", []string{"language.languageTerm", "language"}},
	{"relation", []string{"relation"}},
	{"coverage", []string{"coverage"}},
	{"rights", []string{"accessCondition", "rights"}},
}

type dcDocument struct {
	XMLName        xml.Name    `xml:"oai_dc:dc"`
	OAIDC          string      `xml:"xmlns:oai_dc,attr"`
	DC             string      `xml:"xmlns:dc,attr"`
	XSI            string      `xml:"xmlns:xsi,attr"`
	SchemaLocation string      `xml:"xsi:schemaLocation,attr"`
	Elements       []dcElement `xml:",any"`
}

type dcElement struct {
	XMLName xml.Name
	Value   string `xml:",chardata"`
}

// ToDC renders record as an oai_dc document.
func ToDC(record *dri.Record) (string, error) {
	doc := dcDocument{
		OAIDC:          oaiDCNamespace,
		DC:             dcNamespace,
		XSI:            xsiNamespace,
		SchemaLocation: oaiDCSchema,
	}
	for _, f := range dcFields {
		values := first(record.Properties, f.paths...)
		switch f.element {
		case "type":
			if len(values) == 0 && record.Type != "" {
				values = []string{record.Type}
			}
		case "identifier":
			if record.FedoraID != "" {
				values = append(values, record.FedoraID)
			}
		}
		for _, v := range values {
			doc.Elements = append(doc.Elements, dcElement{
				XMLName: xml.Name{Local: "dc:" + f.element},
				Value:   v,
			})
		}
	}
	return marshal(doc)
}

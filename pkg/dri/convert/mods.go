package convert

import (
	"encoding/xml"

	"github.com/tendant/simple-dri/pkg/dri"
)

const modsVersion = "3.4"

type modsDocument struct {
	XMLName             xml.Name                 `xml:"http://www.loc.gov/mods/v3 mods"`
	Version             string                   `xml:"version,attr"`
	TitleInfo           *modsTitleInfo           `xml:"titleInfo"`
	Names               []modsName               `xml:"name"`
	TypeOfResource      string                   `xml:"typeOfResource,omitempty"`
	Genre               []string                 `xml:"genre"`
	OriginInfo          *modsOriginInfo          `xml:"originInfo"`
	Language            []modsLanguage           `xml:"language"`
	PhysicalDescription *modsPhysicalDescription `xml:"physicalDescription"`
	Abstract            []string                 `xml:"abstract"`
	Note                []string                 `xml:"note"`
	Subject             []modsSubject            `xml:"subject"`
	Identifier          []string                 `xml:"identifier"`
	AccessCondition     []string                 `xml:"accessCondition"`
}

type modsTitleInfo struct {
	Title    string `xml:"title,omitempty"`
	SubTitle string `xml:"subTitle,omitempty"`
}

type modsName struct {
	NamePart string `xml:"namePart"`
}

type modsOriginInfo struct {
	Publisher   string     `xml:"publisher,omitempty"`
	Place       *modsPlace `xml:"place"`
	DateIssued  string     `xml:"dateIssued,omitempty"`
	DateCreated string     `xml:"dateCreated,omitempty"`
}

type modsPlace struct {
	PlaceTerm string `xml:"placeTerm"`
}

type modsLanguage struct {
	LanguageTerm string `xml:"languageTerm"`
}

type modsPhysicalDescription struct {
	Form   string `xml:"form,omitempty"`
	Extent string `xml:"extent,omitempty"`
}

type modsSubject struct {
	Topic string `xml:"topic"`
}

// ToMODS renders record as a MODS document.
func ToMODS(record *dri.Record) (string, error) {
	p := record.Properties
	doc := modsDocument{Version: modsVersion}

	if title, sub := p.Title(), p.Subtitle(); title != "" || sub != "" {
		doc.TitleInfo = &modsTitleInfo{Title: title, SubTitle: sub}
	}
	for _, n := range first(p, "name.namePart", "creator", "author") {
		doc.Names = append(doc.Names, modsName{NamePart: n})
	}
	doc.TypeOfResource = firstString(p, "typeOfResource")
	doc.Genre = first(p, "genre")

	origin := modsOriginInfo{
		Publisher:   firstString(p, "originInfo.publisher", "publisher"),
		DateIssued:  firstString(p, "originInfo.dateIssued", "date"),
		DateCreated: firstString(p, "originInfo.dateCreated"),
	}
	if place := firstString(p, "originInfo.place.placeTerm", "originInfo.place", "place"); place != "" {
		origin.Place = &modsPlace{PlaceTerm: place}
	}
	if origin != (modsOriginInfo{}) {
		doc.OriginInfo = &origin
	}

	for _, l := range first(p, "language.languageTerm", "language") {
		doc.Language = append(doc.Language, modsLanguage{LanguageTerm: l})
	}

	physical := modsPhysicalDescription{
		Form:   firstString(p, "physicalDescription.form", "format"),
		Extent: firstString(p, "physicalDescription.extent", "extent"),
	}
	if physical != (modsPhysicalDescription{}) {
		doc.PhysicalDescription = &physical
	}

	doc.Abstract = first(p, "abstract", "description")
	doc.Note = first(p, "note")
	for _, t := range first(p, "subject.topic", "subject") {
		doc.Subject = append(doc.Subject, modsSubject{Topic: t})
	}
	doc.Identifier = first(p, "identifier")
	doc.AccessCondition = first(p, "accessCondition", "rights")

	return marshal(doc)
}

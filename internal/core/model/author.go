package model

import (
	"encoding/xml"

	"github.com/custodia-labs/gdata/internal/core/parsable"
)

// Author is an atom:author.
type Author struct {
	parsable.Base

	Name  string
	URI   string
	Email string
}

// XMLName implements parsable.XMLParsable.
func (a *Author) XMLName() xml.Name { return xml.Name{Space: parsable.NSAtom, Local: "author"} }

// ParseXML handles the person constructs.
func (a *Author) ParseXML(child *parsable.Element) error {
	switch {
	case child.Is(parsable.NSAtom, "name"):
		return parsable.Text(child, parsable.NoDupes, &a.Name)
	case child.Is(parsable.NSAtom, "uri"):
		return parsable.Text(child, parsable.NoDupes, &a.URI)
	case child.Is(parsable.NSAtom, "email"):
		return parsable.Text(child, parsable.NoDupes, &a.Email)
	default:
		return a.Base.ParseXML(child)
	}
}

// PostParseXML requires a name.
func (a *Author) PostParseXML() error {
	return parsable.Require(a.Name != "", "author", "name")
}

// GetXML writes the person constructs.
func (a *Author) GetXML(w *parsable.XMLWriter) {
	w.Element("name", a.Name)
	w.ElementIf("uri", a.URI)
	w.ElementIf("email", a.Email)
}

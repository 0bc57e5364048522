package gd

import (
	"encoding/xml"

	"github.com/custodia-labs/gdata/internal/core/parsable"
)

// Where is a gd:where, a place described in free text.
type Where struct {
	parsable.Base

	ValueString string
	Relation    string
	Label       string
}

// NewWhere creates a place.
func NewWhere(valueString string) *Where {
	return &Where{ValueString: valueString}
}

// XMLName implements parsable.XMLParsable.
func (p *Where) XMLName() xml.Name {
	return xml.Name{Space: parsable.NSGData, Local: "where"}
}

// Namespaces implements parsable.Parsable.
func (p *Where) Namespaces() map[string]string {
	ns := p.Base.Namespaces()
	ns["gd"] = parsable.NSGData
	return ns
}

// PreParseXML reads the place attributes.
func (p *Where) PreParseXML(root *parsable.Element) error {
	p.ValueString, _ = root.Attr("", "valueString")
	p.Relation, _ = root.Attr("", "rel")
	p.Label, _ = root.Attr("", "label")
	return nil
}

// PreGetXML writes the place attributes.
func (p *Where) PreGetXML(w *parsable.XMLWriter) {
	w.AttrIf("valueString", p.ValueString)
	w.AttrIf("rel", p.Relation)
	w.AttrIf("label", p.Label)
}

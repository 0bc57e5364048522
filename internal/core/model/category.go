package model

import (
	"encoding/xml"

	"github.com/custodia-labs/gdata/internal/core/parsable"
)

// KindScheme is the category scheme that names an entry's kind.
const KindScheme = "http://schemas.google.com/g/2005#kind"

// Category is an atom:category. Two categories are equal when term and
// scheme match; the label is presentation only.
type Category struct {
	parsable.Base

	Term   string
	Scheme string
	Label  string
}

// NewCategory creates a category.
func NewCategory(term, scheme, label string) *Category {
	return &Category{Term: term, Scheme: scheme, Label: label}
}

// Equal reports whether c and o identify the same category.
func (c *Category) Equal(o *Category) bool {
	return c.Term == o.Term && c.Scheme == o.Scheme
}

// XMLName implements parsable.XMLParsable.
func (c *Category) XMLName() xml.Name { return xml.Name{Space: parsable.NSAtom, Local: "category"} }

// PreParseXML reads the category attributes.
func (c *Category) PreParseXML(root *parsable.Element) error {
	term, err := parsable.RequireAttr(root, "", "term")
	if err != nil {
		return err
	}
	c.Term = term
	c.Scheme, _ = root.Attr("", "scheme")
	c.Label, _ = root.Attr("", "label")
	return nil
}

// PreGetXML writes the category attributes.
func (c *Category) PreGetXML(w *parsable.XMLWriter) {
	w.Attr("term", c.Term)
	w.AttrIf("scheme", c.Scheme)
	w.AttrIf("label", c.Label)
}

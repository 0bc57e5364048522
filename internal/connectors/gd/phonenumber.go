package gd

import (
	"encoding/xml"
	"strings"

	"github.com/custodia-labs/gdata/internal/core/domain"
	"github.com/custodia-labs/gdata/internal/core/parsable"
)

// Phone number relation types.
const (
	PhoneAssistant = "http://schemas.google.com/g/2005#assistant"
	PhoneCar       = "http://schemas.google.com/g/2005#car"
	PhoneFax       = "http://schemas.google.com/g/2005#fax"
	PhoneHome      = "http://schemas.google.com/g/2005#home"
	PhoneMobile    = "http://schemas.google.com/g/2005#mobile"
	PhoneOther     = "http://schemas.google.com/g/2005#other"
	PhonePager     = "http://schemas.google.com/g/2005#pager"
	PhoneWork      = "http://schemas.google.com/g/2005#work"
)

// PhoneNumber is a gd:phoneNumber. The number is human-facing and stored
// trimmed of surrounding whitespace.
type PhoneNumber struct {
	parsable.Base

	number   string
	URI      string
	Relation string
	Label    string
	Primary  bool
}

// NewPhoneNumber creates a phone number.
func NewPhoneNumber(number, relation, label, uri string, primary bool) *PhoneNumber {
	p := &PhoneNumber{URI: uri, Relation: relation, Label: label, Primary: primary}
	p.SetNumber(number)
	return p
}

// Number returns the phone number.
func (p *PhoneNumber) Number() string { return p.number }

// SetNumber sets the phone number, trimming surrounding whitespace.
func (p *PhoneNumber) SetNumber(number string) { p.number = strings.TrimSpace(number) }

// Equal reports whether p and o hold the same number.
func (p *PhoneNumber) Equal(o *PhoneNumber) bool { return p.number == o.number }

// XMLName implements parsable.XMLParsable.
func (p *PhoneNumber) XMLName() xml.Name {
	return xml.Name{Space: parsable.NSGData, Local: "phoneNumber"}
}

// Namespaces implements parsable.Parsable.
func (p *PhoneNumber) Namespaces() map[string]string {
	ns := p.Base.Namespaces()
	ns["gd"] = parsable.NSGData
	return ns
}

// PreParseXML reads the number and its attributes.
func (p *PhoneNumber) PreParseXML(root *parsable.Element) error {
	if err := parsable.AttrBool(root, "", "primary", &p.Primary); err != nil {
		return err
	}
	if strings.TrimSpace(root.Text) == "" {
		return &domain.ParseError{Kind: domain.ErrRequiredContentMissing, Element: root.QName()}
	}
	rel, ok := root.Attr("", "rel")
	if ok && rel == "" {
		return &domain.ParseError{Kind: domain.ErrRequiredFieldMissing, Element: root.QName(), Property: "rel"}
	}

	p.SetNumber(root.Text)
	p.Relation = rel
	p.URI, _ = root.Attr("", "uri")
	p.Label, _ = root.Attr("", "label")
	return nil
}

// PreGetXML writes the attributes.
func (p *PhoneNumber) PreGetXML(w *parsable.XMLWriter) {
	w.AttrIf("uri", p.URI)
	w.AttrIf("rel", p.Relation)
	w.AttrIf("label", p.Label)
	w.BoolAttr("primary", p.Primary)
}

// GetXML writes the number.
func (p *PhoneNumber) GetXML(w *parsable.XMLWriter) {
	w.Text(p.number)
}

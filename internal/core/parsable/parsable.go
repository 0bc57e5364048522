package parsable

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
	"errors"
	"io"

	"github.com/custodia-labs/gdata/internal/core/domain"
	"github.com/custodia-labs/gdata/internal/logger"
)

// Options control decoding.
type Options struct {
	// Strict rejects unknown elements and members with ErrUnhandledElement
	// instead of preserving them.
	Strict bool
}

// Parsable is implemented by every entity with a wire representation.
type Parsable interface {
	// Namespaces returns the prefix to URI declarations the entity needs
	// when encoded as XML, including those of its children.
	Namespaces() map[string]string
	parsableBase() *Base
}

// XMLParsable is an entity with an XML representation.
type XMLParsable interface {
	Parsable
	// XMLName is the qualified name of the entity's root element.
	XMLName() xml.Name
	// PreParseXML inspects the root element before its children.
	PreParseXML(root *Element) error
	// ParseXML handles one child element, deferring unknown children to the
	// embedded type.
	ParseXML(child *Element) error
	// PostParseXML validates the entity once all children were seen.
	PostParseXML() error
	// PreGetXML writes attributes of the root element.
	PreGetXML(w *XMLWriter)
	// GetXML writes child elements.
	GetXML(w *XMLWriter)
}

// JSONParsable is an entity with a JSON representation.
type JSONParsable interface {
	Parsable
	// ParseJSON handles one object member, deferring unknown members to the
	// embedded type.
	ParseJSON(member string, raw json.RawMessage) error
	// PostParseJSON validates the entity once all members were seen.
	PostParseJSON() error
	// GetJSON writes object members.
	GetJSON(w *JSONWriter)
}

type extraMember struct {
	name string
	raw  json.RawMessage
}

// Base terminates every handler chain. Embed it (directly or through another
// entity) in every parsable type.
type Base struct {
	opts         Options
	extraXML     []*Element
	extraNS      map[string]string
	extraMembers []extraMember
}

func (b *Base) parsableBase() *Base { return b }

// ParseOptions returns the options the entity is being decoded with, for
// decoding nested entities consistently.
func (b *Base) ParseOptions() Options { return b.opts }

// Namespaces returns the namespaces used by preserved elements, leaving out
// prefixes reserved for another URI.
func (b *Base) Namespaces() map[string]string {
	ns := make(map[string]string, len(b.extraNS))
	for prefix, uri := range b.extraNS {
		if !clashes(prefix, uri) {
			ns[prefix] = uri
		}
	}
	return ns
}

// PreParseXML accepts any root.
func (b *Base) PreParseXML(*Element) error { return nil }

// ParseXML preserves an element no embedding type handled.
func (b *Base) ParseXML(child *Element) error {
	if b.opts.Strict {
		return &domain.ParseError{Kind: domain.ErrUnhandledElement, Element: child.QName()}
	}
	logger.Debug("Unhandled XML element <%s> (%s)", child.QName(), child.Name.Space)
	if b.extraNS == nil {
		b.extraNS = make(map[string]string)
	}
	child.collectNamespaces(b.extraNS)
	b.extraXML = append(b.extraXML, child)
	return nil
}

// PostParseXML accepts any entity.
func (b *Base) PostParseXML() error { return nil }

// PreGetXML writes nothing.
func (b *Base) PreGetXML(*XMLWriter) {}

// GetXML writes nothing. Preserved elements are written by the encoder.
func (b *Base) GetXML(*XMLWriter) {}

// ParseJSON preserves a member no embedding type handled.
func (b *Base) ParseJSON(member string, raw json.RawMessage) error {
	if b.opts.Strict {
		return &domain.ParseError{Kind: domain.ErrUnhandledElement, Property: member}
	}
	logger.Debug("Unhandled JSON member %q", member)
	b.extraMembers = append(b.extraMembers, extraMember{name: member, raw: raw})
	return nil
}

// PostParseJSON accepts any entity.
func (b *Base) PostParseJSON() error { return nil }

// GetJSON writes nothing. Preserved members are written by the encoder.
func (b *Base) GetJSON(*JSONWriter) {}

// FromXML decodes a document into target.
func FromXML(data []byte, target XMLParsable, opts Options) error {
	root, err := ParseDocument(data)
	if err != nil {
		return err
	}
	return DecodeXML(root, target, opts)
}

// DecodeXML decodes an element into target. The element must carry
// target's root name.
func DecodeXML(el *Element, target XMLParsable, opts Options) error {
	want := target.XMLName()
	if el.Name != want {
		return &domain.ParseError{
			Kind:     domain.ErrRequiredFieldMissing,
			Element:  "root",
			Property: want.Local,
		}
	}

	target.parsableBase().opts = opts
	if err := target.PreParseXML(el); err != nil {
		return err
	}
	for _, child := range el.Children {
		if err := target.ParseXML(child); err != nil {
			return err
		}
	}
	return target.PostParseXML()
}

// ToXML encodes p as a standalone document with an XML declaration and every
// namespace declared on the root element.
func ToXML(p XMLParsable) []byte {
	w := NewDocumentWriter(p.XMLName(), p.Namespaces())
	writeBody(w, p, nil)
	w.Close()
	return w.Bytes()
}

func writeBody(w *XMLWriter, p XMLParsable, extra func(*XMLWriter)) {
	p.PreGetXML(w)
	p.GetXML(w)
	for _, el := range p.parsableBase().extraXML {
		w.Raw(el)
	}
	if extra != nil {
		extra(w)
	}
}

// FromJSON decodes a JSON object into target, offering members in document
// order.
func FromJSON(data []byte, target JSONParsable, opts Options) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return &domain.ParseError{Kind: domain.ErrEmptyDocument}
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return malformedJSON(err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return &domain.ParseError{Kind: domain.ErrMalformedDocument, Err: errors.New("root is not an object")}
	}

	target.parsableBase().opts = opts
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return malformedJSON(err)
		}
		member, _ := tok.(string)

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return malformedJSON(err)
		}
		if err := target.ParseJSON(member, raw); err != nil {
			return err
		}
	}
	if _, err := dec.Token(); err != nil {
		return malformedJSON(err)
	}

	return target.PostParseJSON()
}

func malformedJSON(err error) error {
	if errors.Is(err, io.EOF) {
		err = io.ErrUnexpectedEOF
	}
	return &domain.ParseError{Kind: domain.ErrMalformedDocument, Err: err}
}

// ToJSON encodes p as a JSON object.
func ToJSON(p JSONParsable) []byte {
	w := &JSONWriter{}
	w.begin('{')
	writeMembers(w, p)
	w.end('}')
	return w.Bytes()
}

func writeMembers(w *JSONWriter, p JSONParsable) {
	p.GetJSON(w)
	for _, m := range p.parsableBase().extraMembers {
		w.Raw(m.name, m.raw)
	}
}

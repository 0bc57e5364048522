package parsable

import (
	"bytes"
	"encoding/xml"
	"errors"
	"io"
	"maps"
	"strings"

	"github.com/custodia-labs/gdata/internal/core/domain"
)

// Element is a decoded XML element. Names are resolved to namespace URIs;
// the source prefixes are kept so preserved elements re-encode faithfully.
type Element struct {
	Name     xml.Name
	Attrs    []xml.Attr
	Children []*Element
	// Text is the concatenated character data directly inside the element.
	Text string
	// Prefix is the prefix the element was written with.
	Prefix string

	// segments[i] is the character data before Children[i]; the last
	// segment follows the last child.
	segments []string

	// repeated is set when an earlier sibling has the same name.
	repeated bool

	// prefixes maps in-scope namespace URIs to prefixes.
	prefixes map[string]string
}

// Is reports whether the element has the given qualified name.
func (e *Element) Is(space, local string) bool {
	return e.Name.Space == space && e.Name.Local == local
}

// Attr returns the value of an attribute. Unprefixed attributes have an
// empty space.
func (e *Element) Attr(space, local string) (string, bool) {
	for _, a := range e.Attrs {
		if a.Name.Space == space && a.Name.Local == local {
			return a.Value, true
		}
	}
	return "", false
}

// Child returns the first child with the given name, or nil.
func (e *Element) Child(space, local string) *Element {
	for _, c := range e.Children {
		if c.Is(space, local) {
			return c
		}
	}
	return nil
}

// QName renders the element name for messages.
func (e *Element) QName() string {
	if e.Prefix != "" {
		return e.Prefix + ":" + e.Name.Local
	}
	return e.Name.Local
}

func (e *Element) appendText(s string) {
	e.Text += s
	for len(e.segments) <= len(e.Children) {
		e.segments = append(e.segments, "")
	}
	e.segments[len(e.Children)] += s
}

// segment returns the character data before child i, or after the last
// child when i is len(Children). Elements built by hand carry all their text
// before the children.
func (e *Element) segment(i int) string {
	if e.segments == nil {
		if i == 0 {
			return e.Text
		}
		return ""
	}
	if i < len(e.segments) {
		return e.segments[i]
	}
	return ""
}

// attrPrefix returns the source prefix of a namespaced attribute.
func (e *Element) attrPrefix(space string) string {
	if p, ok := e.prefixes[space]; ok {
		return p
	}
	return builtinPrefixes[space]
}

// collectNamespaces records every prefix used in the subtree.
func (e *Element) collectNamespaces(dst map[string]string) {
	if e.Prefix != "" {
		dst[e.Prefix] = e.Name.Space
	}
	for _, a := range e.Attrs {
		if a.Name.Space == "" || a.Name.Space == NSXML {
			continue
		}
		if p := e.attrPrefix(a.Name.Space); p != "" {
			dst[p] = a.Name.Space
		}
	}
	for _, c := range e.Children {
		c.collectNamespaces(dst)
	}
}

// ParseDocument decodes an XML document into an element tree.
func ParseDocument(data []byte) (*Element, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, &domain.ParseError{Kind: domain.ErrEmptyDocument}
	}

	dec := xml.NewDecoder(bytes.NewReader(data))
	var (
		root   *Element
		stack  []*Element
		scopes = []map[string]string{{}}
		seen   []map[xml.Name]bool
	)

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &domain.ParseError{Kind: domain.ErrMalformedDocument, Err: err}
		}

		switch t := tok.(type) {
		case xml.StartElement:
			scope := scopes[len(scopes)-1]
			el := &Element{Name: t.Name}
			declared := false
			for _, a := range t.Attr {
				switch {
				case a.Name.Space == "xmlns":
					if !declared {
						scope = maps.Clone(scope)
						declared = true
					}
					scope[a.Value] = a.Name.Local
				case a.Name.Space == "" && a.Name.Local == "xmlns":
					if !declared {
						scope = maps.Clone(scope)
						declared = true
					}
					scope[a.Value] = ""
				default:
					el.Attrs = append(el.Attrs, a)
				}
			}
			el.prefixes = scope
			if p, ok := scope[t.Name.Space]; ok {
				el.Prefix = p
			} else {
				el.Prefix = builtinPrefixes[t.Name.Space]
			}

			if len(stack) == 0 {
				if root != nil {
					return nil, &domain.ParseError{
						Kind:    domain.ErrMalformedDocument,
						Element: el.QName(),
						Err:     errors.New("multiple root elements"),
					}
				}
				root = el
			} else {
				parent := stack[len(stack)-1]
				parent.Children = append(parent.Children, el)
				siblings := seen[len(seen)-1]
				if siblings == nil {
					siblings = make(map[xml.Name]bool)
					seen[len(seen)-1] = siblings
				}
				el.repeated = siblings[el.Name]
				siblings[el.Name] = true
			}
			stack = append(stack, el)
			scopes = append(scopes, scope)
			seen = append(seen, nil)

		case xml.EndElement:
			stack = stack[:len(stack)-1]
			scopes = scopes[:len(scopes)-1]
			seen = seen[:len(seen)-1]

		case xml.CharData:
			if len(stack) > 0 {
				stack[len(stack)-1].appendText(string(t))
			} else if strings.TrimSpace(string(t)) != "" {
				return nil, &domain.ParseError{
					Kind: domain.ErrMalformedDocument,
					Err:  errors.New("character data outside root element"),
				}
			}
		}
	}

	if root == nil {
		return nil, &domain.ParseError{Kind: domain.ErrEmptyDocument}
	}
	return root, nil
}

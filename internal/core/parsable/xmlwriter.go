package parsable

import (
	"bytes"
	"encoding/xml"
	"sort"
	"strconv"
	"time"
)

// XMLWriter builds an XML fragment. Element names are written as given, so
// callers use the prefixes their Namespaces method declares. An element that
// receives no content is closed as an empty-element tag.
type XMLWriter struct {
	buf     bytes.Buffer
	pending bool
	names   []string
	// scopes holds the prefix to URI bindings declared on each open element,
	// after the bindings of the enclosing context. "" is the default
	// namespace.
	scopes []map[string]string
}

func newXMLWriter(defaultNS string, namespaces map[string]string) *XMLWriter {
	context := make(map[string]string, len(namespaces)+1)
	for prefix, uri := range namespaces {
		if prefix != "" {
			context[prefix] = uri
		}
	}
	context[""] = defaultNS
	return &XMLWriter{scopes: []map[string]string{context}}
}

// NewFragmentWriter returns a writer for a fragment whose enclosing document
// declares defaultNS as the default namespace and namespaces as prefixes.
func NewFragmentWriter(defaultNS string, namespaces map[string]string) *XMLWriter {
	return newXMLWriter(defaultNS, namespaces)
}

// NewDocumentWriter starts a standalone document: it writes the XML
// declaration and opens the root element with every namespace declared.
// Callers finish the document with Close.
func NewDocumentWriter(root xml.Name, namespaces map[string]string) *XMLWriter {
	w := newXMLWriter(root.Space, namespaces)
	w.buf.WriteString("<?xml version='1.0' encoding='UTF-8'?>")
	w.openRoot(root.Local)
	return w
}

// WriteBody writes p's attributes and children, its preserved elements and
// then whatever extra appends, into the element the writer has open.
func (w *XMLWriter) WriteBody(p XMLParsable, extra func(*XMLWriter)) {
	writeBody(w, p, extra)
}

func (w *XMLWriter) openRoot(local string) {
	context := w.scopes[0]
	w.Open(local)
	w.Attr("xmlns", context[""])

	prefixes := make([]string, 0, len(context))
	for prefix := range context {
		if prefix != "" && prefix != "xml" {
			prefixes = append(prefixes, prefix)
		}
	}
	sort.Strings(prefixes)
	for _, prefix := range prefixes {
		w.Attr("xmlns:"+prefix, context[prefix])
	}
}

// lookup returns the URI prefix is bound to at the current position.
func (w *XMLWriter) lookup(prefix string) (string, bool) {
	if prefix == "xml" {
		return NSXML, true
	}
	for i := len(w.scopes) - 1; i >= 0; i-- {
		if uri, ok := w.scopes[i][prefix]; ok {
			return uri, true
		}
	}
	return "", false
}

// prefixFor returns a prefix bound to uri at the current position, preferring
// the well-known prefix of uri.
func (w *XMLWriter) prefixFor(uri string) (string, bool) {
	if p, ok := builtinPrefixes[uri]; ok {
		if bound, _ := w.lookup(p); bound == uri {
			return p, true
		}
	}
	var found []string
	for _, scope := range w.scopes {
		for p := range scope {
			if p == "" {
				continue
			}
			if bound, _ := w.lookup(p); bound == uri {
				found = append(found, p)
			}
		}
	}
	if len(found) == 0 {
		return "", false
	}
	sort.Strings(found)
	return found[0], true
}

// declare binds prefix to uri on the element just opened, writing the
// declaration unless the binding is already in scope.
func (w *XMLWriter) declare(prefix, uri string) {
	bound, ok := w.lookup(prefix)
	if bound == uri && (ok || uri == "") {
		return
	}
	if prefix == "" {
		w.Attr("xmlns", uri)
	} else {
		w.Attr("xmlns:"+prefix, uri)
	}
	w.scopes[len(w.scopes)-1][prefix] = uri
}

func (w *XMLWriter) flush() {
	if w.pending {
		w.buf.WriteByte('>')
		w.pending = false
	}
}

// Open starts an element.
func (w *XMLWriter) Open(name string) {
	w.flush()
	w.buf.WriteByte('<')
	w.buf.WriteString(name)
	w.pending = true
	w.names = append(w.names, name)
	w.scopes = append(w.scopes, make(map[string]string))
}

// Attr adds an attribute to the element just opened.
func (w *XMLWriter) Attr(name, value string) {
	if !w.pending {
		panic("parsable: attribute " + name + " written after element content")
	}
	w.buf.WriteByte(' ')
	w.buf.WriteString(name)
	w.buf.WriteString("='")
	escape(&w.buf, value)
	w.buf.WriteByte('\'')
}

// AttrIf adds an attribute when value is not empty.
func (w *XMLWriter) AttrIf(name, value string) {
	if value != "" {
		w.Attr(name, value)
	}
}

// BoolAttr adds a "true"/"false" attribute.
func (w *XMLWriter) BoolAttr(name string, value bool) {
	w.Attr(name, strconv.FormatBool(value))
}

// Text writes escaped character data.
func (w *XMLWriter) Text(s string) {
	if s == "" {
		return
	}
	w.flush()
	escape(&w.buf, s)
}

// Close ends the innermost open element.
func (w *XMLWriter) Close() {
	name := w.names[len(w.names)-1]
	w.names = w.names[:len(w.names)-1]
	w.scopes = w.scopes[:len(w.scopes)-1]
	if w.pending {
		w.buf.WriteString("/>")
		w.pending = false
		return
	}
	w.buf.WriteString("</")
	w.buf.WriteString(name)
	w.buf.WriteByte('>')
}

// Element writes a text-only element.
func (w *XMLWriter) Element(name, text string) {
	w.Open(name)
	w.Text(text)
	w.Close()
}

// ElementIf writes a text-only element when text is not empty.
func (w *XMLWriter) ElementIf(name, text string) {
	if text != "" {
		w.Element(name, text)
	}
}

// TimeElementIf writes an RFC 3339 timestamp element when t is set.
func (w *XMLWriter) TimeElementIf(name string, t time.Time) {
	if !t.IsZero() {
		w.Element(name, FormatTime(t))
	}
}

// Child writes a nested entity.
func (w *XMLWriter) Child(p XMLParsable) {
	w.ChildWith(p, nil)
}

// ChildWith writes a nested entity and lets extra append children after the
// entity's own.
func (w *XMLWriter) ChildWith(p XMLParsable, extra func(*XMLWriter)) {
	w.openQualified(p.XMLName())
	writeBody(w, p, extra)
	w.Close()
}

func (w *XMLWriter) openQualified(name xml.Name) {
	if def, _ := w.lookup(""); def == name.Space {
		w.Open(name.Local)
		return
	}
	if prefix, ok := w.prefixFor(name.Space); ok {
		w.Open(prefix + ":" + name.Local)
		return
	}
	w.Open(name.Local)
	w.declare("", name.Space)
}

// Raw writes a decoded element with its source prefixes. A prefix not bound
// to the element's URI where it is written is declared on the element.
func (w *XMLWriter) Raw(el *Element) {
	w.Open(el.QName())
	w.declare(el.Prefix, el.Name.Space)

	for _, a := range el.Attrs {
		name := a.Name.Local
		switch a.Name.Space {
		case "":
		case NSXML:
			name = "xml:" + name
		default:
			prefix := el.attrPrefix(a.Name.Space)
			if prefix == "" || w.declaredElsewhere(prefix, a.Name.Space) {
				prefix = w.freshPrefix()
			}
			w.declare(prefix, a.Name.Space)
			name = prefix + ":" + name
		}
		w.Attr(name, a.Value)
	}

	w.Text(el.segment(0))
	for i, c := range el.Children {
		w.Raw(c)
		w.Text(el.segment(i + 1))
	}
	w.Close()
}

// declaredElsewhere reports whether the open element already declares prefix
// for a URI other than uri.
func (w *XMLWriter) declaredElsewhere(prefix, uri string) bool {
	bound, ok := w.scopes[len(w.scopes)-1][prefix]
	return ok && bound != uri
}

// freshPrefix returns a prefix unbound at the current position.
func (w *XMLWriter) freshPrefix() string {
	for i := 0; ; i++ {
		p := "ns" + strconv.Itoa(i)
		if _, ok := w.lookup(p); !ok {
			return p
		}
	}
}

// Bytes returns the encoded fragment.
func (w *XMLWriter) Bytes() []byte {
	w.flush()
	return w.buf.Bytes()
}

func escape(buf *bytes.Buffer, s string) {
	// EscapeText only fails when the writer does.
	_ = xml.EscapeText(buf, []byte(s))
}

package model

import (
	"encoding/json"
	"encoding/xml"
	"time"

	"github.com/custodia-labs/gdata/internal/core/parsable"
)

// Entry is a single resource. The id is assigned by the server and cannot be
// set by callers; an entry with an id is considered inserted.
type Entry struct {
	parsable.Base

	id          string
	etag        string
	title       string
	summary     string
	rights      string
	content     string
	contentURI  string
	contentType string
	updated     time.Time
	published   time.Time
	edited      time.Time
	categories  []*Category
	links       []*Link
	authors     []*Author
}

// NewEntry creates an empty, uninserted entry.
func NewEntry() *Entry {
	return &Entry{}
}

// BaseEntry returns the generic part of the entry.
func (e *Entry) BaseEntry() *Entry { return e }

// ID returns the server-assigned id, or "" for an uninserted entry.
func (e *Entry) ID() string { return e.id }

// IsInserted reports whether the entry has a server-assigned id.
func (e *Entry) IsInserted() bool { return e.id != "" }

// ETag returns the entry's concurrency token.
func (e *Entry) ETag() string { return e.etag }

// SetETag replaces the concurrency token. Clearing it makes the next update
// or delete unconditional.
func (e *Entry) SetETag(etag string) { e.etag = etag }

// Title returns the entry title.
func (e *Entry) Title() string { return e.title }

// SetTitle sets the entry title.
func (e *Entry) SetTitle(title string) { e.title = title }

// Summary returns the entry summary.
func (e *Entry) Summary() string { return e.summary }

// SetSummary sets the entry summary.
func (e *Entry) SetSummary(summary string) { e.summary = summary }

// Rights returns the entry's rights statement.
func (e *Entry) Rights() string { return e.rights }

// SetRights sets the entry's rights statement.
func (e *Entry) SetRights(rights string) { e.rights = rights }

// Content returns inline content. Empty when the content is out of line.
func (e *Entry) Content() string { return e.content }

// SetContent sets inline text content, replacing any content URI.
func (e *Entry) SetContent(content string) {
	e.content = content
	e.contentURI = ""
	e.contentType = ""
}

// ContentURI returns the location of out-of-line content.
func (e *Entry) ContentURI() string { return e.contentURI }

// SetContentURI points the content at an external resource, replacing
// inline content.
func (e *Entry) SetContentURI(uri, contentType string) {
	e.contentURI = uri
	e.contentType = contentType
	e.content = ""
}

// Updated returns the last update as Unix seconds, or -1 when unset.
func (e *Entry) Updated() int64 { return parsable.Unix(e.updated) }

// Published returns the publication time as Unix seconds, or -1 when unset.
func (e *Entry) Published() int64 { return parsable.Unix(e.published) }

// Edited returns the last edit as Unix seconds, or -1 when unset.
func (e *Entry) Edited() int64 { return parsable.Unix(e.edited) }

// Categories returns the entry's categories.
func (e *Entry) Categories() []*Category {
	return append([]*Category(nil), e.categories...)
}

// AddCategory adds c unless an equal category is present, in which case the
// existing category's label is updated. It reports whether c was added.
func (e *Entry) AddCategory(c *Category) bool {
	for _, existing := range e.categories {
		if existing.Equal(c) {
			if c.Label != "" {
				existing.Label = c.Label
			}
			return false
		}
	}
	e.categories = append(e.categories, c)
	return true
}

// RemoveCategory removes the category equal to c and reports whether one was found.
func (e *Entry) RemoveCategory(c *Category) bool {
	for i, existing := range e.categories {
		if existing.Equal(c) {
			e.categories = append(e.categories[:i], e.categories[i+1:]...)
			return true
		}
	}
	return false
}

// Kind returns the term of the category in KindScheme.
func (e *Entry) Kind() string {
	for _, c := range e.categories {
		if c.Scheme == KindScheme {
			return c.Term
		}
	}
	return ""
}

// Links returns the entry's links.
func (e *Entry) Links() []*Link {
	return append([]*Link(nil), e.links...)
}

// AddLink appends a link. Several links may share a relation.
func (e *Entry) AddLink(l *Link) {
	e.links = append(e.links, l)
}

// RemoveLink removes l and reports whether it was present.
func (e *Entry) RemoveLink(l *Link) bool {
	for i, existing := range e.links {
		if existing == l {
			e.links = append(e.links[:i], e.links[i+1:]...)
			return true
		}
	}
	return false
}

// LookUpLink returns the first link with the given relation, or nil.
func (e *Entry) LookUpLink(relation string) *Link {
	return lookUpLink(e.links, relation)
}

// LookUpLinks returns every link with the given relation.
func (e *Entry) LookUpLinks(relation string) []*Link {
	var out []*Link
	for _, l := range e.links {
		if l.Relation == relation {
			out = append(out, l)
		}
	}
	return out
}

// Authors returns the entry's authors.
func (e *Entry) Authors() []*Author {
	return append([]*Author(nil), e.authors...)
}

// AddAuthor appends an author.
func (e *Entry) AddAuthor(a *Author) {
	e.authors = append(e.authors, a)
}

func lookUpLink(links []*Link, relation string) *Link {
	for _, l := range links {
		if l.Relation == relation {
			return l
		}
	}
	return nil
}

// XMLName implements parsable.XMLParsable.
func (e *Entry) XMLName() xml.Name { return xml.Name{Space: parsable.NSAtom, Local: "entry"} }

// Namespaces implements parsable.Parsable.
func (e *Entry) Namespaces() map[string]string {
	ns := e.Base.Namespaces()
	ns["gd"] = parsable.NSGData
	ns["app"] = parsable.NSApp
	for _, c := range e.categories {
		parsable.MergeNamespaces(ns, c)
	}
	for _, l := range e.links {
		parsable.MergeNamespaces(ns, l)
	}
	for _, a := range e.authors {
		parsable.MergeNamespaces(ns, a)
	}
	return ns
}

// PreParseXML reads the gd:etag attribute.
func (e *Entry) PreParseXML(root *parsable.Element) error {
	e.etag, _ = root.Attr(parsable.NSGData, "etag")
	return nil
}

// ParseXML handles the Atom entry elements.
func (e *Entry) ParseXML(child *parsable.Element) error {
	opts := e.ParseOptions()

	switch {
	case child.Is(parsable.NSAtom, "id"):
		return parsable.Text(child, parsable.NoDupes, &e.id)
	case child.Is(parsable.NSAtom, "title"):
		return parsable.Text(child, parsable.NoDupes, &e.title)
	case child.Is(parsable.NSAtom, "summary"):
		return parsable.Text(child, parsable.NoDupes, &e.summary)
	case child.Is(parsable.NSAtom, "rights"):
		return parsable.Text(child, parsable.NoDupes, &e.rights)
	case child.Is(parsable.NSAtom, "updated"):
		return parsable.Time(child, parsable.NoDupes, &e.updated)
	case child.Is(parsable.NSAtom, "published"):
		return parsable.Time(child, parsable.NoDupes, &e.published)
	case child.Is(parsable.NSApp, "edited"):
		return parsable.Time(child, parsable.NoDupes, &e.edited)
	case child.Is(parsable.NSAtom, "content"):
		if src, ok := child.Attr("", "src"); ok {
			e.contentURI = src
			e.contentType, _ = child.Attr("", "type")
			return nil
		}
		e.content = child.Text
		return nil
	case child.Is(parsable.NSAtom, "category"):
		c := &Category{}
		if err := parsable.DecodeXML(child, c, opts); err != nil {
			return err
		}
		e.AddCategory(c)
		return nil
	case child.Is(parsable.NSAtom, "link"):
		l := &Link{}
		if err := parsable.DecodeXML(child, l, opts); err != nil {
			return err
		}
		e.links = append(e.links, l)
		return nil
	case child.Is(parsable.NSAtom, "author"):
		a := &Author{}
		if err := parsable.DecodeXML(child, a, opts); err != nil {
			return err
		}
		e.authors = append(e.authors, a)
		return nil
	default:
		return e.Base.ParseXML(child)
	}
}

// PreGetXML writes the gd:etag attribute.
func (e *Entry) PreGetXML(w *parsable.XMLWriter) {
	w.AttrIf("gd:etag", e.etag)
}

// GetXML writes the Atom entry elements.
func (e *Entry) GetXML(w *parsable.XMLWriter) {
	w.Open("title")
	w.Attr("type", "text")
	w.Text(e.title)
	w.Close()

	w.ElementIf("id", e.id)
	w.TimeElementIf("updated", e.updated)
	w.TimeElementIf("published", e.published)
	w.TimeElementIf("app:edited", e.edited)

	if e.summary != "" {
		w.Open("summary")
		w.Attr("type", "text")
		w.Text(e.summary)
		w.Close()
	}
	w.ElementIf("rights", e.rights)

	switch {
	case e.contentURI != "":
		w.Open("content")
		w.AttrIf("type", e.contentType)
		w.Attr("src", e.contentURI)
		w.Close()
	case e.content != "":
		w.Open("content")
		w.Attr("type", "text")
		w.Text(e.content)
		w.Close()
	}

	for _, c := range e.categories {
		w.Child(c)
	}
	for _, l := range e.links {
		w.Child(l)
	}
	for _, a := range e.authors {
		w.Child(a)
	}
}

// ParseJSON handles the generic entry members.
func (e *Entry) ParseJSON(member string, raw json.RawMessage) error {
	switch member {
	case "id":
		return parsable.JSONString(member, raw, parsable.NoDupes, &e.id)
	case "title":
		return parsable.JSONString(member, raw, parsable.NoDupes, &e.title)
	case "etag":
		return parsable.JSONString(member, raw, parsable.NoDupes, &e.etag)
	case "updated":
		return parsable.JSONTime(member, raw, parsable.NoDupes, &e.updated)
	case "selfLink":
		var uri string
		if err := parsable.JSONString(member, raw, parsable.NonEmpty, &uri); err != nil {
			return err
		}
		e.links = append(e.links, NewLink(uri, RelSelf), NewLink(uri, RelEdit))
		return nil
	case "kind":
		var kind string
		if err := parsable.JSONString(member, raw, parsable.NonEmpty, &kind); err != nil {
			return err
		}
		e.AddCategory(NewCategory(kind, KindScheme, ""))
		return nil
	default:
		return e.Base.ParseJSON(member, raw)
	}
}

// GetJSON writes the generic entry members.
func (e *Entry) GetJSON(w *parsable.JSONWriter) {
	w.StringIf("kind", e.Kind())
	w.StringIf("id", e.id)
	w.StringIf("etag", e.etag)
	w.StringIf("title", e.title)
	w.TimeIf("updated", e.updated)
	if self := e.LookUpLink(RelSelf); self != nil {
		w.String("selfLink", self.URI)
	}
}

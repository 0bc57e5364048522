package model

import (
	"encoding/json"
	"encoding/xml"
	"strconv"
	"time"

	"github.com/custodia-labs/gdata/internal/core/domain"
	"github.com/custodia-labs/gdata/internal/core/parsable"
)

// Feed is an ordered collection of entries. Feeds are built by decoding a
// response and are read-only afterwards.
type Feed struct {
	parsable.Base

	newEntry EntryFactory

	id            string
	etag          string
	title         string
	subtitle      string
	kind          string
	updated       time.Time
	categories    []*Category
	links         []*Link
	authors       []*Author
	entries       []Entity
	totalResults  int64
	startIndex    int64
	itemsPerPage  int64
	nextPageToken string
}

// NewFeed creates an empty feed whose entries will be decoded with factory.
// A nil factory decodes plain entries.
func NewFeed(factory EntryFactory) *Feed {
	if factory == nil {
		factory = DefaultFactory
	}
	return &Feed{newEntry: factory}
}

// ID returns the feed id.
func (f *Feed) ID() string { return f.id }

// ETag returns the feed's concurrency token.
func (f *Feed) ETag() string { return f.etag }

// Title returns the feed title.
func (f *Feed) Title() string { return f.title }

// Subtitle returns the feed subtitle.
func (f *Feed) Subtitle() string { return f.subtitle }

// Kind returns the JSON kind of the collection.
func (f *Feed) Kind() string { return f.kind }

// Updated returns the last update as Unix seconds, or -1 when unset.
func (f *Feed) Updated() int64 { return parsable.Unix(f.updated) }

// Categories returns the feed categories.
func (f *Feed) Categories() []*Category { return append([]*Category(nil), f.categories...) }

// Links returns the feed links.
func (f *Feed) Links() []*Link { return append([]*Link(nil), f.links...) }

// Authors returns the feed authors.
func (f *Feed) Authors() []*Author { return append([]*Author(nil), f.authors...) }

// LookUpLink returns the first link with the given relation, or nil.
func (f *Feed) LookUpLink(relation string) *Link { return lookUpLink(f.links, relation) }

// Entries returns the entries in server order.
func (f *Feed) Entries() []Entity { return append([]Entity(nil), f.entries...) }

// LookUpEntry returns the entry with the given id, or nil.
func (f *Feed) LookUpEntry(id string) Entity {
	for _, e := range f.entries {
		if e.BaseEntry().ID() == id {
			return e
		}
	}
	return nil
}

// TotalResults returns openSearch:totalResults, or 0 when absent.
func (f *Feed) TotalResults() int64 { return f.totalResults }

// StartIndex returns openSearch:startIndex, or 0 when absent.
func (f *Feed) StartIndex() int64 { return f.startIndex }

// ItemsPerPage returns openSearch:itemsPerPage, or 0 when absent.
func (f *Feed) ItemsPerPage() int64 { return f.itemsPerPage }

// NextPageToken returns the continuation token of a JSON feed.
func (f *Feed) NextPageToken() string { return f.nextPageToken }

// XMLName implements parsable.XMLParsable.
func (f *Feed) XMLName() xml.Name { return xml.Name{Space: parsable.NSAtom, Local: "feed"} }

// Namespaces implements parsable.Parsable.
func (f *Feed) Namespaces() map[string]string {
	ns := f.Base.Namespaces()
	ns["gd"] = parsable.NSGData
	ns["openSearch"] = parsable.NSOpenSearch
	for _, c := range f.categories {
		parsable.MergeNamespaces(ns, c)
	}
	for _, l := range f.links {
		parsable.MergeNamespaces(ns, l)
	}
	for _, e := range f.entries {
		parsable.MergeNamespaces(ns, e)
	}
	return ns
}

// PreParseXML reads the gd:etag attribute.
func (f *Feed) PreParseXML(root *parsable.Element) error {
	f.etag, _ = root.Attr(parsable.NSGData, "etag")
	return nil
}

// ParseXML handles the Atom feed elements.
func (f *Feed) ParseXML(child *parsable.Element) error {
	opts := f.ParseOptions()

	switch {
	case child.Is(parsable.NSAtom, "entry"):
		e := f.newEntry()
		if err := parsable.DecodeXML(child, e, opts); err != nil {
			return err
		}
		f.entries = append(f.entries, e)
		return nil
	case child.Is(parsable.NSAtom, "id"):
		return parsable.Text(child, parsable.NoDupes, &f.id)
	case child.Is(parsable.NSAtom, "title"):
		return parsable.Text(child, parsable.NoDupes, &f.title)
	case child.Is(parsable.NSAtom, "subtitle"):
		return parsable.Text(child, parsable.NoDupes, &f.subtitle)
	case child.Is(parsable.NSAtom, "updated"):
		return parsable.Time(child, parsable.NoDupes, &f.updated)
	case child.Is(parsable.NSAtom, "category"):
		c := &Category{}
		if err := parsable.DecodeXML(child, c, opts); err != nil {
			return err
		}
		f.categories = append(f.categories, c)
		return nil
	case child.Is(parsable.NSAtom, "link"):
		l := &Link{}
		if err := parsable.DecodeXML(child, l, opts); err != nil {
			return err
		}
		f.links = append(f.links, l)
		return nil
	case child.Is(parsable.NSAtom, "author"):
		a := &Author{}
		if err := parsable.DecodeXML(child, a, opts); err != nil {
			return err
		}
		f.authors = append(f.authors, a)
		return nil
	case child.Is(parsable.NSOpenSearch, "totalResults"):
		return parsable.Int(child, parsable.NonEmpty, &f.totalResults)
	case child.Is(parsable.NSOpenSearch, "startIndex"):
		return parsable.Int(child, parsable.NonEmpty, &f.startIndex)
	case child.Is(parsable.NSOpenSearch, "itemsPerPage"):
		return parsable.Int(child, parsable.NonEmpty, &f.itemsPerPage)
	default:
		return f.Base.ParseXML(child)
	}
}

// PostParseXML requires the Atom feed metadata.
func (f *Feed) PostParseXML() error {
	if err := parsable.Require(f.id != "", "feed", "id"); err != nil {
		return err
	}
	if err := parsable.Require(f.title != "", "feed", "title"); err != nil {
		return err
	}
	return parsable.Require(!f.updated.IsZero(), "feed", "updated")
}

// PreGetXML writes the gd:etag attribute.
func (f *Feed) PreGetXML(w *parsable.XMLWriter) {
	w.AttrIf("gd:etag", f.etag)
}

// GetXML writes the feed metadata followed by the entries.
func (f *Feed) GetXML(w *parsable.XMLWriter) {
	w.Element("title", f.title)
	w.ElementIf("subtitle", f.subtitle)
	w.ElementIf("id", f.id)
	w.TimeElementIf("updated", f.updated)
	for _, c := range f.categories {
		w.Child(c)
	}
	for _, l := range f.links {
		w.Child(l)
	}
	for _, a := range f.authors {
		w.Child(a)
	}
	if f.totalResults > 0 {
		w.Element("openSearch:totalResults", itoa(f.totalResults))
	}
	if f.startIndex > 0 {
		w.Element("openSearch:startIndex", itoa(f.startIndex))
	}
	if f.itemsPerPage > 0 {
		w.Element("openSearch:itemsPerPage", itoa(f.itemsPerPage))
	}
	for _, e := range f.entries {
		w.Child(e)
	}
}

// ParseJSON handles the collection members of a JSON feed.
func (f *Feed) ParseJSON(member string, raw json.RawMessage) error {
	switch member {
	case "items":
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err != nil {
			return &domain.ParseError{Kind: domain.ErrInvalidFormat, Property: member, Err: err}
		}
		for _, item := range items {
			e := f.newEntry()
			if err := parsable.FromJSON(item, e, f.ParseOptions()); err != nil {
				return err
			}
			f.entries = append(f.entries, e)
		}
		return nil
	case "kind":
		return parsable.JSONString(member, raw, parsable.NoDupes, &f.kind)
	case "etag":
		return parsable.JSONString(member, raw, parsable.NoDupes, &f.etag)
	case "id":
		return parsable.JSONString(member, raw, parsable.NoDupes, &f.id)
	case "title":
		return parsable.JSONString(member, raw, parsable.NoDupes, &f.title)
	case "updated":
		return parsable.JSONTime(member, raw, parsable.NoDupes, &f.updated)
	case "nextPageToken":
		return parsable.JSONString(member, raw, parsable.NoDupes, &f.nextPageToken)
	case "selfLink":
		var uri string
		if err := parsable.JSONString(member, raw, parsable.NonEmpty, &uri); err != nil {
			return err
		}
		f.links = append(f.links, NewLink(uri, RelSelf))
		return nil
	default:
		return f.Base.ParseJSON(member, raw)
	}
}

// GetJSON writes the collection members.
func (f *Feed) GetJSON(w *parsable.JSONWriter) {
	w.StringIf("kind", f.kind)
	w.StringIf("etag", f.etag)
	w.StringIf("id", f.id)
	w.StringIf("title", f.title)
	w.TimeIf("updated", f.updated)
	if self := f.LookUpLink(RelSelf); self != nil {
		w.String("selfLink", self.URI)
	}
	w.StringIf("nextPageToken", f.nextPageToken)
	items := make([]parsable.JSONParsable, 0, len(f.entries))
	for _, e := range f.entries {
		items = append(items, e)
	}
	w.Array("items", items)
}

func itoa(n int64) string {
	return strconv.FormatInt(n, 10)
}

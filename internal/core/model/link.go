package model

import (
	"encoding/xml"
	"strconv"

	"github.com/custodia-labs/gdata/internal/core/parsable"
)

// Link relation types.
const (
	RelAlternate = "alternate"
	RelSelf      = "self"
	RelEdit      = "edit"
	RelEditMedia = "edit-media"
	RelNext      = "next"
	RelPrevious  = "previous"
	RelRelated   = "related"
	RelFeed      = "http://schemas.google.com/g/2005#feed"
	RelPost      = "http://schemas.google.com/g/2005#post"
	RelBatch     = "http://schemas.google.com/g/2005#batch"
)

// Link is an atom:link. Relation defaults to "alternate" when the element
// carries no rel attribute.
type Link struct {
	parsable.Base

	URI         string
	Relation    string
	ContentType string
	Language    string
	Title       string
	// Length is the resource size in bytes; zero means unknown.
	Length int64
}

// NewLink creates a link with the given target and relation.
func NewLink(uri, relation string) *Link {
	return &Link{URI: uri, Relation: relation}
}

// XMLName implements parsable.XMLParsable.
func (l *Link) XMLName() xml.Name { return xml.Name{Space: parsable.NSAtom, Local: "link"} }

// PreParseXML reads the link attributes.
func (l *Link) PreParseXML(root *parsable.Element) error {
	uri, err := parsable.RequireAttr(root, "", "href")
	if err != nil {
		return err
	}
	l.URI = uri
	l.Relation = RelAlternate
	if rel, ok := root.Attr("", "rel"); ok && rel != "" {
		l.Relation = rel
	}
	l.ContentType, _ = root.Attr("", "type")
	l.Language, _ = root.Attr("", "hreflang")
	l.Title, _ = root.Attr("", "title")
	return parsable.AttrInt(root, "", "length", &l.Length)
}

// PreGetXML writes the link attributes.
func (l *Link) PreGetXML(w *parsable.XMLWriter) {
	w.Attr("href", l.URI)
	rel := l.Relation
	if rel == "" {
		rel = RelAlternate
	}
	w.Attr("rel", rel)
	w.AttrIf("type", l.ContentType)
	w.AttrIf("hreflang", l.Language)
	w.AttrIf("title", l.Title)
	if l.Length > 0 {
		w.Attr("length", strconv.FormatInt(l.Length, 10))
	}
}

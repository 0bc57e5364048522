package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/gdata/internal/core/domain"
	"github.com/custodia-labs/gdata/internal/core/parsable"
)

const entryXML = `<?xml version="1.0" encoding="UTF-8"?>
<entry xmlns="http://www.w3.org/2005/Atom" xmlns:gd="http://schemas.google.com/g/2005"
       xmlns:app="http://www.w3.org/2007/app" gd:etag="W/&quot;CUMBRHo_fip7ImA9WxRbGU0.&quot;">
  <id>http://example.com/feeds/default/private/full/abc</id>
  <updated>2009-01-23T14:34:02Z</updated>
  <published>2009-01-20T10:00:00Z</published>
  <app:edited>2009-01-23T14:34:02Z</app:edited>
  <title type="text">Tennis with Beth</title>
  <summary>Meet for a quick lesson</summary>
  <content type="text">Bring racquets</content>
  <category scheme="http://schemas.google.com/g/2005#kind" term="http://schemas.google.com/g/2005#event"/>
  <link rel="edit" href="http://example.com/feeds/default/private/full/abc"/>
  <link rel="alternate" type="text/html" href="http://example.com/event?eid=abc"/>
  <link href="http://example.com/other"/>
  <author><name>Jo March</name><email>jo@example.com</email></author>
</entry>`

func TestEntry_FromXML(t *testing.T) {
	e := NewEntry()
	require.NoError(t, parsable.FromXML([]byte(entryXML), e, parsable.Options{}))

	assert.Equal(t, "http://example.com/feeds/default/private/full/abc", e.ID())
	assert.True(t, e.IsInserted())
	assert.Equal(t, `W/"CUMBRHo_fip7ImA9WxRbGU0."`, e.ETag())
	assert.Equal(t, "Tennis with Beth", e.Title())
	assert.Equal(t, "Meet for a quick lesson", e.Summary())
	assert.Equal(t, "Bring racquets", e.Content())
	assert.Equal(t, int64(1232721242), e.Updated())
	assert.Equal(t, int64(1232445600), e.Published())
	assert.Equal(t, int64(1232721242), e.Edited())
	assert.Equal(t, "http://schemas.google.com/g/2005#event", e.Kind())

	require.Len(t, e.Links(), 3)
	assert.Equal(t, "http://example.com/feeds/default/private/full/abc", e.LookUpLink(RelEdit).URI)
	assert.Len(t, e.LookUpLinks(RelAlternate), 2)
	assert.Equal(t, "text/html", e.LookUpLink(RelAlternate).ContentType)

	require.Len(t, e.Authors(), 1)
	assert.Equal(t, "Jo March", e.Authors()[0].Name)
	assert.Equal(t, "jo@example.com", e.Authors()[0].Email)
}

func TestEntry_XMLRoundTrip(t *testing.T) {
	first := NewEntry()
	require.NoError(t, parsable.FromXML([]byte(entryXML), first, parsable.Options{}))

	encoded := parsable.ToXML(first)
	second := NewEntry()
	require.NoError(t, parsable.FromXML(encoded, second, parsable.Options{}))

	assert.Equal(t, first.ID(), second.ID())
	assert.Equal(t, first.ETag(), second.ETag())
	assert.Equal(t, first.Title(), second.Title())
	assert.Equal(t, first.Summary(), second.Summary())
	assert.Equal(t, first.Content(), second.Content())
	assert.Equal(t, first.Updated(), second.Updated())
	assert.Equal(t, first.Published(), second.Published())
	assert.Equal(t, first.Edited(), second.Edited())
	assert.Equal(t, first.Categories(), second.Categories())
	assert.Len(t, second.Links(), 3)
	assert.Equal(t, string(encoded), string(parsable.ToXML(second)))
}

func TestEntry_NewEntryToXML(t *testing.T) {
	e := NewEntry()
	e.SetTitle("Hello")

	assert.Equal(t, "<?xml version='1.0' encoding='UTF-8'?>"+
		"<entry xmlns='http://www.w3.org/2005/Atom' xmlns:app='http://www.w3.org/2007/app' xmlns:gd='http://schemas.google.com/g/2005'>"+
		"<title type='text'>Hello</title></entry>", string(parsable.ToXML(e)))
	assert.False(t, e.IsInserted())
	assert.Equal(t, parsable.Unset, e.Updated())
}

func TestEntry_UnknownElementTolerance(t *testing.T) {
	doc := `<entry xmlns="http://www.w3.org/2005/Atom" xmlns:x="urn:x">
		<id>urn:1</id>
		<x:rating value="5"/>
		<title>Rated</title>
		<futureAtomThing/>
	</entry>`

	e := NewEntry()
	require.NoError(t, parsable.FromXML([]byte(doc), e, parsable.Options{}))
	assert.Equal(t, "urn:1", e.ID())
	assert.Equal(t, "Rated", e.Title())

	out := string(parsable.ToXML(e))
	assert.Contains(t, out, "xmlns:x='urn:x'")
	assert.Contains(t, out, "<x:rating value='5'/>")
	assert.Contains(t, out, "<futureAtomThing/>")

	err := parsable.FromXML([]byte(doc), NewEntry(), parsable.Options{Strict: true})
	assert.ErrorIs(t, err, domain.ErrUnhandledElement)
}

func TestEntry_MissingRequiredChildFields(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"link without href", `<entry xmlns="http://www.w3.org/2005/Atom"><link rel="self"/></entry>`},
		{"category without term", `<entry xmlns="http://www.w3.org/2005/Atom"><category scheme="s"/></entry>`},
		{"author without name", `<entry xmlns="http://www.w3.org/2005/Atom"><author><email>a@b</email></author></entry>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := parsable.FromXML([]byte(tt.doc), NewEntry(), parsable.Options{})
			assert.ErrorIs(t, err, domain.ErrRequiredFieldMissing)
		})
	}
}

func TestEntry_Categories(t *testing.T) {
	e := NewEntry()

	assert.True(t, e.AddCategory(NewCategory("work", "urn:s", "")))
	assert.False(t, e.AddCategory(NewCategory("work", "urn:s", "Work")))
	assert.True(t, e.AddCategory(NewCategory("work", "urn:other", "")))

	cats := e.Categories()
	require.Len(t, cats, 2)
	assert.Equal(t, "Work", cats[0].Label)

	assert.True(t, e.RemoveCategory(NewCategory("work", "urn:s", "ignored")))
	assert.False(t, e.RemoveCategory(NewCategory("work", "urn:s", "")))
	assert.Len(t, e.Categories(), 1)
}

func TestEntry_Links(t *testing.T) {
	e := NewEntry()
	a := NewLink("http://a", RelAlternate)
	b := NewLink("http://b", RelAlternate)
	e.AddLink(a)
	e.AddLink(b)

	assert.Equal(t, a, e.LookUpLink(RelAlternate))
	assert.Nil(t, e.LookUpLink(RelEdit))
	assert.True(t, e.RemoveLink(a))
	assert.False(t, e.RemoveLink(a))
	assert.Equal(t, b, e.LookUpLink(RelAlternate))
}

func TestEntry_Content(t *testing.T) {
	e := NewEntry()
	e.SetContent("inline")
	e.SetContentURI("http://example.com/media", "image/png")

	assert.Empty(t, e.Content())
	assert.Equal(t, "http://example.com/media", e.ContentURI())
	assert.Contains(t, string(parsable.ToXML(e)), "<content type='image/png' src='http://example.com/media'/>")
}

func TestEntry_JSON(t *testing.T) {
	doc := `{
		"kind": "tasks#task",
		"id": "MTAx",
		"etag": "\"abc\"",
		"title": "Write report",
		"updated": "2010-10-15T09:00:00.000Z",
		"selfLink": "https://www.googleapis.com/tasks/v1/lists/L/tasks/MTAx",
		"position": "00000000000000000001"
	}`

	e := NewEntry()
	require.NoError(t, parsable.FromJSON([]byte(doc), e, parsable.Options{}))

	assert.Equal(t, "MTAx", e.ID())
	assert.Equal(t, `"abc"`, e.ETag())
	assert.Equal(t, "Write report", e.Title())
	assert.Equal(t, int64(1287133200), e.Updated())
	assert.Equal(t, "tasks#task", e.Kind())
	assert.Equal(t, "https://www.googleapis.com/tasks/v1/lists/L/tasks/MTAx", e.LookUpLink(RelSelf).URI)
	assert.Equal(t, "https://www.googleapis.com/tasks/v1/lists/L/tasks/MTAx", e.LookUpLink(RelEdit).URI)

	assert.JSONEq(t, `{
		"kind": "tasks#task",
		"id": "MTAx",
		"etag": "\"abc\"",
		"title": "Write report",
		"updated": "2010-10-15T09:00:00Z",
		"selfLink": "https://www.googleapis.com/tasks/v1/lists/L/tasks/MTAx",
		"position": "00000000000000000001"
	}`, string(parsable.ToJSON(e)))
}

func TestNewLike(t *testing.T) {
	orig := NewEntry()
	orig.SetTitle("x")

	fresh := NewLike(orig)

	assert.IsType(t, &Entry{}, fresh)
	assert.Empty(t, fresh.BaseEntry().Title())
	assert.NotSame(t, orig, fresh)
}

func TestEntry_PreservedElementNamespaces(t *testing.T) {
	tests := []struct {
		name  string
		doc   string
		space string
		find  func(root *parsable.Element) *parsable.Element
	}{
		{
			name: "second prefix for the gd namespace",
			doc: `<entry xmlns="http://www.w3.org/2005/Atom" xmlns:gd="http://schemas.google.com/g/2005"
				xmlns:g="http://schemas.google.com/g/2005" gd:etag="W/1"><id>x</id><g:extra>x</g:extra></entry>`,
			space: parsable.NSGData,
			find:  func(root *parsable.Element) *parsable.Element { return root.Child(parsable.NSGData, "extra") },
		},
		{
			name: "gd prefix bound to another namespace",
			doc: `<entry xmlns="http://www.w3.org/2005/Atom" xmlns:gd="urn:other"
				xmlns:g="http://schemas.google.com/g/2005" g:etag="W/1"><id>x</id><gd:extra>x</gd:extra></entry>`,
			space: "urn:other",
			find:  func(root *parsable.Element) *parsable.Element { return root.Child("urn:other", "extra") },
		},
		{
			name: "gd prefix rebound inside a child entity",
			doc: `<entry xmlns="http://www.w3.org/2005/Atom" xmlns:gd="http://schemas.google.com/g/2005" gd:etag="W/1">
				<id>x</id><author><name>Jo</name><gd:extra xmlns:gd="urn:other" gd:flag="1">x</gd:extra></author></entry>`,
			space: "urn:other",
			find: func(root *parsable.Element) *parsable.Element {
				author := root.Child(parsable.NSAtom, "author")
				if author == nil {
					return nil
				}
				return author.Child("urn:other", "extra")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Namespace maps iterate in random order; repeat to catch
			// order-dependent output.
			for i := 0; i < 10; i++ {
				e := NewEntry()
				require.NoError(t, parsable.FromXML([]byte(tt.doc), e, parsable.Options{}))
				out := parsable.ToXML(e)

				root, err := parsable.ParseDocument(out)
				require.NoError(t, err, string(out))

				etag, ok := root.Attr(parsable.NSGData, "etag")
				assert.True(t, ok, string(out))
				assert.Equal(t, "W/1", etag)

				extra := tt.find(root)
				require.NotNil(t, extra, "extra element lost its namespace: %s", out)
				assert.Equal(t, tt.space, extra.Name.Space)
				assert.Equal(t, "x", extra.Text)

				again := NewEntry()
				require.NoError(t, parsable.FromXML(out, again, parsable.Options{}))
				assert.Equal(t, string(out), string(parsable.ToXML(again)))
			}
		})
	}
}

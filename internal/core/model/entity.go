package model

import (
	"reflect"

	"github.com/custodia-labs/gdata/internal/core/parsable"
)

// Entity is any entry kind: Entry itself or a type embedding it.
type Entity interface {
	parsable.XMLParsable
	parsable.JSONParsable
	BaseEntry() *Entry
}

// EntryFactory creates an empty entity of a concrete kind, for decoding.
type EntryFactory func() Entity

// DefaultFactory creates plain entries.
func DefaultFactory() Entity { return NewEntry() }

// NewLike returns a new, empty entity of the same concrete kind as e.
// The kind's zero value must be usable.
func NewLike(e Entity) Entity {
	t := reflect.TypeOf(e)
	if t.Kind() != reflect.Pointer {
		panic("model: entity " + t.String() + " is not a pointer")
	}
	return reflect.New(t.Elem()).Interface().(Entity)
}

// FactoryFor returns a factory producing entities of e's kind.
func FactoryFor(e Entity) EntryFactory {
	return func() Entity { return NewLike(e) }
}

// Entries returns the feed's entries of kind T, skipping any other kind.
func Entries[T Entity](f *Feed) []T {
	out := make([]T, 0, len(f.entries))
	for _, e := range f.entries {
		if t, ok := e.(T); ok {
			out = append(out, t)
		}
	}
	return out
}

package query

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/gdata/internal/core/parsable"
)

// Policy decides whether a boolean parameter is written when false.
type Policy int

const (
	// EmitIfSet writes the parameter only when it is true.
	EmitIfSet Policy = iota
	// AlwaysEmit writes "true" or "false".
	AlwaysEmit
)

// ParamWriter appends query parameters to a URI in the order they are written.
type ParamWriter struct {
	b     strings.Builder
	first bool
}

// NewParamWriter starts a parameter list on uri. The first parameter is
// joined with '?' unless uri already has a query.
func NewParamWriter(uri string) *ParamWriter {
	w := &ParamWriter{}
	w.b.WriteString(uri)
	w.first = !strings.Contains(uri, "?")
	return w
}

func (w *ParamWriter) write(name, value string) {
	if w.first {
		w.b.WriteByte('?')
		w.first = false
	} else {
		w.b.WriteByte('&')
	}
	w.b.WriteString(url.QueryEscape(name))
	w.b.WriteByte('=')
	w.b.WriteString(url.QueryEscape(value))
}

// String writes a parameter when value is not empty.
func (w *ParamWriter) String(name, value string) {
	if value != "" {
		w.write(name, value)
	}
}

// Int writes a parameter when v is positive.
func (w *ParamWriter) Int(name string, v int64) {
	if v > 0 {
		w.write(name, strconv.FormatInt(v, 10))
	}
}

// Bool writes a boolean parameter according to policy.
func (w *ParamWriter) Bool(name string, v bool, policy Policy) {
	if v || policy == AlwaysEmit {
		w.write(name, strconv.FormatBool(v))
	}
}

// Time writes an RFC 3339 parameter when t is set.
func (w *ParamWriter) Time(name string, t time.Time) {
	if !t.IsZero() {
		w.write(name, parsable.FormatTime(t))
	}
}

// URI returns the finished URI.
func (w *ParamWriter) URI() string {
	return w.b.String()
}

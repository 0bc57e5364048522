package parsable

import (
	"bytes"
	"encoding/json"
	"strconv"
	"time"
)

// JSONWriter builds a JSON object member by member, preserving the order
// members are written in.
type JSONWriter struct {
	buf   bytes.Buffer
	count []int
}

func (w *JSONWriter) begin(delim byte) {
	w.buf.WriteByte(delim)
	w.count = append(w.count, 0)
}

func (w *JSONWriter) end(delim byte) {
	w.count = w.count[:len(w.count)-1]
	w.buf.WriteByte(delim)
}

func (w *JSONWriter) separator() {
	top := len(w.count) - 1
	if w.count[top] > 0 {
		w.buf.WriteByte(',')
	}
	w.count[top]++
}

func (w *JSONWriter) key(name string) {
	w.separator()
	w.value(name)
	w.buf.WriteByte(':')
}

func (w *JSONWriter) value(v any) {
	// Marshalling strings, bools and numbers cannot fail.
	b, _ := json.Marshal(v)
	w.buf.Write(b)
}

// String writes a string member.
func (w *JSONWriter) String(name, v string) {
	w.key(name)
	w.value(v)
}

// StringIf writes a string member when v is not empty.
func (w *JSONWriter) StringIf(name, v string) {
	if v != "" {
		w.String(name, v)
	}
}

// Bool writes a boolean member.
func (w *JSONWriter) Bool(name string, v bool) {
	w.key(name)
	w.buf.WriteString(strconv.FormatBool(v))
}

// Int writes an integer member.
func (w *JSONWriter) Int(name string, v int64) {
	w.key(name)
	w.buf.WriteString(strconv.FormatInt(v, 10))
}

// TimeIf writes an RFC 3339 member when t is set.
func (w *JSONWriter) TimeIf(name string, t time.Time) {
	if !t.IsZero() {
		w.String(name, FormatTime(t))
	}
}

// Raw writes a member whose value is already encoded.
func (w *JSONWriter) Raw(name string, raw json.RawMessage) {
	w.key(name)
	w.buf.Write(raw)
}

// Object writes a nested entity as a member.
func (w *JSONWriter) Object(name string, p JSONParsable) {
	w.key(name)
	w.begin('{')
	writeMembers(w, p)
	w.end('}')
}

// Array writes a member holding one object per entity.
func (w *JSONWriter) Array(name string, ps []JSONParsable) {
	w.key(name)
	w.begin('[')
	for _, p := range ps {
		w.separator()
		w.begin('{')
		writeMembers(w, p)
		w.end('}')
	}
	w.end(']')
}

// Bytes returns the encoded object.
func (w *JSONWriter) Bytes() []byte {
	return w.buf.Bytes()
}

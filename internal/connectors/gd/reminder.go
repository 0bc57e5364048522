package gd

import (
	"encoding/xml"
	"strconv"
	"time"

	"github.com/custodia-labs/gdata/internal/core/parsable"
)

// Reminder methods.
const (
	ReminderAlert = "alert"
	ReminderEmail = "email"
	ReminderSMS   = "sms"
)

// Reminder is a gd:reminder. It fires either at an absolute time or a
// number of minutes before the event it belongs to; the server accepts days
// and hours too, which are converted to minutes on parse.
type Reminder struct {
	parsable.Base

	Method   string
	absolute time.Time
	relative int64
}

// NewAbsoluteReminder creates a reminder firing at t.
func NewAbsoluteReminder(method string, t time.Time) *Reminder {
	return &Reminder{Method: method, absolute: t, relative: -1}
}

// NewRelativeReminder creates a reminder firing minutes before the event.
func NewRelativeReminder(method string, minutes int64) *Reminder {
	return &Reminder{Method: method, relative: minutes}
}

// AbsoluteTime returns the firing time as Unix seconds, or -1 when the
// reminder is relative.
func (r *Reminder) AbsoluteTime() int64 { return parsable.Unix(r.absolute) }

// IsAbsolute reports whether the reminder fires at a fixed time.
func (r *Reminder) IsAbsolute() bool { return !r.absolute.IsZero() }

// RelativeTime returns the lead time in minutes, or -1 when unset.
func (r *Reminder) RelativeTime() int64 {
	if r.IsAbsolute() {
		return -1
	}
	return r.relative
}

// XMLName implements parsable.XMLParsable.
func (r *Reminder) XMLName() xml.Name {
	return xml.Name{Space: parsable.NSGData, Local: "reminder"}
}

// Namespaces implements parsable.Parsable.
func (r *Reminder) Namespaces() map[string]string {
	ns := r.Base.Namespaces()
	ns["gd"] = parsable.NSGData
	return ns
}

// PreParseXML reads the reminder attributes. days takes precedence over
// hours, which takes precedence over minutes.
func (r *Reminder) PreParseXML(root *parsable.Element) error {
	if err := parsable.AttrTime(root, "", "absoluteTime", &r.absolute); err != nil {
		return err
	}

	r.relative = -1
	for _, unit := range []struct {
		attr   string
		factor int64
	}{{"days", 24 * 60}, {"hours", 60}, {"minutes", 1}} {
		if _, ok := root.Attr("", unit.attr); !ok {
			continue
		}
		var n int64
		if err := parsable.AttrInt(root, "", unit.attr, &n); err != nil {
			return err
		}
		r.relative = n * unit.factor
		break
	}
	if r.IsAbsolute() {
		r.relative = -1
	}

	r.Method, _ = root.Attr("", "method")
	return nil
}

// PreGetXML writes the reminder attributes.
func (r *Reminder) PreGetXML(w *parsable.XMLWriter) {
	switch {
	case r.IsAbsolute():
		w.Attr("absoluteTime", parsable.FormatTime(r.absolute))
	case r.relative >= 0:
		w.Attr("minutes", strconv.FormatInt(r.relative, 10))
	}
	w.AttrIf("method", r.Method)
}

package gd

import (
	"encoding/xml"
	"strings"
	"time"

	"github.com/custodia-labs/gdata/internal/core/domain"
	"github.com/custodia-labs/gdata/internal/core/parsable"
)

const dateLayout = "2006-01-02"

// When is a gd:when: the span of an event occurrence and its reminders.
// All-day spans carry dates without a time of day.
type When struct {
	parsable.Base

	Start       time.Time
	End         time.Time
	IsDate      bool
	ValueString string
	reminders   []*Reminder
}

// NewWhen creates a span. A zero end leaves the span open.
func NewWhen(start, end time.Time, isDate bool) *When {
	return &When{Start: start, End: end, IsDate: isDate}
}

// Reminders returns the span's reminders.
func (w *When) Reminders() []*Reminder {
	return append([]*Reminder(nil), w.reminders...)
}

// AddReminder appends a reminder.
func (w *When) AddReminder(r *Reminder) {
	w.reminders = append(w.reminders, r)
}

// XMLName implements parsable.XMLParsable.
func (w *When) XMLName() xml.Name {
	return xml.Name{Space: parsable.NSGData, Local: "when"}
}

// Namespaces implements parsable.Parsable.
func (w *When) Namespaces() map[string]string {
	ns := w.Base.Namespaces()
	ns["gd"] = parsable.NSGData
	return ns
}

// PreParseXML reads the span attributes.
func (w *When) PreParseXML(root *parsable.Element) error {
	start, err := parsable.RequireAttr(root, "", "startTime")
	if err != nil {
		return err
	}
	if w.Start, w.IsDate, err = parseDateOrTime(root, "startTime", start); err != nil {
		return err
	}
	if end, ok := root.Attr("", "endTime"); ok {
		if w.End, _, err = parseDateOrTime(root, "endTime", end); err != nil {
			return err
		}
	}
	w.ValueString, _ = root.Attr("", "valueString")
	return nil
}

// ParseXML collects nested reminders.
func (w *When) ParseXML(child *parsable.Element) error {
	if child.Is(parsable.NSGData, "reminder") {
		r := &Reminder{}
		if err := parsable.DecodeXML(child, r, w.ParseOptions()); err != nil {
			return err
		}
		w.reminders = append(w.reminders, r)
		return nil
	}
	return w.Base.ParseXML(child)
}

// PreGetXML writes the span attributes.
func (w *When) PreGetXML(xw *parsable.XMLWriter) {
	xw.Attr("startTime", w.format(w.Start))
	if !w.End.IsZero() {
		xw.Attr("endTime", w.format(w.End))
	}
	xw.AttrIf("valueString", w.ValueString)
}

// GetXML writes the reminders.
func (w *When) GetXML(xw *parsable.XMLWriter) {
	for _, r := range w.reminders {
		xw.Child(r)
	}
}

func (w *When) format(t time.Time) string {
	if w.IsDate {
		return t.Format(dateLayout)
	}
	return parsable.FormatTime(t)
}

func parseDateOrTime(el *parsable.Element, attr, value string) (time.Time, bool, error) {
	value = strings.TrimSpace(value)
	if t, err := time.Parse(dateLayout, value); err == nil {
		return t, true, nil
	}
	t, err := parsable.ParseTime(value)
	if err != nil {
		return time.Time{}, false, &domain.ParseError{
			Kind:     domain.ErrInvalidFormat,
			Element:  el.QName(),
			Property: attr,
			Value:    value,
			Err:      err,
		}
	}
	return t, false, nil
}

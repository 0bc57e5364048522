package calendar

import (
	"github.com/custodia-labs/gdata/internal/core/model"
	"github.com/custodia-labs/gdata/internal/core/parsable"
)

// NSCal is the calendar extension namespace.
const NSCal = "http://schemas.google.com/gCal/2005"

func init() {
	parsable.RegisterNamespace("gCal", NSCal)
}

// Access levels a user can hold on a calendar.
const (
	AccessNone        = "none"
	AccessRead        = "read"
	AccessFreeBusy    = "freebusy"
	AccessEditor      = "editor"
	AccessOwner       = "owner"
	AccessRoot        = "root"
	AccessContributor = "contributor"
)

// Calendar is a calendar entry. Its content URI is the calendar's event
// feed.
type Calendar struct {
	model.Entry

	TimeZone    string
	Color       string
	AccessLevel string
	Hidden      bool
	Selected    bool
}

// NewCalendar creates an uninserted calendar.
func NewCalendar() *Calendar {
	return &Calendar{}
}

// Namespaces implements parsable.Parsable.
func (c *Calendar) Namespaces() map[string]string {
	ns := c.Entry.Namespaces()
	ns["gCal"] = NSCal
	return ns
}

// ParseXML handles the gCal elements and defers the rest to the entry.
func (c *Calendar) ParseXML(child *parsable.Element) error {
	if child.Name.Space != NSCal {
		return c.Entry.ParseXML(child)
	}

	switch child.Name.Local {
	case "timezone":
		return valueAttr(child, &c.TimeZone)
	case "color":
		return valueAttr(child, &c.Color)
	case "accesslevel":
		return valueAttr(child, &c.AccessLevel)
	case "hidden":
		return boolValue(child, &c.Hidden)
	case "selected":
		return boolValue(child, &c.Selected)
	default:
		return c.Entry.ParseXML(child)
	}
}

// GetXML writes the entry and the calendar settings.
func (c *Calendar) GetXML(w *parsable.XMLWriter) {
	c.Entry.GetXML(w)

	writeValue(w, "gCal:timezone", c.TimeZone)
	writeValue(w, "gCal:color", c.Color)
	writeValue(w, "gCal:hidden", boolString(c.Hidden))
	writeValue(w, "gCal:selected", boolString(c.Selected))
}

func valueAttr(el *parsable.Element, dst *string) error {
	v, err := parsable.RequireAttr(el, "", "value")
	if err != nil {
		return err
	}
	*dst = v
	return nil
}

func boolValue(el *parsable.Element, dst *bool) error {
	if _, err := parsable.RequireAttr(el, "", "value"); err != nil {
		return err
	}
	return parsable.AttrBool(el, "", "value", dst)
}

func writeValue(w *parsable.XMLWriter, name, value string) {
	if value == "" {
		return
	}
	w.Open(name)
	w.Attr("value", value)
	w.Close()
}

func boolString(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

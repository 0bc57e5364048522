package calendar

import (
	"strconv"
	"strings"

	"github.com/custodia-labs/gdata/internal/connectors/gd"
	"github.com/custodia-labs/gdata/internal/core/domain"
	"github.com/custodia-labs/gdata/internal/core/model"
	"github.com/custodia-labs/gdata/internal/core/parsable"
)

// Event statuses.
const (
	StatusCanceled  = "http://schemas.google.com/g/2005#event.canceled"
	StatusConfirmed = "http://schemas.google.com/g/2005#event.confirmed"
	StatusTentative = "http://schemas.google.com/g/2005#event.tentative"
)

// Event visibilities.
const (
	VisibilityConfidential = "http://schemas.google.com/g/2005#event.confidential"
	VisibilityDefault      = "http://schemas.google.com/g/2005#event.default"
	VisibilityPrivate      = "http://schemas.google.com/g/2005#event.private"
	VisibilityPublic       = "http://schemas.google.com/g/2005#event.public"
)

// Event transparencies.
const (
	TransparencyOpaque      = "http://schemas.google.com/g/2005#event.opaque"
	TransparencyTransparent = "http://schemas.google.com/g/2005#event.transparent"
)

// Event is a calendar event entry.
type Event struct {
	model.Entry

	Status                string
	Visibility            string
	Transparency          string
	UID                   string
	Sequence              uint32
	Recurrence            string
	GuestsCanModify       bool
	GuestsCanInviteOthers bool
	GuestsCanSeeGuests    bool
	AnyoneCanAddSelf      bool

	times  []*gd.When
	places []*gd.Where
}

// NewEvent creates an uninserted event.
func NewEvent() *Event {
	return &Event{}
}

// Times returns the event's occurrences.
func (e *Event) Times() []*gd.When { return append([]*gd.When(nil), e.times...) }

// AddTime appends an occurrence.
func (e *Event) AddTime(w *gd.When) { e.times = append(e.times, w) }

// Places returns the event's places.
func (e *Event) Places() []*gd.Where { return append([]*gd.Where(nil), e.places...) }

// AddPlace appends a place.
func (e *Event) AddPlace(p *gd.Where) { e.places = append(e.places, p) }

// Namespaces implements parsable.Parsable.
func (e *Event) Namespaces() map[string]string {
	ns := e.Entry.Namespaces()
	ns["gCal"] = NSCal
	for _, w := range e.times {
		parsable.MergeNamespaces(ns, w)
	}
	for _, p := range e.places {
		parsable.MergeNamespaces(ns, p)
	}
	return ns
}

// ParseXML handles the event elements and defers the rest to the entry.
func (e *Event) ParseXML(child *parsable.Element) error {
	switch child.Name.Space {
	case parsable.NSGData:
		return e.parseGData(child)
	case NSCal:
		return e.parseCal(child)
	default:
		return e.Entry.ParseXML(child)
	}
}

func (e *Event) parseGData(child *parsable.Element) error {
	opts := e.ParseOptions()

	switch child.Name.Local {
	case "when":
		w := &gd.When{}
		if err := parsable.DecodeXML(child, w, opts); err != nil {
			return err
		}
		e.times = append(e.times, w)
		return nil
	case "where":
		p := &gd.Where{}
		if err := parsable.DecodeXML(child, p, opts); err != nil {
			return err
		}
		e.places = append(e.places, p)
		return nil
	case "eventStatus":
		return valueAttr(child, &e.Status)
	case "visibility":
		return valueAttr(child, &e.Visibility)
	case "transparency":
		return valueAttr(child, &e.Transparency)
	case "recurrence":
		e.Recurrence = child.Text
		return nil
	default:
		return e.Entry.ParseXML(child)
	}
}

func (e *Event) parseCal(child *parsable.Element) error {
	switch child.Name.Local {
	case "uid":
		return valueAttr(child, &e.UID)
	case "sequence":
		v, err := parsable.RequireAttr(child, "", "value")
		if err != nil {
			return err
		}
		n, err := strconv.ParseUint(strings.TrimSpace(v), 10, 32)
		if err != nil {
			return &domain.ParseError{Kind: domain.ErrInvalidFormat, Element: child.QName(), Property: "value", Value: v, Err: err}
		}
		e.Sequence = uint32(n)
		return nil
	case "guestsCanModify":
		return boolValue(child, &e.GuestsCanModify)
	case "guestsCanInviteOthers":
		return boolValue(child, &e.GuestsCanInviteOthers)
	case "guestsCanSeeGuests":
		return boolValue(child, &e.GuestsCanSeeGuests)
	case "anyoneCanAddSelf":
		return boolValue(child, &e.AnyoneCanAddSelf)
	default:
		return e.Entry.ParseXML(child)
	}
}

// GetXML writes the entry and the event elements.
func (e *Event) GetXML(w *parsable.XMLWriter) {
	e.Entry.GetXML(w)

	writeValue(w, "gd:eventStatus", e.Status)
	writeValue(w, "gd:visibility", e.Visibility)
	writeValue(w, "gd:transparency", e.Transparency)
	writeValue(w, "gCal:uid", e.UID)
	if e.Sequence != 0 {
		writeValue(w, "gCal:sequence", strconv.FormatUint(uint64(e.Sequence), 10))
	}
	writeValue(w, "gCal:guestsCanModify", boolString(e.GuestsCanModify))
	writeValue(w, "gCal:guestsCanInviteOthers", boolString(e.GuestsCanInviteOthers))
	writeValue(w, "gCal:guestsCanSeeGuests", boolString(e.GuestsCanSeeGuests))
	writeValue(w, "gCal:anyoneCanAddSelf", boolString(e.AnyoneCanAddSelf))
	w.ElementIf("gd:recurrence", e.Recurrence)

	for _, t := range e.times {
		w.Child(t)
	}
	for _, p := range e.places {
		w.Child(p)
	}
}

package calendar

import (
	"strings"
	"time"

	"github.com/custodia-labs/gdata/internal/core/query"
)

// Query adds the event feed parameters to the generic ones.
type Query struct {
	query.Query

	futureEvents             bool
	singleEvents             bool
	orderBy                  string
	sortOrder                string
	recurrenceExpansionStart time.Time
	recurrenceExpansionEnd   time.Time
	startMin                 time.Time
	startMax                 time.Time
	timeZone                 string
}

// NewQuery creates an event query with a free-text filter.
func NewQuery(q string) *Query {
	return &Query{Query: *query.New(q, 0, 0)}
}

// NewTimeQuery creates an event query for events overlapping [min, max).
func NewTimeQuery(startMin, startMax time.Time) *Query {
	return &Query{startMin: startMin, startMax: startMax}
}

// FutureEvents reports whether only future events are requested.
func (q *Query) FutureEvents() bool { return q.futureEvents }

// SetFutureEvents restricts the feed to events that have not ended.
func (q *Query) SetFutureEvents(v bool) { q.futureEvents = v; q.Changed() }

// SingleEvents reports whether recurring events are expanded.
func (q *Query) SingleEvents() bool { return q.singleEvents }

// SetSingleEvents expands recurring events into single instances.
func (q *Query) SetSingleEvents(v bool) { q.singleEvents = v; q.Changed() }

// OrderBy returns the sort key, "lastmodified" or "starttime".
func (q *Query) OrderBy() string { return q.orderBy }

// SetOrderBy sets the sort key.
func (q *Query) SetOrderBy(v string) { q.orderBy = v; q.Changed() }

// SortOrder returns "ascending" or "descending".
func (q *Query) SortOrder() string { return q.sortOrder }

// SetSortOrder sets the sort direction.
func (q *Query) SetSortOrder(v string) { q.sortOrder = v; q.Changed() }

// RecurrenceExpansionStart returns the start of the expansion window.
func (q *Query) RecurrenceExpansionStart() time.Time { return q.recurrenceExpansionStart }

// SetRecurrenceExpansionStart sets the start of the expansion window.
func (q *Query) SetRecurrenceExpansionStart(t time.Time) { q.recurrenceExpansionStart = t; q.Changed() }

// RecurrenceExpansionEnd returns the end of the expansion window.
func (q *Query) RecurrenceExpansionEnd() time.Time { return q.recurrenceExpansionEnd }

// SetRecurrenceExpansionEnd sets the end of the expansion window.
func (q *Query) SetRecurrenceExpansionEnd(t time.Time) { q.recurrenceExpansionEnd = t; q.Changed() }

// StartMin returns the earliest end time of returned events.
func (q *Query) StartMin() time.Time { return q.startMin }

// SetStartMin sets the earliest end time of returned events.
func (q *Query) SetStartMin(t time.Time) { q.startMin = t; q.Changed() }

// StartMax returns the exclusive latest start time of returned events.
func (q *Query) StartMax() time.Time { return q.startMax }

// SetStartMax sets the exclusive latest start time of returned events.
func (q *Query) SetStartMax(t time.Time) { q.startMax = t; q.Changed() }

// TimeZone returns the zone results are expressed in.
func (q *Query) TimeZone() string { return q.timeZone }

// SetTimeZone sets the zone results are expressed in, e.g. "Europe/London".
func (q *Query) SetTimeZone(tz string) { q.timeZone = tz; q.Changed() }

// BuildURI implements query.Querier.
func (q *Query) BuildURI(feedURI string) string {
	return q.Query.Build(feedURI, q)
}

// WriteParams writes the generic parameters followed by the event ones.
func (q *Query) WriteParams(w *query.ParamWriter) {
	q.Query.WriteParams(w)

	w.Bool("futureevents", q.futureEvents, query.EmitIfSet)
	w.Bool("singleevents", q.singleEvents, query.EmitIfSet)
	w.String("orderby", q.orderBy)
	w.String("sortorder", q.sortOrder)
	w.Time("recurrence-expansion-start", q.recurrenceExpansionStart)
	w.Time("recurrence-expansion-end", q.recurrenceExpansionEnd)
	w.Time("start-min", q.startMin)
	w.Time("start-max", q.startMax)
	w.String("ctz", strings.ReplaceAll(q.timeZone, " ", "_"))
}

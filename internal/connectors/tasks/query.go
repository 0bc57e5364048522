package tasks

import (
	"time"

	"github.com/custodia-labs/gdata/internal/core/query"
)

// Query holds the task list filters. Its parameters replace the generic
// ones: only the page size, the updated lower bound and the continuation
// token are taken from the embedded query.
type Query struct {
	query.Query

	completedMin  time.Time
	completedMax  time.Time
	dueMin        time.Time
	dueMax        time.Time
	showCompleted bool
	showDeleted   bool
	showHidden    bool
}

// NewQuery creates a task query. Completed, deleted and hidden tasks are
// all excluded until enabled.
func NewQuery() *Query {
	return &Query{}
}

// CompletedMin returns the lower bound on the completion time.
func (q *Query) CompletedMin() time.Time { return q.completedMin }

// SetCompletedMin sets the lower bound on the completion time.
func (q *Query) SetCompletedMin(t time.Time) { q.completedMin = t; q.Changed() }

// CompletedMax returns the upper bound on the completion time.
func (q *Query) CompletedMax() time.Time { return q.completedMax }

// SetCompletedMax sets the upper bound on the completion time.
func (q *Query) SetCompletedMax(t time.Time) { q.completedMax = t; q.Changed() }

// DueMin returns the lower bound on the due date.
func (q *Query) DueMin() time.Time { return q.dueMin }

// SetDueMin sets the lower bound on the due date.
func (q *Query) SetDueMin(t time.Time) { q.dueMin = t; q.Changed() }

// DueMax returns the upper bound on the due date.
func (q *Query) DueMax() time.Time { return q.dueMax }

// SetDueMax sets the upper bound on the due date.
func (q *Query) SetDueMax(t time.Time) { q.dueMax = t; q.Changed() }

// ShowCompleted reports whether completed tasks are returned.
func (q *Query) ShowCompleted() bool { return q.showCompleted }

// SetShowCompleted sets whether completed tasks are returned.
func (q *Query) SetShowCompleted(v bool) { q.showCompleted = v; q.Changed() }

// ShowDeleted reports whether deleted tasks are returned.
func (q *Query) ShowDeleted() bool { return q.showDeleted }

// SetShowDeleted sets whether deleted tasks are returned.
func (q *Query) SetShowDeleted(v bool) { q.showDeleted = v; q.Changed() }

// ShowHidden reports whether hidden tasks are returned.
func (q *Query) ShowHidden() bool { return q.showHidden }

// SetShowHidden sets whether hidden tasks are returned.
func (q *Query) SetShowHidden(v bool) { q.showHidden = v; q.Changed() }

// BuildURI implements query.Querier.
func (q *Query) BuildURI(feedURI string) string {
	return q.Query.Build(feedURI, q)
}

// WriteParams writes the task parameters. The show flags are always sent.
func (q *Query) WriteParams(w *query.ParamWriter) {
	w.Int("maxResults", q.MaxResults())
	w.Time("updatedMin", q.UpdatedMin())
	w.Time("completedMin", q.completedMin)
	w.Time("completedMax", q.completedMax)
	w.Time("dueMin", q.dueMin)
	w.Time("dueMax", q.dueMax)
	w.Bool("showCompleted", q.showCompleted, query.AlwaysEmit)
	w.Bool("showDeleted", q.showDeleted, query.AlwaysEmit)
	w.Bool("showHidden", q.showHidden, query.AlwaysEmit)
	w.String("pageToken", q.PageToken())
}

package tasks

import (
	"encoding/json"
	"time"

	"github.com/custodia-labs/gdata/internal/core/model"
	"github.com/custodia-labs/gdata/internal/core/parsable"
)

// Task statuses.
const (
	StatusNeedsAction = "needsAction"
	StatusCompleted   = "completed"
)

// Kinds reported in the "kind" member.
const (
	KindTask     = "tasks#task"
	KindTasklist = "tasks#taskList"
)

// Task is a single to-do item.
type Task struct {
	model.Entry

	Parent    string
	Position  string
	Notes     string
	Status    string
	Due       time.Time
	Completed time.Time
	Deleted   bool
	hidden    bool
}

// NewTask creates an uninserted task.
func NewTask(title string) *Task {
	t := &Task{}
	t.SetTitle(title)
	t.AddCategory(model.NewCategory(KindTask, model.KindScheme, ""))
	return t
}

// IsHidden reports whether the task was hidden by clearing completed tasks.
func (t *Task) IsHidden() bool { return t.hidden }

// ParseJSON handles the task members and defers the rest to the entry.
func (t *Task) ParseJSON(member string, raw json.RawMessage) error {
	switch member {
	case "parent":
		return parsable.JSONString(member, raw, 0, &t.Parent)
	case "position":
		return parsable.JSONString(member, raw, 0, &t.Position)
	case "notes":
		return parsable.JSONString(member, raw, 0, &t.Notes)
	case "status":
		return parsable.JSONString(member, raw, 0, &t.Status)
	case "due":
		return parsable.JSONTime(member, raw, 0, &t.Due)
	case "completed":
		return parsable.JSONTime(member, raw, 0, &t.Completed)
	case "deleted":
		return parsable.JSONBool(member, raw, &t.Deleted)
	case "hidden":
		return parsable.JSONBool(member, raw, &t.hidden)
	default:
		return t.Entry.ParseJSON(member, raw)
	}
}

// GetJSON writes the entry members followed by the task ones.
func (t *Task) GetJSON(w *parsable.JSONWriter) {
	t.Entry.GetJSON(w)

	w.StringIf("parent", t.Parent)
	w.StringIf("position", t.Position)
	w.StringIf("notes", t.Notes)
	w.StringIf("status", t.Status)
	w.TimeIf("due", t.Due)
	w.TimeIf("completed", t.Completed)
	w.Bool("deleted", t.Deleted)
}

// Tasklist is a named list of tasks.
type Tasklist struct {
	model.Entry
}

// NewTasklist creates an uninserted task list.
func NewTasklist(title string) *Tasklist {
	l := &Tasklist{}
	l.SetTitle(title)
	l.AddCategory(model.NewCategory(KindTasklist, model.KindScheme, ""))
	return l
}

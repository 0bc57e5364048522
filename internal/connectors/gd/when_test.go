package gd

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/gdata/internal/core/domain"
	"github.com/custodia-labs/gdata/internal/core/parsable"
)

func TestWhen_FromXML(t *testing.T) {
	doc := `<gd:when xmlns:gd="http://schemas.google.com/g/2005"
	  startTime="2009-03-14T10:00:00.000Z" endTime="2009-03-14T11:30:00.000Z" valueString="Saturday morning">
	    <gd:reminder minutes="10" method="alert"/>
	    <gd:reminder hours="1" method="email"/>
	</gd:when>`

	w := &When{}
	require.NoError(t, parsable.FromXML([]byte(doc), w, parsable.Options{}))

	assert.Equal(t, time.Date(2009, 3, 14, 10, 0, 0, 0, time.UTC), w.Start)
	assert.Equal(t, time.Date(2009, 3, 14, 11, 30, 0, 0, time.UTC), w.End)
	assert.False(t, w.IsDate)
	assert.Equal(t, "Saturday morning", w.ValueString)
	require.Len(t, w.Reminders(), 2)
	assert.Equal(t, int64(10), w.Reminders()[0].RelativeTime())
	assert.Equal(t, int64(60), w.Reminders()[1].RelativeTime())
}

func TestWhen_AllDay(t *testing.T) {
	doc := `<when xmlns="http://schemas.google.com/g/2005" startTime="2009-03-14" endTime="2009-03-15"/>`
	w := &When{}
	require.NoError(t, parsable.FromXML([]byte(doc), w, parsable.Options{}))
	assert.True(t, w.IsDate)

	out := string(parsable.ToXML(w))
	assert.Contains(t, out, "startTime='2009-03-14'")
	assert.Contains(t, out, "endTime='2009-03-15'")
}

func TestWhen_FromXMLErrors(t *testing.T) {
	missing := `<when xmlns="http://schemas.google.com/g/2005" endTime="2009-03-15"/>`
	err := parsable.FromXML([]byte(missing), &When{}, parsable.Options{})
	assert.True(t, errors.Is(err, domain.ErrRequiredFieldMissing), "got %v", err)

	bad := `<when xmlns="http://schemas.google.com/g/2005" startTime="noon"/>`
	err = parsable.FromXML([]byte(bad), &When{}, parsable.Options{})
	assert.True(t, errors.Is(err, domain.ErrInvalidFormat), "got %v", err)
}

func TestWhen_ToXML(t *testing.T) {
	w := NewWhen(time.Date(2009, 3, 14, 10, 0, 0, 0, time.UTC), time.Time{}, false)
	w.AddReminder(NewRelativeReminder(ReminderAlert, 5))

	out := string(parsable.ToXML(w))
	assert.Contains(t, out, "startTime='2009-03-14T10:00:00Z'")
	assert.NotContains(t, out, "endTime")
	assert.Contains(t, out, "<reminder minutes='5' method='alert'/>")
}

func TestWhere_RoundTrip(t *testing.T) {
	p := NewWhere("Tennis court 3")
	p.Label = "Club"

	again := &Where{}
	require.NoError(t, parsable.FromXML(parsable.ToXML(p), again, parsable.Options{}))
	assert.Equal(t, "Tennis court 3", again.ValueString)
	assert.Equal(t, "Club", again.Label)
	assert.Empty(t, again.Relation)
}

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

func TestReminder_FromXML(t *testing.T) {
	tests := []struct {
		name     string
		attrs    string
		method   string
		relative int64
		absolute int64
	}{
		{name: "minutes", attrs: `minutes="15" method="alert"`, method: ReminderAlert, relative: 15, absolute: -1},
		{name: "hours", attrs: `hours="2"`, relative: 120, absolute: -1},
		{name: "days", attrs: `days="1" method="email"`, method: ReminderEmail, relative: 1440, absolute: -1},
		{name: "days win over minutes", attrs: `minutes="5" days="2"`, relative: 2880, absolute: -1},
		{name: "absolute", attrs: `absoluteTime="2009-03-14T10:00:00Z" method="sms"`, method: ReminderSMS, relative: -1, absolute: 1237024800},
		{name: "bare", attrs: ``, relative: -1, absolute: -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := `<reminder xmlns="http://schemas.google.com/g/2005" ` + tt.attrs + `/>`
			r := &Reminder{}
			require.NoError(t, parsable.FromXML([]byte(doc), r, parsable.Options{}))

			assert.Equal(t, tt.method, r.Method)
			assert.Equal(t, tt.relative, r.RelativeTime())
			assert.Equal(t, tt.absolute, r.AbsoluteTime())
		})
	}
}

func TestReminder_FromXMLErrors(t *testing.T) {
	for _, attrs := range []string{`absoluteTime="tomorrow"`, `minutes="soon"`} {
		doc := `<reminder xmlns="http://schemas.google.com/g/2005" ` + attrs + `/>`
		err := parsable.FromXML([]byte(doc), &Reminder{}, parsable.Options{})
		assert.True(t, errors.Is(err, domain.ErrInvalidFormat), "%s: got %v", attrs, err)
	}
}

func TestReminder_ToXML(t *testing.T) {
	rel := string(parsable.ToXML(NewRelativeReminder(ReminderAlert, 30)))
	assert.Contains(t, rel, "minutes='30'")
	assert.Contains(t, rel, "method='alert'")
	assert.NotContains(t, rel, "absoluteTime")

	at := time.Date(2009, 3, 14, 10, 0, 0, 0, time.UTC)
	abs := string(parsable.ToXML(NewAbsoluteReminder(ReminderEmail, at)))
	assert.Contains(t, abs, "absoluteTime='2009-03-14T10:00:00Z'")
	assert.NotContains(t, abs, "minutes")
}

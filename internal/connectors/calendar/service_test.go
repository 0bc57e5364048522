package calendar

import (
	"context"
	"errors"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/gdata/internal/connectors/gd"
	"github.com/custodia-labs/gdata/internal/core/domain"
	"github.com/custodia-labs/gdata/internal/core/model"
)

const calendarsFeed = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom" xmlns:gCal="http://schemas.google.com/gCal/2005">
  <id>http://www.google.com/calendar/feeds/default/owncalendars/full</id>
  <title>Jo's calendars</title>
  <entry>
    <id>http://www.google.com/calendar/feeds/default/owncalendars/full/jo</id>
    <title>Jo</title>
    <content type="application/atom+xml" src="http://www.google.com/calendar/feeds/jo/private/full"/>
    <gCal:timezone value="Europe/London"/>
  </entry>
</feed>`

func TestService_QueryOwnCalendars(t *testing.T) {
	var gotPath, gotAuth, gotVersion string
	svc, _ := newTestService(t, true, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotVersion = r.Header.Get("GData-Version")
		w.Header().Set("Content-Type", "application/atom+xml")
		_, _ = io.WriteString(w, calendarsFeed)
	})

	feed, err := svc.QueryOwnCalendars(context.Background(), nil)
	require.NoError(t, err)

	assert.Equal(t, "/calendar/feeds/default/owncalendars/full", gotPath)
	assert.Equal(t, "GoogleLogin auth=cal-token", gotAuth)
	assert.Equal(t, "2", gotVersion)

	cals := model.Entries[*Calendar](feed)
	require.Len(t, cals, 1)
	assert.Equal(t, "Europe/London", cals[0].TimeZone)
}

func TestService_QueryAllCalendarsRequiresAuth(t *testing.T) {
	called := false
	svc, _ := newTestService(t, false, func(http.ResponseWriter, *http.Request) { called = true })

	_, err := svc.QueryAllCalendars(context.Background(), nil)
	assert.True(t, errors.Is(err, domain.ErrAuthenticationRequired), "got %v", err)
	assert.False(t, called)
}

func TestService_QueryEvents(t *testing.T) {
	var gotURI string
	svc, srv := newTestService(t, true, func(w http.ResponseWriter, r *http.Request) {
		gotURI = r.URL.RequestURI()
		_, _ = io.WriteString(w, `<feed xmlns="http://www.w3.org/2005/Atom"
		  xmlns:gd="http://schemas.google.com/g/2005"><entry><id>ev1</id><title>Tennis</title>
		  <gd:eventStatus value="http://schemas.google.com/g/2005#event.confirmed"/></entry></feed>`)
	})

	cal := NewCalendar()
	cal.SetContentURI(srv.URL+"/calendar/feeds/jo/private/full", "application/atom+xml")
	q := NewQuery("tennis")
	q.SetFutureEvents(true)

	feed, err := svc.QueryEvents(context.Background(), cal, q)
	require.NoError(t, err)
	assert.Equal(t, "/calendar/feeds/jo/private/full?q=tennis&futureevents=true", gotURI)

	events := model.Entries[*Event](feed)
	require.Len(t, events, 1)
	assert.Equal(t, StatusConfirmed, events[0].Status)
}

func TestService_QueryEventsWithoutContentURI(t *testing.T) {
	svc, _ := newTestService(t, true, func(http.ResponseWriter, *http.Request) {
		t.Error("no request expected")
	})

	_, err := svc.QueryEvents(context.Background(), NewCalendar(), nil)
	assert.True(t, errors.Is(err, domain.ErrProtocol), "got %v", err)
}

func TestService_QueryEventsAsync(t *testing.T) {
	svc, srv := newTestService(t, true, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `<feed xmlns="http://www.w3.org/2005/Atom"><entry><id>ev1</id></entry></feed>`)
	})
	cal := NewCalendar()
	cal.SetContentURI(srv.URL+"/calendar/feeds/jo/private/full", "")

	feed, err := svc.QueryEventsAsync(context.Background(), cal, nil).Wait()
	require.NoError(t, err)
	assert.Len(t, feed.Entries(), 1)
}

func TestService_InsertEvent(t *testing.T) {
	var gotMethod, gotPath, gotType string
	var gotBody []byte
	svc, _ := newTestService(t, true, func(w http.ResponseWriter, r *http.Request) {
		gotMethod, gotPath, gotType = r.Method, r.URL.Path, r.Header.Get("Content-Type")
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `<entry xmlns="http://www.w3.org/2005/Atom" xmlns:gCal="http://schemas.google.com/gCal/2005">
		  <id>http://www.google.com/calendar/feeds/default/private/full/new1</id><title>Tennis</title>
		  <gCal:uid value="new1@google.com"/></entry>`)
	})

	ev := NewEvent()
	ev.SetTitle("Tennis")
	ev.AddTime(gd.NewWhen(time.Date(2009, 3, 14, 10, 0, 0, 0, time.UTC), time.Time{}, false))

	inserted, err := svc.InsertEvent(context.Background(), ev)
	require.NoError(t, err)

	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "/calendar/feeds/default/private/full", gotPath)
	assert.Equal(t, "application/atom+xml", gotType)
	assert.Contains(t, string(gotBody), "<gd:when startTime='2009-03-14T10:00:00Z'/>")

	assert.True(t, inserted.IsInserted())
	assert.Equal(t, "new1@google.com", inserted.UID)
	assert.False(t, ev.IsInserted())
}

func TestService_InsertEventAlreadyInserted(t *testing.T) {
	svc, _ := newTestService(t, true, func(http.ResponseWriter, *http.Request) {
		t.Error("no request expected")
	})

	ev := NewEvent()
	require.NoError(t, parseEvent(ev, `<entry xmlns="http://www.w3.org/2005/Atom"><id>ev1</id></entry>`))

	_, err := svc.InsertEvent(context.Background(), ev)
	assert.True(t, errors.Is(err, domain.ErrEntryAlreadyInserted), "got %v", err)
}

// Package calendar implements the calendar service: calendars, events and
// the event query parameters.
//
// The service speaks Atom XML. Every operation needs credentials for
// AuthorizationDomain.
package calendar

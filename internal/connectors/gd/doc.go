// Package gd implements the shared elements of the Google Data namespace
// that several services embed in their entries: phone numbers, reminders,
// event times and places.
package gd

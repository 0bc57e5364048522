// Package contacts implements the contacts service and its contact entries.
package contacts

// Package tasks implements the tasks service. Unlike the Atom services it
// speaks JSON and pages with continuation tokens.
package tasks

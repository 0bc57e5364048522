// Package model holds the Atom-style object model shared by every service:
// Entry, Feed, Link, Category and Author.
//
// Service modules define their own entry kinds by embedding Entry and
// overriding the parsable hooks for the extension elements they own.
package model

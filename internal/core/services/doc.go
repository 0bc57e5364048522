// Package services implements the client's operations against a GData-style
// endpoint: querying feeds, inserting, updating and deleting entries, and
// batching several of those into one request.
//
// A Service owns no connection state of its own. It depends on a
// driven.Transport for sending and a driven.Authorizer for credentials, and
// it is safe for concurrent use whenever those are.
package services

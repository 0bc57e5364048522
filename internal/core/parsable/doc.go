// Package parsable maps entities to and from their wire documents.
//
// An entity implements XMLParsable, JSONParsable or both, and embeds Base.
// Decoding runs in two phases: PreParse* sees the root fragment itself
// (attributes, text) and then every child element or member is offered to
// Parse*. A concrete type handles the children it owns and passes the rest
// to the type it embeds, so the chain always ends at Base, which preserves
// unknown content for re-emission (or rejects it under Options.Strict).
// Post-parse hooks validate required fields once the whole fragment is seen.
//
// Encoding mirrors decoding: PreGetXML writes root attributes, GetXML
// writes children, and the preserved content is written last.
package parsable

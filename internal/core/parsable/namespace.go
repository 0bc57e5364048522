package parsable

import "sync"

// Well-known namespaces.
const (
	NSAtom       = "http://www.w3.org/2005/Atom"
	NSApp        = "http://www.w3.org/2007/app"
	NSGData      = "http://schemas.google.com/g/2005"
	NSOpenSearch = "http://a9.com/-/spec/opensearch/1.1/"
	NSBatch      = "http://schemas.google.com/gdata/batch"
	NSXML        = "http://www.w3.org/XML/1998/namespace"
)

// builtinPrefixes maps URIs to the prefixes used when nothing else is known.
var builtinPrefixes = map[string]string{
	NSXML:        "xml",
	NSApp:        "app",
	NSGData:      "gd",
	NSOpenSearch: "openSearch",
	NSBatch:      "batch",
}

var (
	reservedMu sync.RWMutex
	// reservedPrefixes maps the prefixes entity types write literally to
	// their URIs.
	reservedPrefixes = map[string]string{
		"xml":        NSXML,
		"app":        NSApp,
		"gd":         NSGData,
		"openSearch": NSOpenSearch,
		"batch":      NSBatch,
	}
)

// RegisterNamespace reserves prefix for uri. Entity packages whose writers
// use a prefix literally register it at init. Preserved elements binding a
// reserved prefix to another URI declare it on themselves instead of on the
// document root.
func RegisterNamespace(prefix, uri string) {
	reservedMu.Lock()
	defer reservedMu.Unlock()
	reservedPrefixes[prefix] = uri
}

// clashes reports whether prefix is reserved for a URI other than uri.
func clashes(prefix, uri string) bool {
	reservedMu.RLock()
	defer reservedMu.RUnlock()
	r, ok := reservedPrefixes[prefix]
	return ok && r != uri
}

// MergeNamespaces copies the namespaces of each parsable into dst and returns
// it. Prefixes already in dst keep their URI. A nil dst is allocated.
func MergeNamespaces(dst map[string]string, ps ...Parsable) map[string]string {
	if dst == nil {
		dst = make(map[string]string)
	}
	for _, p := range ps {
		if p == nil {
			continue
		}
		for prefix, uri := range p.Namespaces() {
			if _, ok := dst[prefix]; !ok {
				dst[prefix] = uri
			}
		}
	}
	return dst
}

// Package query builds feed request URIs from structured filters and tracks
// pagination state between requests.
//
// A Query is mutable caller state and is not safe for concurrent use. The one
// mutation made by someone other than the caller is the service storing the
// pagination links and ETag of each response into the query it was given.
package query

import (
	"net/url"
	"strings"
	"time"
)

// Querier is what a service needs from a query.
type Querier interface {
	// BuildURI returns the request URI for feedURI.
	BuildURI(feedURI string) string
	// ETag returns the ETag of the last response, for conditional requests.
	ETag() string
	// SetETag stores the ETag of a response.
	SetETag(etag string)
	// SetPaginationLinks stores the next and previous links of a response.
	// Empty strings clear the stored links.
	SetPaginationLinks(next, previous string)
	// SetNextPageToken stores the continuation token of a response.
	SetNextPageToken(token string)
}

// Params writes the parameters of a query kind.
type Params interface {
	WriteParams(w *ParamWriter)
}

// Query holds the parameters every feed understands.
type Query struct {
	q            string
	categories   string
	author       string
	updatedMin   time.Time
	updatedMax   time.Time
	publishedMin time.Time
	publishedMax time.Time
	startIndex   int64
	maxResults   int64
	strict       bool
	pageToken    string

	etag          string
	nextURI       string
	previousURI   string
	nextPageToken string
	useNext       bool
	usePrevious   bool
}

// New creates a query with a free-text filter and paging window. Zero values
// leave the corresponding parameters out.
func New(q string, startIndex, maxResults int64) *Query {
	return &Query{q: q, startIndex: startIndex, maxResults: maxResults}
}

// changed invalidates state tied to the previous parameters.
func (q *Query) changed() {
	q.etag = ""
	q.useNext = false
	q.usePrevious = false
}

// Changed is called by query kinds when one of their own parameters changes.
func (q *Query) Changed() { q.changed() }

// Q returns the free-text filter.
func (q *Query) Q() string { return q.q }

// SetQ sets the free-text filter.
func (q *Query) SetQ(s string) { q.q = s; q.changed() }

// Categories returns the category filter.
func (q *Query) Categories() string { return q.categories }

// SetCategories sets the category filter, a "/"-separated path such as
// "Fritz/-Laurie".
func (q *Query) SetCategories(c string) { q.categories = c; q.changed() }

// Author returns the author filter.
func (q *Query) Author() string { return q.author }

// SetAuthor sets the author filter.
func (q *Query) SetAuthor(a string) { q.author = a; q.changed() }

// UpdatedMin returns the lower bound on the updated time.
func (q *Query) UpdatedMin() time.Time { return q.updatedMin }

// SetUpdatedMin sets the lower bound on the updated time.
func (q *Query) SetUpdatedMin(t time.Time) { q.updatedMin = t; q.changed() }

// UpdatedMax returns the upper bound on the updated time.
func (q *Query) UpdatedMax() time.Time { return q.updatedMax }

// SetUpdatedMax sets the upper bound on the updated time.
func (q *Query) SetUpdatedMax(t time.Time) { q.updatedMax = t; q.changed() }

// PublishedMin returns the lower bound on the published time.
func (q *Query) PublishedMin() time.Time { return q.publishedMin }

// SetPublishedMin sets the lower bound on the published time.
func (q *Query) SetPublishedMin(t time.Time) { q.publishedMin = t; q.changed() }

// PublishedMax returns the upper bound on the published time.
func (q *Query) PublishedMax() time.Time { return q.publishedMax }

// SetPublishedMax sets the upper bound on the published time.
func (q *Query) SetPublishedMax(t time.Time) { q.publishedMax = t; q.changed() }

// StartIndex returns the one-based index of the first result, or 0.
func (q *Query) StartIndex() int64 { return q.startIndex }

// SetStartIndex sets the one-based index of the first result.
func (q *Query) SetStartIndex(i int64) { q.startIndex = i; q.changed() }

// MaxResults returns the page size, or 0 for the server default.
func (q *Query) MaxResults() int64 { return q.maxResults }

// SetMaxResults sets the page size.
func (q *Query) SetMaxResults(n int64) { q.maxResults = n; q.changed() }

// IsStrict reports whether the server should reject unknown parameters.
func (q *Query) IsStrict() bool { return q.strict }

// SetStrict sets strict parameter checking.
func (q *Query) SetStrict(s bool) { q.strict = s; q.changed() }

// PageToken returns the continuation token sent with the request.
func (q *Query) PageToken() string { return q.pageToken }

// SetPageToken sets the continuation token sent with the request.
func (q *Query) SetPageToken(t string) { q.pageToken = t; q.changed() }

// ETag returns the ETag of the last response.
func (q *Query) ETag() string { return q.etag }

// SetETag stores the ETag of a response.
func (q *Query) SetETag(etag string) { q.etag = etag }

// NextURI returns the stored next-page link.
func (q *Query) NextURI() string { return q.nextURI }

// PreviousURI returns the stored previous-page link.
func (q *Query) PreviousURI() string { return q.previousURI }

// SetPaginationLinks stores the next and previous links of a response.
func (q *Query) SetPaginationLinks(next, previous string) {
	q.nextURI = next
	q.previousURI = previous
	q.useNext = false
	q.usePrevious = false
}

// SetNextPageToken stores the continuation token of a response.
func (q *Query) SetNextPageToken(token string) { q.nextPageToken = token }

// NextPage moves the query to the following page. A stored next link is used
// verbatim; otherwise a continuation token, otherwise start-index arithmetic.
func (q *Query) NextPage() bool {
	q.etag = ""
	switch {
	case q.nextURI != "":
		q.useNext = true
		q.usePrevious = false
	case q.nextPageToken != "":
		q.pageToken = q.nextPageToken
		q.nextPageToken = ""
		q.useNext = false
		q.usePrevious = false
	default:
		if q.startIndex == 0 {
			q.startIndex++
		}
		q.startIndex += q.maxResults
		q.useNext = false
		q.usePrevious = false
	}
	return true
}

// PreviousPage moves the query to the preceding page and reports whether
// there is one.
func (q *Query) PreviousPage() bool {
	if q.previousURI != "" {
		q.etag = ""
		q.usePrevious = true
		q.useNext = false
		return true
	}
	if q.startIndex <= q.maxResults {
		return false
	}
	q.etag = ""
	q.startIndex -= q.maxResults
	if q.startIndex == 1 {
		q.startIndex = 0
	}
	q.useNext = false
	q.usePrevious = false
	return true
}

// BuildURI returns the request URI for feedURI using the generic parameters.
func (q *Query) BuildURI(feedURI string) string {
	return q.Build(feedURI, q)
}

// Build returns the request URI for feedURI, taking the parameters from p.
// Query kinds call it from their own BuildURI with themselves as p.
func (q *Query) Build(feedURI string, p Params) string {
	switch {
	case q.useNext:
		return q.nextURI
	case q.usePrevious:
		return q.previousURI
	}

	uri := feedURI
	if q.categories != "" {
		base, rawQuery, hasQuery := strings.Cut(feedURI, "?")
		uri = base + "/-/" + escapeCategories(q.categories)
		if hasQuery {
			uri += "?" + rawQuery
		}
	}

	w := NewParamWriter(uri)
	p.WriteParams(w)
	return w.URI()
}

// WriteParams writes the generic parameters in a fixed order: q, author,
// updated-min, updated-max, published-min, published-max, start-index,
// strict, max-results, pageToken.
func (q *Query) WriteParams(w *ParamWriter) {
	w.String("q", q.q)
	w.String("author", q.author)
	w.Time("updated-min", q.updatedMin)
	w.Time("updated-max", q.updatedMax)
	w.Time("published-min", q.publishedMin)
	w.Time("published-max", q.publishedMax)
	w.Int("start-index", q.startIndex)
	w.Bool("strict", q.strict, EmitIfSet)
	w.Int("max-results", q.maxResults)
	w.String("pageToken", q.pageToken)
}

func escapeCategories(c string) string {
	segments := strings.Split(c, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return strings.Join(segments, "/")
}

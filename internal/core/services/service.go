package services

import (
	"context"
	"errors"
	"net/http"

	"github.com/custodia-labs/gdata/internal/core/domain"
	"github.com/custodia-labs/gdata/internal/core/model"
	"github.com/custodia-labs/gdata/internal/core/parsable"
	"github.com/custodia-labs/gdata/internal/core/ports/driven"
	"github.com/custodia-labs/gdata/internal/core/query"
)

// Format is the wire encoding of a service. It is fixed per service.
type Format int

const (
	// FormatXML exchanges Atom documents.
	FormatXML Format = iota
	// FormatJSON exchanges JSON objects.
	FormatJSON
)

// ContentType returns the request content type for entries in f.
func (f Format) ContentType() string {
	if f == FormatJSON {
		return "application/json"
	}
	return "application/atom+xml"
}

// Op names an operation, for errors and logs.
type Op string

// Operations.
const (
	OpQuery  Op = "query"
	OpInsert Op = "insert"
	OpUpdate Op = "update"
	OpDelete Op = "delete"
	OpBatch  Op = "batch"
)

// ErrorParser turns a non-success response into an error. body is the fully
// read response body.
type ErrorParser func(op Op, resp *http.Response, body []byte) error

// Config configures a Service.
type Config struct {
	// Transport sends requests. Required.
	Transport driven.Transport
	// Authorizer supplies credentials. Nil means only public feeds are
	// reachable.
	Authorizer driven.Authorizer
	// Format is the service's wire encoding.
	Format Format
	// APIVersion is sent as GData-Version when set.
	APIVersion string
	// ClientID is sent as X-GData-Client when set.
	ClientID string
	// DeveloperKey is sent as X-GData-Key when set.
	DeveloperKey string
	// ParseOptions are used for every response body.
	ParseOptions parsable.Options
	// ErrorParser overrides the default error-body decoding.
	ErrorParser ErrorParser
}

// Service performs operations against one service endpoint family.
type Service struct {
	cfg Config
}

// ErrNoTransport is returned by NewService when Config.Transport is nil.
var ErrNoTransport = errors.New("services: no transport configured")

// NewService creates a service.
func NewService(cfg Config) (*Service, error) {
	if cfg.Transport == nil {
		return nil, ErrNoTransport
	}
	return &Service{cfg: cfg}, nil
}

// Format returns the service's wire encoding.
func (s *Service) Format() Format { return s.cfg.Format }

// Authorizer returns the service's authorizer, which may be nil.
func (s *Service) Authorizer() driven.Authorizer { return s.cfg.Authorizer }

// Query fetches a feed. ad names the credentials required, or nil for a
// public feed. When q is not nil it shapes the request URI and, on success,
// receives the feed's ETag, pagination links and continuation token.
// factory creates the entries; nil decodes plain entries.
func (s *Service) Query(ctx context.Context, ad *domain.AuthorizationDomain, feedURI string,
	q query.Querier, factory model.EntryFactory) (*model.Feed, error) {
	uri := feedURI
	header := http.Header{}
	if q != nil {
		uri = q.BuildURI(feedURI)
		if etag := q.ETag(); etag != "" {
			header.Set("If-None-Match", etag)
		}
	}

	resp, body, err := s.send(ctx, ad, OpQuery, http.MethodGet, uri, nil, header)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusNotModified {
		return nil, &domain.ServiceError{Kind: domain.ErrNotModified, Op: string(OpQuery), Status: resp.StatusCode}
	}
	if !success(resp.StatusCode) {
		return nil, s.decodeError(OpQuery, resp, body)
	}

	feed := model.NewFeed(factory)
	if err := s.decode(body, feed); err != nil {
		return nil, err
	}

	if q != nil {
		etag := feed.ETag()
		if etag == "" {
			etag = resp.Header.Get("ETag")
		}
		q.SetETag(etag)
		q.SetPaginationLinks(href(feed.LookUpLink(model.RelNext)), href(feed.LookUpLink(model.RelPrevious)))
		q.SetNextPageToken(feed.NextPageToken())
	}
	return feed, nil
}

// QueryEntry fetches a single entry. When ifNoneMatch is set the request is
// conditional and an unchanged entry yields ErrNotModified.
func (s *Service) QueryEntry(ctx context.Context, ad *domain.AuthorizationDomain, entryURI, ifNoneMatch string,
	factory model.EntryFactory) (model.Entity, error) {
	header := http.Header{}
	if ifNoneMatch != "" {
		header.Set("If-None-Match", ifNoneMatch)
	}

	resp, body, err := s.send(ctx, ad, OpQuery, http.MethodGet, entryURI, nil, header)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusNotModified {
		return nil, &domain.ServiceError{Kind: domain.ErrNotModified, Op: string(OpQuery), Status: resp.StatusCode}
	}
	if !success(resp.StatusCode) {
		return nil, s.decodeError(OpQuery, resp, body)
	}

	if factory == nil {
		factory = model.DefaultFactory
	}
	e := factory()
	if err := s.decode(body, e); err != nil {
		return nil, err
	}
	return e, nil
}

// Insert posts a new entry to uri and returns the server's copy. entry itself
// is not modified. An entry that already has an id is rejected before any
// request is made.
func (s *Service) Insert(ctx context.Context, ad *domain.AuthorizationDomain, uri string,
	entry model.Entity) (model.Entity, error) {
	if entry.BaseEntry().IsInserted() {
		return nil, &domain.ServiceError{
			Kind:    domain.ErrEntryAlreadyInserted,
			Op:      string(OpInsert),
			Message: entry.BaseEntry().ID(),
		}
	}

	header := http.Header{}
	header.Set("Content-Type", s.cfg.Format.ContentType())

	resp, body, err := s.send(ctx, ad, OpInsert, http.MethodPost, uri, s.encode(entry), header)
	if err != nil {
		return nil, err
	}
	if !success(resp.StatusCode) {
		return nil, s.decodeError(OpInsert, resp, body)
	}

	out := model.NewLike(entry)
	if err := s.decode(body, out); err != nil {
		return nil, err
	}
	return out, nil
}

// Update replaces an entry through its edit link and returns the server's
// copy. The entry's ETag, when set, makes the request conditional so a
// concurrent change yields ErrPreconditionFailed. Updating an entry without
// an edit link is a programming error and panics.
func (s *Service) Update(ctx context.Context, ad *domain.AuthorizationDomain, entry model.Entity) (model.Entity, error) {
	uri := editURI(entry, OpUpdate)

	header := http.Header{}
	header.Set("Content-Type", s.cfg.Format.ContentType())
	if etag := entry.BaseEntry().ETag(); etag != "" {
		header.Set("If-Match", etag)
	}

	resp, body, err := s.send(ctx, ad, OpUpdate, http.MethodPut, uri, s.encode(entry), header)
	if err != nil {
		return nil, err
	}
	if !success(resp.StatusCode) {
		return nil, s.decodeError(OpUpdate, resp, body)
	}

	out := model.NewLike(entry)
	if err := s.decode(body, out); err != nil {
		return nil, err
	}
	return out, nil
}

// Delete removes an entry through its edit link, conditional on its ETag as
// for Update. Deleting an entry without an edit link panics.
func (s *Service) Delete(ctx context.Context, ad *domain.AuthorizationDomain, entry model.Entity) error {
	uri := editURI(entry, OpDelete)

	header := http.Header{}
	if etag := entry.BaseEntry().ETag(); etag != "" {
		header.Set("If-Match", etag)
	}

	resp, body, err := s.send(ctx, ad, OpDelete, http.MethodDelete, uri, nil, header)
	if err != nil {
		return err
	}
	if !success(resp.StatusCode) {
		return s.decodeError(OpDelete, resp, body)
	}
	return nil
}

func editURI(entry model.Entity, op Op) string {
	edit := entry.BaseEntry().LookUpLink(model.RelEdit)
	if edit == nil {
		panic("services: " + string(op) + " of an entry without an edit link")
	}
	return edit.URI
}

func (s *Service) encode(e model.Entity) []byte {
	if s.cfg.Format == FormatJSON {
		return parsable.ToJSON(e)
	}
	return parsable.ToXML(e)
}

// decoder is satisfied by feeds and entities.
type decoder interface {
	parsable.XMLParsable
	parsable.JSONParsable
}

func (s *Service) decode(body []byte, target decoder) error {
	if s.cfg.Format == FormatJSON {
		return parsable.FromJSON(body, target, s.cfg.ParseOptions)
	}
	return parsable.FromXML(body, target, s.cfg.ParseOptions)
}

func success(status int) bool {
	return status >= 200 && status < 300
}

func href(l *model.Link) string {
	if l == nil {
		return ""
	}
	return l.URI
}

package calendar

import (
	"context"

	"github.com/custodia-labs/gdata/internal/core/domain"
	"github.com/custodia-labs/gdata/internal/core/model"
	"github.com/custodia-labs/gdata/internal/core/query"
	"github.com/custodia-labs/gdata/internal/core/services"
)

// DefaultBaseURI is the root of the calendar feeds.
const DefaultBaseURI = "https://www.google.com/calendar/feeds"

// AuthorizationDomain is the credential scope of the calendar service.
var AuthorizationDomain = domain.AuthorizationDomain{
	ServiceName: "cl",
	Scope:       "https://www.google.com/calendar/feeds/",
}

// Option configures a Service.
type Option func(*Service)

// WithBaseURI points the service at another feed root.
func WithBaseURI(uri string) Option {
	return func(s *Service) { s.baseURI = uri }
}

// Service queries calendars and manages events.
type Service struct {
	*services.Service

	baseURI string
}

// NewService creates a calendar service. The wire format is always XML and
// the protocol version defaults to 2.
func NewService(cfg services.Config, opts ...Option) (*Service, error) {
	cfg.Format = services.FormatXML
	if cfg.APIVersion == "" {
		cfg.APIVersion = "2"
	}
	base, err := services.NewService(cfg)
	if err != nil {
		return nil, err
	}

	s := &Service{Service: base, baseURI: DefaultBaseURI}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// QueryAllCalendars lists every calendar the user can see, including
// subscriptions.
func (s *Service) QueryAllCalendars(ctx context.Context, q query.Querier) (*model.Feed, error) {
	return s.Query(ctx, &AuthorizationDomain, s.baseURI+"/default/allcalendars/full", q, calendarFactory)
}

// QueryOwnCalendars lists the calendars the user owns.
func (s *Service) QueryOwnCalendars(ctx context.Context, q query.Querier) (*model.Feed, error) {
	return s.Query(ctx, &AuthorizationDomain, s.baseURI+"/default/owncalendars/full", q, calendarFactory)
}

// QueryEvents lists the events of a calendar, read from its content URI.
func (s *Service) QueryEvents(ctx context.Context, cal *Calendar, q query.Querier) (*model.Feed, error) {
	uri := cal.ContentURI()
	if uri == "" {
		return nil, domain.ProtocolError(string(services.OpQuery), "calendar %q has no content URI", cal.ID())
	}
	return s.Query(ctx, &AuthorizationDomain, uri, q, eventFactory)
}

// QueryEventsAsync runs QueryEvents in the background.
func (s *Service) QueryEventsAsync(ctx context.Context, cal *Calendar, q query.Querier) *services.Operation[*model.Feed] {
	return services.Go(ctx, func(ctx context.Context) (*model.Feed, error) {
		return s.QueryEvents(ctx, cal, q)
	})
}

// InsertEvent adds an event to the user's default calendar.
func (s *Service) InsertEvent(ctx context.Context, ev *Event) (*Event, error) {
	out, err := s.Insert(ctx, &AuthorizationDomain, s.baseURI+"/default/private/full", ev)
	if err != nil {
		return nil, err
	}
	return out.(*Event), nil
}

func calendarFactory() model.Entity { return NewCalendar() }

func eventFactory() model.Entity { return NewEvent() }

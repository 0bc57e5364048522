package contacts

import (
	"context"

	"github.com/custodia-labs/gdata/internal/core/domain"
	"github.com/custodia-labs/gdata/internal/core/model"
	"github.com/custodia-labs/gdata/internal/core/query"
	"github.com/custodia-labs/gdata/internal/core/services"
)

// DefaultBaseURI is the root of the contact feeds.
const DefaultBaseURI = "https://www.google.com/m8/feeds"

// AuthorizationDomain is the credential scope of the contacts service.
var AuthorizationDomain = domain.AuthorizationDomain{
	ServiceName: "cp",
	Scope:       "https://www.google.com/m8/feeds/",
}

// Option configures a Service.
type Option func(*Service)

// WithBaseURI points the service at another feed root.
func WithBaseURI(uri string) Option {
	return func(s *Service) { s.baseURI = uri }
}

// Service queries and manages the user's contacts.
type Service struct {
	*services.Service

	baseURI string
}

// NewService creates a contacts service speaking protocol version 3 XML.
func NewService(cfg services.Config, opts ...Option) (*Service, error) {
	cfg.Format = services.FormatXML
	if cfg.APIVersion == "" {
		cfg.APIVersion = "3"
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

func (s *Service) feedURI() string {
	return s.baseURI + "/contacts/default/full"
}

// QueryContacts lists the user's contacts.
func (s *Service) QueryContacts(ctx context.Context, q query.Querier) (*model.Feed, error) {
	return s.Query(ctx, &AuthorizationDomain, s.feedURI(), q, contactFactory)
}

// InsertContact adds a contact to the user's address book.
func (s *Service) InsertContact(ctx context.Context, c *Contact) (*Contact, error) {
	out, err := s.Insert(ctx, &AuthorizationDomain, s.feedURI(), c)
	if err != nil {
		return nil, err
	}
	return out.(*Contact), nil
}

// NewBatchOperation starts a batch against the contacts batch endpoint.
func (s *Service) NewBatchOperation() *services.BatchOperation {
	return s.Service.NewBatchOperation(&AuthorizationDomain, s.baseURI+"/contacts/default/full/batch")
}

func contactFactory() model.Entity { return NewContact() }

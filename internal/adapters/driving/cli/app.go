package cli

import (
	"context"
	"fmt"

	"github.com/custodia-labs/gdata/internal/adapters/driven/auth"
	"github.com/custodia-labs/gdata/internal/adapters/driven/config/file"
	"github.com/custodia-labs/gdata/internal/adapters/driven/transport"
	"github.com/custodia-labs/gdata/internal/connectors/calendar"
	"github.com/custodia-labs/gdata/internal/connectors/contacts"
	"github.com/custodia-labs/gdata/internal/connectors/tasks"
	"github.com/custodia-labs/gdata/internal/core/domain"
	"github.com/custodia-labs/gdata/internal/core/ports/driven"
	"github.com/custodia-labs/gdata/internal/core/services"
	"github.com/custodia-labs/gdata/internal/logger"
)

// app holds the adapters a command runs against.
type app struct {
	cfg       *domain.ClientConfig
	store     driven.ConfigStore
	transport *transport.Client
	factory   *auth.Factory
	registry  *domain.Registry
}

// loadApp reads the configuration and wires the adapters.
func loadApp() (*app, error) {
	dir := configDir
	if dir == "" {
		d, err := file.DefaultDir()
		if err != nil {
			return nil, err
		}
		dir = d
	}

	store, err := file.NewConfigStore(dir)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	cfg, err := store.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	tokens, err := file.NewTokenStore(dir)
	if err != nil {
		return nil, fmt.Errorf("open token store: %w", err)
	}
	registry, err := domain.NewRegistry(
		calendar.AuthorizationDomain,
		contacts.AuthorizationDomain,
		tasks.AuthorizationDomain,
	)
	if err != nil {
		return nil, err
	}

	logger.Debug("Loaded configuration from %s", store.Path())
	t := transport.NewFromConfig(cfg)
	return &app{
		cfg:       cfg,
		store:     store,
		transport: t,
		factory:   auth.NewFactory(t, tokens),
		registry:  registry,
	}, nil
}

// domains resolves a ClientLogin service name, or every known domain when
// name is empty.
func (a *app) domains(name string) ([]domain.AuthorizationDomain, error) {
	if name == "" {
		return a.registry.Domains(), nil
	}
	d, ok := a.registry.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("unknown service %q", name)
	}
	return []domain.AuthorizationDomain{d}, nil
}

// authorizer builds the configured authorizer for every known domain.
func (a *app) authorizer(ctx context.Context) (driven.Authorizer, error) {
	return a.factory.Create(ctx, a.cfg.AuthMethod, a.cfg, a.registry.Domains())
}

// service creates a service speaking format.
func (a *app) service(authorizer driven.Authorizer, format services.Format) (*services.Service, error) {
	return services.NewService(services.Config{
		Transport:    a.transport,
		Authorizer:   authorizer,
		Format:       format,
		APIVersion:   a.cfg.APIVersion,
		ClientID:     a.cfg.ClientID,
		DeveloperKey: a.cfg.DeveloperKey,
	})
}

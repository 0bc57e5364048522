package tasks

import (
	"context"
	"fmt"
	"net/url"

	"github.com/custodia-labs/gdata/internal/core/domain"
	"github.com/custodia-labs/gdata/internal/core/model"
	"github.com/custodia-labs/gdata/internal/core/query"
	"github.com/custodia-labs/gdata/internal/core/services"
)

// DefaultBaseURI is the root of the tasks API.
const DefaultBaseURI = "https://www.googleapis.com/tasks/v1"

// AuthorizationDomain is the credential scope of the tasks service.
var AuthorizationDomain = domain.AuthorizationDomain{
	ServiceName: "tasks",
	Scope:       "https://www.googleapis.com/auth/tasks",
}

// Option configures a Service.
type Option func(*Service)

// WithBaseURI points the service at another API root.
func WithBaseURI(uri string) Option {
	return func(s *Service) { s.baseURI = uri }
}

// Service manages task lists and tasks.
type Service struct {
	*services.Service

	baseURI string
}

// NewService creates a tasks service. The wire format is always JSON.
func NewService(cfg services.Config, opts ...Option) (*Service, error) {
	cfg.Format = services.FormatJSON
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

// requireAuth fails before any list is inspected when no credentials are
// held.
func (s *Service) requireAuth(op services.Op) error {
	a := s.Authorizer()
	if a == nil || !a.IsAuthorizedFor(AuthorizationDomain) {
		return &domain.ServiceError{
			Kind:    domain.ErrAuthenticationRequired,
			Op:      string(op),
			Message: fmt.Sprintf("not authorized for %s", AuthorizationDomain),
		}
	}
	return nil
}

func (s *Service) tasksURI(op services.Op, list *Tasklist) (string, error) {
	if err := s.requireAuth(op); err != nil {
		return "", err
	}
	if list.ID() == "" {
		return "", domain.ProtocolError(string(op), "task list %q has no id", list.Title())
	}
	return s.baseURI + "/lists/" + url.PathEscape(list.ID()) + "/tasks", nil
}

// QueryAllTasklists lists the user's task lists.
func (s *Service) QueryAllTasklists(ctx context.Context, q query.Querier) (*model.Feed, error) {
	if err := s.requireAuth(services.OpQuery); err != nil {
		return nil, err
	}
	return s.Query(ctx, &AuthorizationDomain, s.baseURI+"/users/@me/lists", q, tasklistFactory)
}

// QueryTasks lists the tasks of a list.
func (s *Service) QueryTasks(ctx context.Context, list *Tasklist, q query.Querier) (*model.Feed, error) {
	uri, err := s.tasksURI(services.OpQuery, list)
	if err != nil {
		return nil, err
	}
	return s.Query(ctx, &AuthorizationDomain, uri, q, taskFactory)
}

// QueryTasksAsync runs QueryTasks in the background.
func (s *Service) QueryTasksAsync(ctx context.Context, list *Tasklist, q query.Querier) *services.Operation[*model.Feed] {
	return services.Go(ctx, func(ctx context.Context) (*model.Feed, error) {
		return s.QueryTasks(ctx, list, q)
	})
}

// InsertTasklist creates a task list.
func (s *Service) InsertTasklist(ctx context.Context, list *Tasklist) (*Tasklist, error) {
	out, err := s.Insert(ctx, &AuthorizationDomain, s.baseURI+"/users/@me/lists", list)
	if err != nil {
		return nil, err
	}
	return out.(*Tasklist), nil
}

// InsertTask adds a task to a list.
func (s *Service) InsertTask(ctx context.Context, task *Task, list *Tasklist) (*Task, error) {
	uri, err := s.tasksURI(services.OpInsert, list)
	if err != nil {
		return nil, err
	}
	out, err := s.Insert(ctx, &AuthorizationDomain, uri, task)
	if err != nil {
		return nil, err
	}
	return out.(*Task), nil
}

// UpdateTask replaces a task through its self link.
func (s *Service) UpdateTask(ctx context.Context, task *Task) (*Task, error) {
	out, err := s.Update(ctx, &AuthorizationDomain, task)
	if err != nil {
		return nil, err
	}
	return out.(*Task), nil
}

// DeleteTask removes a task through its self link.
func (s *Service) DeleteTask(ctx context.Context, task *Task) error {
	return s.Delete(ctx, &AuthorizationDomain, task)
}

func tasklistFactory() model.Entity { return &Tasklist{} }

func taskFactory() model.Entity { return &Task{} }

package services

import (
	"context"
	"sync"

	"github.com/custodia-labs/gdata/internal/core/domain"
	"github.com/custodia-labs/gdata/internal/core/model"
	"github.com/custodia-labs/gdata/internal/core/query"
)

// Operation is a call running in the background. It reaches exactly one
// terminal outcome: a value, an error, or cancellation.
type Operation[T any] struct {
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once

	value T
	err   error
}

// Go runs fn in a new goroutine. Cancelling ctx or calling Cancel aborts the
// request fn is making.
func Go[T any](ctx context.Context, fn func(ctx context.Context) (T, error)) *Operation[T] {
	ctx, cancel := context.WithCancel(ctx)
	op := &Operation[T]{cancel: cancel, done: make(chan struct{})}

	go func() {
		v, err := fn(ctx)
		if err == nil && ctx.Err() != nil {
			var zero T
			v, err = zero, domain.Cancelled(ctx.Err())
		}
		op.finish(v, err)
	}()

	return op
}

func (o *Operation[T]) finish(v T, err error) {
	o.once.Do(func() {
		o.value, o.err = v, err
		close(o.done)
	})
	o.cancel()
}

// Cancel aborts the operation. If it has not finished yet, its outcome is
// cancellation and any result produced afterwards is discarded.
func (o *Operation[T]) Cancel() {
	var zero T
	o.finish(zero, domain.Cancelled(context.Canceled))
}

// Done is closed when the outcome is known.
func (o *Operation[T]) Done() <-chan struct{} { return o.done }

// Wait blocks until the outcome is known and returns it.
func (o *Operation[T]) Wait() (T, error) {
	<-o.done
	return o.value, o.err
}

// Then calls fn with the outcome on its own goroutine once it is known.
func (o *Operation[T]) Then(fn func(T, error)) {
	go func() {
		fn(o.Wait())
	}()
}

// QueryAsync runs Query in the background. q must not be touched until the
// operation is done.
func (s *Service) QueryAsync(ctx context.Context, ad *domain.AuthorizationDomain, feedURI string,
	q query.Querier, factory model.EntryFactory) *Operation[*model.Feed] {
	return Go(ctx, func(ctx context.Context) (*model.Feed, error) {
		return s.Query(ctx, ad, feedURI, q, factory)
	})
}

// QueryEntryAsync runs QueryEntry in the background.
func (s *Service) QueryEntryAsync(ctx context.Context, ad *domain.AuthorizationDomain, entryURI, ifNoneMatch string,
	factory model.EntryFactory) *Operation[model.Entity] {
	return Go(ctx, func(ctx context.Context) (model.Entity, error) {
		return s.QueryEntry(ctx, ad, entryURI, ifNoneMatch, factory)
	})
}

// InsertAsync runs Insert in the background.
func (s *Service) InsertAsync(ctx context.Context, ad *domain.AuthorizationDomain, uri string,
	entry model.Entity) *Operation[model.Entity] {
	return Go(ctx, func(ctx context.Context) (model.Entity, error) {
		return s.Insert(ctx, ad, uri, entry)
	})
}

// UpdateAsync runs Update in the background.
func (s *Service) UpdateAsync(ctx context.Context, ad *domain.AuthorizationDomain, entry model.Entity) *Operation[model.Entity] {
	// Resolve the edit link now so a missing one panics in the caller.
	editURI(entry, OpUpdate)
	return Go(ctx, func(ctx context.Context) (model.Entity, error) {
		return s.Update(ctx, ad, entry)
	})
}

// DeleteAsync runs Delete in the background.
func (s *Service) DeleteAsync(ctx context.Context, ad *domain.AuthorizationDomain, entry model.Entity) *Operation[struct{}] {
	editURI(entry, OpDelete)
	return Go(ctx, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, s.Delete(ctx, ad, entry)
	})
}

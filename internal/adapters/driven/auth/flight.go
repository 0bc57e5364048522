package auth

import (
	"context"

	"golang.org/x/sync/singleflight"

	"github.com/custodia-labs/gdata/internal/core/domain"
)

// refreshShared runs fn once for all concurrent callers of key. fn gets a
// context that outlives any single caller, so one caller giving up does not
// fail the refresh for the others; that caller alone returns ErrCancelled.
func refreshShared(ctx context.Context, group *singleflight.Group, key string, fn func(context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return domain.Cancelled(err)
	}

	shared := context.WithoutCancel(ctx)
	ch := group.DoChan(key, func() (any, error) {
		return nil, fn(shared)
	})

	select {
	case res := <-ch:
		return res.Err
	case <-ctx.Done():
		return domain.Cancelled(ctx.Err())
	}
}

package identity

import (
	"context"

	"spacebook/pkg/model"
)

type contextKey struct{}

func WithRequester(ctx context.Context, r model.Requester) context.Context {
	return context.WithValue(ctx, contextKey{}, r)
}

// FromContext returns the authenticated requester, or the anonymous zero value.
func FromContext(ctx context.Context) model.Requester {
	r, _ := ctx.Value(contextKey{}).(model.Requester)
	return r
}

package scope

import (
	"context"

	"github.com/aretw0/sessionscope/pkg/domain"
	"github.com/aretw0/sessionscope/pkg/ports"
)

type sessionKey struct{}

type cacheKey struct{}

// WithSession returns a child context bound to s.
func WithSession(ctx context.Context, s ports.Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

// SessionFrom returns the session bound to ctx, if any.
func SessionFrom(ctx context.Context) (ports.Session, bool) {
	s, ok := ctx.Value(sessionKey{}).(ports.Session)
	return s, ok && s != nil
}

// WithRequestCache returns a child context bound to c.
func WithRequestCache(ctx context.Context, c *RequestCache) context.Context {
	return context.WithValue(ctx, cacheKey{}, c)
}

// RequestCacheFrom returns the request cache bound to ctx, or nil.
func RequestCacheFrom(ctx context.Context) *RequestCache {
	c, _ := ctx.Value(cacheKey{}).(*RequestCache)
	return c
}

// Provider implements ports.ContextProvider over the helpers of this package.
type Provider struct{}

var _ ports.ContextProvider = Provider{}

// Session returns the bound session or domain.ErrNoSession.
func (Provider) Session(ctx context.Context) (ports.Session, error) {
	s, ok := SessionFrom(ctx)
	if !ok {
		return nil, domain.ErrNoSession
	}
	return s, nil
}

// Cache returns the bound request cache, or nil when there is none.
func (Provider) Cache(ctx context.Context) ports.AttributeCache {
	if c := RequestCacheFrom(ctx); c != nil {
		return c
	}
	return nil
}

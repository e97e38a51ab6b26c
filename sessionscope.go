package sessionscope

import (
	"context"
	_ "embed"

	"github.com/aretw0/sessionscope/pkg/adapters/memory"
	"github.com/aretw0/sessionscope/pkg/ports"
	"github.com/aretw0/sessionscope/pkg/scope"
	"github.com/aretw0/sessionscope/pkg/session"
	"github.com/aretw0/sessionscope/pkg/singleton"
)

// Version is the library version.
//
//go:embed VERSION
var Version string

// Factory builds the session instance of T.
type Factory[T any] = singleton.Factory[T]

// Define declares a session singleton of T built by factory.
func Define[T any](factory Factory[T]) *singleton.Singleton[T] {
	return singleton.Define(factory)
}

// Get returns the instance of T owned by the session bound to ctx,
// constructing it with factory on first use.
func Get[T any](ctx context.Context, factory Factory[T]) (T, error) {
	return singleton.Get(ctx, factory)
}

// Bind prepares ctx for one request of sess: it binds the session and a
// fresh request cache.
func Bind(ctx context.Context, sess ports.Session) context.Context {
	ctx = scope.WithSession(ctx, sess)
	return scope.WithRequestCache(ctx, scope.NewRequestCache())
}

// NewManager creates a session Manager persisting metadata to index.
// A nil index keeps metadata in memory.
func NewManager(index ports.SessionIndex, opts ...session.Option) *session.Manager {
	if index == nil {
		index = memory.NewStore()
	}
	return session.NewManager(index, opts...)
}

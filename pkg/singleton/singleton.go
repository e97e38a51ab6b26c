package singleton

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"reflect"
	"time"

	"github.com/aretw0/sessionscope/internal/logging"
	"github.com/aretw0/sessionscope/internal/metrics"
	"github.com/aretw0/sessionscope/pkg/domain"
	"github.com/aretw0/sessionscope/pkg/keys"
	"github.com/aretw0/sessionscope/pkg/ports"
	"github.com/aretw0/sessionscope/pkg/scope"
)

// Factory builds the session instance of T. It receives the context of the
// first Get, so it may resolve other singletons of the same session.
type Factory[T any] func(ctx context.Context) (T, error)

// Accessor resolves session singletons against a ContextProvider.
// It is safe for concurrent use.
type Accessor struct {
	provider ports.ContextProvider
	keys     *keys.Cache
	logger   *slog.Logger
}

// Option configures an Accessor.
type Option func(*Accessor)

// WithProvider replaces the context provider (default scope.Provider).
func WithProvider(p ports.ContextProvider) Option {
	return func(a *Accessor) {
		a.provider = p
	}
}

// WithKeyCache replaces the key cache (default keys.Default).
func WithKeyCache(c *keys.Cache) Option {
	return func(a *Accessor) {
		a.keys = c
	}
}

// WithLogger configures a logger for construction events.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Accessor) {
		a.logger = logger
	}
}

// NewAccessor creates an Accessor.
func NewAccessor(opts ...Option) *Accessor {
	a := &Accessor{
		provider: scope.Provider{},
		keys:     keys.Default,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Default is the accessor used by Get and Define.
var Default = NewAccessor()

// Keys returns the key cache of the accessor.
func (a *Accessor) Keys() *keys.Cache { return a.keys }

// Singleton is a declared session singleton of type T.
type Singleton[T any] struct {
	accessor *Accessor
	factory  Factory[T]
	name     string
}

// Define declares a singleton resolved through the Default accessor.
func Define[T any](factory Factory[T]) *Singleton[T] {
	return For(Default, factory)
}

// For declares a singleton resolved through accessor a.
func For[T any](a *Accessor, factory Factory[T]) *Singleton[T] {
	return &Singleton[T]{
		accessor: a,
		factory:  factory,
		name:     keys.NameOf[T](),
	}
}

// Name returns the fully-qualified type name the singleton is keyed by.
func (s *Singleton[T]) Name() string { return s.name }

// Get returns the instance of T owned by the session bound to ctx,
// constructing it on first use.
func (s *Singleton[T]) Get(ctx context.Context) (T, error) {
	return resolve(ctx, s.accessor, s.name, s.factory)
}

// MustGet is Get that panics on error.
func (s *Singleton[T]) MustGet(ctx context.Context) T {
	v, err := s.Get(ctx)
	if err != nil {
		panic(err)
	}
	return v
}

// Get resolves the session instance of T through the Default accessor.
func Get[T any](ctx context.Context, factory Factory[T]) (T, error) {
	return Resolve(ctx, Default, factory)
}

// Resolve resolves the session instance of T through accessor a.
func Resolve[T any](ctx context.Context, a *Accessor, factory Factory[T]) (T, error) {
	return resolve(ctx, a, keys.NameOf[T](), factory)
}

func resolve[T any](ctx context.Context, a *Accessor, name string, factory Factory[T]) (T, error) {
	var zero T
	key := a.keys.InstanceKey(name)

	cache := a.provider.Cache(ctx)
	if cache != nil {
		if v, ok := cache.Get(key); ok {
			inst, err := typed[T](name, v)
			if err != nil {
				return zero, err
			}
			metrics.SingletonLookups.WithLabelValues(metrics.PathRequestCache).Inc()
			return inst, nil
		}
	}

	sess, err := a.provider.Session(ctx)
	if err != nil {
		return zero, fmt.Errorf("resolve session singleton %s: %w", name, err)
	}

	if constructing(ctx, sess.ID(), key) {
		err := &domain.ConstructionError{TypeName: name, Cause: domain.CauseCycle, Err: domain.ErrCyclicConstruction}
		metrics.ConstructionFailures.WithLabelValues(string(err.Cause)).Inc()
		return zero, err
	}

	inst, err := instance(ctx, a, sess, name, key, factory)
	if err != nil {
		return zero, err
	}

	if cache != nil {
		cache.Set(key, inst)
	}
	return inst, nil
}

// instance returns the session attribute for key, constructing it under the
// per-type lock when absent.
func instance[T any](ctx context.Context, a *Accessor, sess ports.Session, name, key string, factory Factory[T]) (T, error) {
	var zero T

	lock := sess.TypeLock(a.keys.LockKey(name))
	lock.Lock()
	defer lock.Unlock()

	if v, ok := sess.Attribute(key); ok {
		inst, err := typed[T](name, v)
		if err != nil {
			return zero, err
		}
		metrics.SingletonLookups.WithLabelValues(metrics.PathSession).Inc()
		return inst, nil
	}

	inst, err := construct(markConstructing(ctx, sess.ID(), key), name, factory)
	if err != nil {
		cause := "unknown"
		if ce, ok := err.(*domain.ConstructionError); ok {
			cause = string(ce.Cause)
		}
		metrics.ConstructionFailures.WithLabelValues(cause).Inc()
		a.logger.Error("session singleton construction failed",
			"type", name,
			"session_id", sess.ID(),
			"err", err,
		)
		return zero, err
	}

	if err := sess.SetAttribute(key, inst); err != nil {
		// Invalidate already ran its close pass; this instance missed it.
		if c, ok := any(inst).(io.Closer); ok {
			if cerr := c.Close(); cerr != nil {
				a.logger.Warn("failed to close orphaned session singleton",
					"type", name,
					"session_id", sess.ID(),
					"err", cerr,
				)
			}
		}
		return zero, fmt.Errorf("store %s: %w", name, err)
	}
	metrics.SingletonLookups.WithLabelValues(metrics.PathConstructed).Inc()
	a.logger.Debug("session singleton constructed", "type", name, "session_id", sess.ID())
	return inst, nil
}

func construct[T any](ctx context.Context, name string, factory Factory[T]) (inst T, err error) {
	var zero T
	if factory == nil {
		return zero, &domain.ConstructionError{TypeName: name, Cause: domain.CauseNoFactory}
	}

	start := time.Now()
	defer func() {
		metrics.ConstructionDuration.Observe(time.Since(start).Seconds())
		if r := recover(); r != nil {
			inst = zero
			err = &domain.ConstructionError{TypeName: name, Cause: domain.CausePanic, Err: fmt.Errorf("%v", r)}
		}
	}()

	inst, err = factory(ctx)
	if err != nil {
		return zero, &domain.ConstructionError{TypeName: name, Cause: domain.CauseFactoryErr, Err: err}
	}
	if isNil(inst) {
		return zero, &domain.ConstructionError{TypeName: name, Cause: domain.CauseNilInstance}
	}
	return inst, nil
}

func typed[T any](name string, v any) (T, error) {
	inst, ok := v.(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("%w: %s holds %T", domain.ErrTypeMismatch, name, v)
	}
	return inst, nil
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Func, reflect.Chan, reflect.UnsafePointer:
		return rv.IsNil()
	}
	return false
}

// frame marks a (session, key) pair under construction on the current call chain.
type frame struct {
	session string
	key     string
	parent  *frame
}

type frameKey struct{}

func markConstructing(ctx context.Context, sessionID, key string) context.Context {
	parent, _ := ctx.Value(frameKey{}).(*frame)
	return context.WithValue(ctx, frameKey{}, &frame{session: sessionID, key: key, parent: parent})
}

func constructing(ctx context.Context, sessionID, key string) bool {
	f, _ := ctx.Value(frameKey{}).(*frame)
	for ; f != nil; f = f.parent {
		if f.session == sessionID && f.key == key {
			return true
		}
	}
	return false
}

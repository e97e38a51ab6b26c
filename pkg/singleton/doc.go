/*
Package singleton provides session singletons: exactly one lazily constructed
instance of a type per user session.

A singleton is declared once with its factory and resolved from any code that
holds a context bound to a session (see package scope):

	var cart = singleton.Define(func(ctx context.Context) (*Cart, error) {
		return &Cart{}, nil
	})

	func handler(w http.ResponseWriter, r *http.Request) {
		c, err := cart.Get(r.Context())
		...
	}

# Resolution

The instance key is derived from the fully-qualified name of the type and
memoized by package keys. A Get first consults the request cache bound to the
context, if any, without locking. On a miss it takes the per-type lock of the
session, reads the session attribute, runs the factory when the attribute is
absent and stores the result. The instance is then published to the request
cache. Construction therefore happens at most once per (session, type), even
when concurrent requests of one session race on first access.

# Errors

A factory failure is a configuration defect. It is reported as a
*domain.ConstructionError matching domain.ErrConstruction, is never retried,
and leaves no attribute behind. A factory asking for its own type while it is
being built fails with domain.ErrCyclicConstruction instead of deadlocking.
*/
package singleton

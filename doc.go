/*
Package sessionscope provides session singletons for Go servers: exactly one
lazily constructed instance of a type per user session.

Where a process-wide singleton is shared by every user, a session singleton is
shared only by the requests of one session. The first access in a session
constructs the instance; every later access of that session, from any
goroutine, returns the same object. Other sessions get their own.

# Concept

A host (HTTP middleware, job runner, test) binds the current session to a
context.Context. Code anywhere below it asks for an instance by type:

	type Cart struct{ Items []string }

	var cart = sessionscope.Define(func(ctx context.Context) (*Cart, error) {
		return &Cart{}, nil
	})

	func addItem(ctx context.Context, item string) error {
		c, err := cart.Get(ctx)
		if err != nil {
			return err
		}
		c.Items = append(c.Items, item)
		return nil
	}

# Key Features

  - Single construction: concurrent first access of one session runs the factory once.
  - Per-type locking: unrelated singletons never wait on each other.
  - Request cache: repeated lookups within a request skip the session lock.
  - Session lifecycle: TTL expiry, sweeping, and io.Closer cleanup on destroy.
  - Pluggable index: memory, file, or Redis metadata with optional distributed locking.

# Usage

	mgr := sessionscope.NewManager(nil)
	sess, _ := mgr.Create(ctx)
	ctx = sessionscope.Bind(ctx, sess)
	c, _ := cart.Get(ctx)

See package singleton for the resolution algorithm and error taxonomy, and
cmd/sessionscope for a ready HTTP host.
*/
package sessionscope

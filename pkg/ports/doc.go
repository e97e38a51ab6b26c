/*
Package ports defines the driven ports (interfaces) of sessionscope.

These interfaces decouple the singleton accessor from the surrounding host,
allowing it to run inside any HTTP stack, test harness, or job runner that can
put a session into a context.Context.

# Key Interfaces

  - Session: named attributes plus a per-key lock registry, scoped to one user.
  - AttributeCache: a cheaper, request-scoped mirror of session attributes.
  - ContextProvider: resolves the current Session and AttributeCache from a context.
  - SessionIndex: persists session Metadata (memory, file, Redis).
  - DistributedLocker: coordinates session lifecycle changes across replicas.
*/
package ports

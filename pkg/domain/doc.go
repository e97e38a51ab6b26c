/*
Package domain contains the core models shared by every sessionscope package.

It defines the session metadata persisted by index stores, the key naming
constants used for session singletons, and the error taxonomy surfaced to
callers. This package is kept pure and free of I/O, following Hexagonal
Architecture principles.

# Key Entities

  - Metadata: the persisted description of a session (ID, timestamps, TTL).
  - ConstructionError: the single failure category for singleton construction.
*/
package domain

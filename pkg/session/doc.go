/*
Package session implements user sessions and their lifecycle.

A Session holds named attributes and a registry of per-key locks used by the
singleton accessor to serialize construction. The Manager creates, resolves,
expires and destroys sessions, persisting their metadata through a
ports.SessionIndex and serializing lifecycle changes of each session with a
reference-counted local lock and an optional distributed lock.
*/
package session

/*
Package scope carries the ambient session state of a call in a context.Context.

Hosts bind the current session with WithSession and, optionally, a fresh
RequestCache per request with WithRequestCache. Provider reads both back and
implements ports.ContextProvider for the singleton accessor.
*/
package scope

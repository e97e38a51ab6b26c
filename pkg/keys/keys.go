// Package keys derives the session attribute names used by session singletons.
//
// Deriving a key concatenates a prefix with a type name. The lookup sits on
// the hot path of every singleton access, so each name is built once and
// memoized in a Cache. A Cache is append-only: a derived key is a pure
// function of the type name and never changes, so entries are never evicted.
// The number of entries is bounded by the number of distinct singleton types
// in the program.
package keys

import (
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/aretw0/sessionscope/pkg/domain"
)

// Default is the process-wide cache. It is never cleared.
var Default = New()

type entry struct {
	instance string
	lock     string
}

// Cache memoizes instance and lock keys by type name.
// It is safe for concurrent use.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]entry
	prefix  string
	suffix  string
}

// Option configures a Cache.
type Option func(*Cache)

// WithPrefix overrides the instance key prefix.
func WithPrefix(prefix string) Option { return func(c *Cache) { c.prefix = prefix } }

// WithLockSuffix overrides the suffix appended to lock keys.
func WithLockSuffix(suffix string) Option { return func(c *Cache) { c.suffix = suffix } }

// New creates an empty Cache using the domain naming constants.
func New(opts ...Option) *Cache {
	c := &Cache{
		entries: make(map[string]entry),
		prefix:  domain.SingletonKeyPrefix,
		suffix:  domain.LockKeySuffix,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// InstanceKey returns the attribute key under which the singleton of the named
// type is stored.
func (c *Cache) InstanceKey(typeName string) string {
	return c.lookup(typeName).instance
}

// LockKey returns the key naming the per-type lock of the named type.
func (c *Cache) LockKey(typeName string) string {
	return c.lookup(typeName).lock
}

// Len reports how many type names have been memoized.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *Cache) lookup(typeName string) entry {
	c.mu.RLock()
	e, ok := c.entries[typeName]
	c.mu.RUnlock()
	if ok {
		return e
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[typeName]; ok {
		return e
	}
	instance := c.prefix + typeName
	e = entry{instance: instance, lock: instance + c.suffix}
	c.entries[typeName] = e
	return e
}

// TypeName returns the fully-qualified name of t: "import/path.Name" for named
// types, and Go syntax with every named component qualified otherwise
// (e.g. "*app/prefs.Prefs", "[]*text/template.Template", "map[string]int").
func TypeName(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}
	if t.Name() != "" {
		if t.PkgPath() != "" {
			return t.PkgPath() + "." + t.Name()
		}
		return t.Name()
	}

	switch t.Kind() {
	case reflect.Pointer:
		return "*" + TypeName(t.Elem())
	case reflect.Slice:
		return "[]" + TypeName(t.Elem())
	case reflect.Array:
		return "[" + strconv.Itoa(t.Len()) + "]" + TypeName(t.Elem())
	case reflect.Map:
		return "map[" + TypeName(t.Key()) + "]" + TypeName(t.Elem())
	case reflect.Chan:
		switch t.ChanDir() {
		case reflect.RecvDir:
			return "<-chan " + TypeName(t.Elem())
		case reflect.SendDir:
			return "chan<- " + TypeName(t.Elem())
		}
		if t.Elem().Kind() == reflect.Chan && t.Elem().ChanDir() == reflect.RecvDir {
			return "chan (" + TypeName(t.Elem()) + ")"
		}
		return "chan " + TypeName(t.Elem())
	case reflect.Func:
		return "func" + signature(t)
	case reflect.Struct:
		return structName(t)
	case reflect.Interface:
		return interfaceName(t)
	}
	return t.String()
}

func signature(t reflect.Type) string {
	var b strings.Builder
	b.WriteByte('(')
	for i := 0; i < t.NumIn(); i++ {
		if i > 0 {
			b.WriteString(", ")
		}
		if t.IsVariadic() && i == t.NumIn()-1 {
			b.WriteString("..." + TypeName(t.In(i).Elem()))
			continue
		}
		b.WriteString(TypeName(t.In(i)))
	}
	b.WriteByte(')')

	switch t.NumOut() {
	case 0:
	case 1:
		b.WriteString(" " + TypeName(t.Out(0)))
	default:
		b.WriteString(" (")
		for i := 0; i < t.NumOut(); i++ {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(TypeName(t.Out(i)))
		}
		b.WriteByte(')')
	}
	return b.String()
}

func structName(t reflect.Type) string {
	if t.NumField() == 0 {
		return "struct {}"
	}
	var b strings.Builder
	b.WriteString("struct {")
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if i > 0 {
			b.WriteByte(';')
		}
		b.WriteByte(' ')
		// Unexported field names are package-scoped.
		if f.PkgPath != "" {
			b.WriteString(f.PkgPath + ".")
		}
		if !f.Anonymous || f.PkgPath != "" {
			b.WriteString(f.Name + " ")
		}
		b.WriteString(TypeName(f.Type))
		if f.Tag != "" {
			b.WriteString(" " + strconv.Quote(string(f.Tag)))
		}
	}
	b.WriteString(" }")
	return b.String()
}

func interfaceName(t reflect.Type) string {
	if t.NumMethod() == 0 {
		return "interface {}"
	}
	var b strings.Builder
	b.WriteString("interface {")
	for i := 0; i < t.NumMethod(); i++ {
		m := t.Method(i)
		if i > 0 {
			b.WriteByte(';')
		}
		b.WriteByte(' ')
		if m.PkgPath != "" {
			b.WriteString(m.PkgPath + ".")
		}
		b.WriteString(m.Name + signature(m.Type))
	}
	b.WriteString(" }")
	return b.String()
}

// NameOf returns TypeName for the type parameter T.
func NameOf[T any]() string {
	return TypeName(reflect.TypeFor[T]())
}

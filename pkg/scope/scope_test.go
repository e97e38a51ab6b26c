package scope_test

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/sessionscope/pkg/domain"
	"github.com/aretw0/sessionscope/pkg/scope"
	"github.com/aretw0/sessionscope/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProvider_Session(t *testing.T) {
	var p scope.Provider
	ctx := context.Background()

	_, err := p.Session(ctx)
	assert.ErrorIs(t, err, domain.ErrNoSession)

	s := session.New("s1", time.Now(), 0)
	got, err := p.Session(scope.WithSession(ctx, s))
	require.NoError(t, err)
	assert.Equal(t, "s1", got.ID())
}

func TestProvider_Cache(t *testing.T) {
	var p scope.Provider
	ctx := context.Background()

	assert.Nil(t, p.Cache(ctx), "no cache must be a nil interface, not a typed nil")

	c := scope.NewRequestCache()
	got := p.Cache(scope.WithRequestCache(ctx, c))
	require.NotNil(t, got)
	got.Set("k", 1)
	assert.Equal(t, 1, c.Len())
}

func TestRequestCache_NilIsUsable(t *testing.T) {
	var c *scope.RequestCache

	c.Set("k", 1)
	_, ok := c.Get("k")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())
}

func TestRequestCache_GetSet(t *testing.T) {
	c := scope.NewRequestCache()

	c.Set("a", "x")
	v, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, "x", v)

	_, ok = c.Get("b")
	assert.False(t, ok)
}

package drover_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomyan/drover"
	"github.com/tomyan/drover/internal/sessiontest"
)

func newJar(t *testing.T) (*drover.CookieJar, *sessiontest.Session) {
	t.Helper()
	sess := sessiontest.MustNew(t, `<html><body></body></html>`)
	return drover.NewCookieJar(sess), sess
}

func TestCookieJarAddAndNamed(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	jar, _ := newJar(t)

	expiry := time.Date(2027, 1, 2, 3, 4, 5, 0, time.UTC)
	require.NoError(t, jar.Add(ctx, drover.Cookie{
		Name:   "session",
		Value:  "abc123",
		Domain: "example.test",
		Secure: true,
		Expiry: expiry,
	}))

	c, ok, err := jar.Named(ctx, "session")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "abc123", c.Value)
	assert.Equal(t, "/", c.Path, "empty path defaults to /")
	assert.True(t, c.Secure)
	assert.Equal(t, expiry, c.Expiry)
}

func TestCookieJarNamedAbsent(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	jar, _ := newJar(t)

	_, ok, err := jar.Named(ctx, "missing")
	require.NoError(t, err, "an absent cookie is not a failure")
	assert.False(t, ok)
}

func TestCookieJarOverwriteByName(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	jar, _ := newJar(t)

	require.NoError(t, jar.Add(ctx, drover.Cookie{Name: "theme", Value: "dark"}))
	require.NoError(t, jar.Add(ctx, drover.Cookie{Name: "theme", Value: "light"}))

	all, err := jar.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1, "cookies form a set keyed by name")
	assert.Equal(t, "light", all[0].Value)
}

func TestCookieJarDelete(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	jar, _ := newJar(t)

	require.NoError(t, jar.Add(ctx, drover.Cookie{Name: "a", Value: "1"}))
	require.NoError(t, jar.Add(ctx, drover.Cookie{Name: "b", Value: "2"}))

	require.NoError(t, jar.DeleteNamed(ctx, "a"))
	_, ok, err := jar.Named(ctx, "a")
	require.NoError(t, err)
	assert.False(t, ok)

	// Deleting a cookie that does not exist is a no-op.
	require.NoError(t, jar.DeleteNamed(ctx, "a"))

	c, ok, err := jar.Named(ctx, "b")
	require.NoError(t, err)
	require.True(t, ok)
	require.NoError(t, jar.Delete(ctx, c))

	all, err := jar.All(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestCookieJarDeleteAll(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	jar, _ := newJar(t)

	for _, name := range []string{"a", "b", "c"} {
		require.NoError(t, jar.Add(ctx, drover.Cookie{Name: name, Value: "v"}))
	}
	require.NoError(t, jar.DeleteAll(ctx))

	all, err := jar.All(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestCookieJarClosedSession(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	jar, sess := newJar(t)
	require.NoError(t, sess.Close(ctx))

	err := jar.Add(ctx, drover.Cookie{Name: "late", Value: "v"})
	require.Error(t, err)
	assert.ErrorIs(t, err, drover.ErrConnectionClosed)
}

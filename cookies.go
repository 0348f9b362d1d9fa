package drover

import (
	"context"
	"time"
)

// Cookie is one browser cookie. Cookies are created client-side, sent to
// the session with Add, and destroyed with an explicit delete or a
// session-wide clear; they are never mutated in place — changing a cookie
// means delete and re-add.
type Cookie struct {
	Name     string
	Value    string
	Path     string // defaults to "/" when added
	Domain   string
	Secure   bool
	HTTPOnly bool
	Expiry   time.Time // zero value means a session cookie
}

// CookieJar wraps a session's cookie CRUD. Within one session cookies form
// a set keyed by name: adding a cookie whose name already exists overwrites
// the prior value. The order of All is unspecified.
type CookieJar struct {
	sess CookieCapable
}

// NewCookieJar returns a jar over the given session capability.
func NewCookieJar(s CookieCapable) *CookieJar {
	return &CookieJar{sess: s}
}

// Add stores the cookie, overwriting any cookie of the same name. An empty
// Path is defaulted to "/".
func (j *CookieJar) Add(ctx context.Context, c Cookie) error {
	if c.Path == "" {
		c.Path = "/"
	}
	return j.sess.AddCookie(ctx, c)
}

// All returns every cookie in the session, in no particular order.
func (j *CookieJar) All(ctx context.Context) ([]Cookie, error) {
	return j.sess.Cookies(ctx)
}

// Named returns the cookie with the given name. A missing cookie is an
// ordinary absent result, not a failure, mirroring FindOne.
func (j *CookieJar) Named(ctx context.Context, name string) (Cookie, bool, error) {
	all, err := j.sess.Cookies(ctx)
	if err != nil {
		return Cookie{}, false, err
	}
	for _, c := range all {
		if c.Name == name {
			return c, true, nil
		}
	}
	return Cookie{}, false, nil
}

// DeleteNamed removes the cookie with the given name.
func (j *CookieJar) DeleteNamed(ctx context.Context, name string) error {
	return j.sess.DeleteCookie(ctx, name)
}

// Delete removes the given cookie by name.
func (j *CookieJar) Delete(ctx context.Context, c Cookie) error {
	return j.sess.DeleteCookie(ctx, c.Name)
}

// DeleteAll removes every cookie in the session.
func (j *CookieJar) DeleteAll(ctx context.Context) error {
	return j.sess.DeleteAllCookies(ctx)
}

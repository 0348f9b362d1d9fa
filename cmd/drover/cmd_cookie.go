package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/tomyan/drover"
)

// cookieJSON is the wire shape of one cookie.
type cookieJSON struct {
	Name     string `json:"name"`
	Value    string `json:"value"`
	Path     string `json:"path,omitempty"`
	Domain   string `json:"domain,omitempty"`
	Secure   bool   `json:"secure,omitempty"`
	HTTPOnly bool   `json:"httpOnly,omitempty"`
	Expiry   string `json:"expiry,omitempty"` // RFC 3339; absent for session cookies
}

func toCookieJSON(c drover.Cookie) cookieJSON {
	out := cookieJSON{
		Name:     c.Name,
		Value:    c.Value,
		Path:     c.Path,
		Domain:   c.Domain,
		Secure:   c.Secure,
		HTTPOnly: c.HTTPOnly,
	}
	if !c.Expiry.IsZero() {
		out.Expiry = c.Expiry.Format(time.RFC3339)
	}
	return out
}

// CookieListResult is returned by the cookies command.
type CookieListResult struct {
	Cookies []cookieJSON `json:"cookies"`
}

func cmdCookies(cfg *Config) int {
	return withSession(cfg, func(ctx context.Context, sess drover.Session) (interface{}, error) {
		all, err := drover.NewCookieJar(sess).All(ctx)
		if err != nil {
			return nil, err
		}
		out := make([]cookieJSON, len(all))
		for i, c := range all {
			out[i] = toCookieJSON(c)
		}
		return CookieListResult{Cookies: out}, nil
	})
}

// CookieResult is returned by the cookie-get command.
type CookieResult struct {
	Found  bool   `json:"found"`
	Name   string `json:"name"`
	Value  string `json:"value,omitempty"`
	Path   string `json:"path,omitempty"`
	Domain string `json:"domain,omitempty"`
}

func cmdCookieGet(cfg *Config, name string) int {
	return withSession(cfg, func(ctx context.Context, sess drover.Session) (interface{}, error) {
		c, ok, err := drover.NewCookieJar(sess).Named(ctx, name)
		if err != nil {
			return nil, err
		}
		if !ok {
			return CookieResult{Found: false, Name: name}, nil
		}
		return CookieResult{Found: true, Name: c.Name, Value: c.Value, Path: c.Path, Domain: c.Domain}, nil
	})
}

// SetCookieResult is returned by the cookie-set command.
type SetCookieResult struct {
	Set  bool   `json:"set"`
	Name string `json:"name"`
}

func cmdCookieSet(cfg *Config, args []string) int {
	fs := flag.NewFlagSet("cookie-set", flag.ContinueOnError)
	fs.SetOutput(cfg.Stderr)
	path := fs.String("path", "", "Cookie path (default /)")
	domain := fs.String("domain", "", "Cookie domain")
	secure := fs.Bool("secure", false, "Secure cookie")
	httpOnly := fs.Bool("http-only", false, "HTTP-only cookie")
	expires := fs.String("expires", "", "Expiry as RFC 3339; omit for a session cookie")

	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return ExitSuccess
		}
		return ExitError
	}

	remaining := fs.Args()
	if len(remaining) < 2 {
		fmt.Fprintln(cfg.Stderr, "usage: drover cookie-set [flags] <name> <value>")
		return ExitError
	}

	cookie := drover.Cookie{
		Name:     remaining[0],
		Value:    remaining[1],
		Path:     *path,
		Domain:   *domain,
		Secure:   *secure,
		HTTPOnly: *httpOnly,
	}
	if *expires != "" {
		t, err := time.Parse(time.RFC3339, *expires)
		if err != nil {
			fmt.Fprintf(cfg.Stderr, "error: invalid expiry: %v\n", err)
			return ExitError
		}
		cookie.Expiry = t
	}

	return withSession(cfg, func(ctx context.Context, sess drover.Session) (interface{}, error) {
		if err := drover.NewCookieJar(sess).Add(ctx, cookie); err != nil {
			return nil, err
		}
		return SetCookieResult{Set: true, Name: cookie.Name}, nil
	})
}

// DeleteCookieResult is returned by the cookie-delete and cookie-clear commands.
type DeleteCookieResult struct {
	Deleted bool   `json:"deleted"`
	Name    string `json:"name,omitempty"`
}

func cmdCookieDelete(cfg *Config, name string) int {
	return withSession(cfg, func(ctx context.Context, sess drover.Session) (interface{}, error) {
		if err := drover.NewCookieJar(sess).DeleteNamed(ctx, name); err != nil {
			return nil, err
		}
		return DeleteCookieResult{Deleted: true, Name: name}, nil
	})
}

func cmdCookieClear(cfg *Config) int {
	return withSession(cfg, func(ctx context.Context, sess drover.Session) (interface{}, error) {
		if err := drover.NewCookieJar(sess).DeleteAll(ctx); err != nil {
			return nil, err
		}
		return DeleteCookieResult{Deleted: true}, nil
	})
}

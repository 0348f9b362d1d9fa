package cdp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/tomyan/drover"
)

// wireCookie is the protocol's cookie shape; Expires is unix seconds.
type wireCookie struct {
	Name     string  `json:"name"`
	Value    string  `json:"value"`
	Domain   string  `json:"domain,omitempty"`
	Path     string  `json:"path,omitempty"`
	Expires  float64 `json:"expires,omitempty"`
	Secure   bool    `json:"secure,omitempty"`
	HTTPOnly bool    `json:"httpOnly,omitempty"`
}

// AddCookie stores a cookie in the browser. A cookie whose name already
// exists for the same domain and path is overwritten.
func (s *Session) AddCookie(ctx context.Context, c drover.Cookie) error {
	params := map[string]any{
		"name":  c.Name,
		"value": c.Value,
	}
	if c.Path != "" {
		params["path"] = c.Path
	}
	if c.Domain != "" {
		params["domain"] = c.Domain
	} else {
		// Network.setCookie needs a target; scope to the current page.
		url, err := s.URL(ctx)
		if err != nil {
			return err
		}
		params["url"] = url
	}
	if !c.Expiry.IsZero() {
		params["expires"] = float64(c.Expiry.Unix())
	}
	if c.Secure {
		params["secure"] = true
	}
	if c.HTTPOnly {
		params["httpOnly"] = true
	}

	if _, err := s.call(ctx, "Network.setCookie", params); err != nil {
		return s.wrap("add cookie", fmt.Errorf("setting cookie: %w", err))
	}
	return nil
}

// Cookies returns every cookie visible to the page, in no particular order.
func (s *Session) Cookies(ctx context.Context) ([]drover.Cookie, error) {
	result, err := s.call(ctx, "Network.getCookies", nil)
	if err != nil {
		return nil, s.wrap("cookies", fmt.Errorf("getting cookies: %w", err))
	}

	var resp struct {
		Cookies []wireCookie `json:"cookies"`
	}
	if err := json.Unmarshal(result, &resp); err != nil {
		return nil, s.wrap("cookies", fmt.Errorf("parsing cookies response: %w", err))
	}

	cookies := make([]drover.Cookie, 0, len(resp.Cookies))
	for _, wc := range resp.Cookies {
		c := drover.Cookie{
			Name:     wc.Name,
			Value:    wc.Value,
			Path:     wc.Path,
			Domain:   wc.Domain,
			Secure:   wc.Secure,
			HTTPOnly: wc.HTTPOnly,
		}
		if wc.Expires > 0 {
			c.Expiry = time.Unix(int64(wc.Expires), 0)
		}
		cookies = append(cookies, c)
	}
	return cookies, nil
}

// DeleteCookie removes every cookie with the given name.
func (s *Session) DeleteCookie(ctx context.Context, name string) error {
	url, err := s.URL(ctx)
	if err != nil {
		return err
	}
	if _, err := s.call(ctx, "Network.deleteCookies", map[string]any{
		"name": name,
		"url":  url,
	}); err != nil {
		return s.wrap("delete cookie", fmt.Errorf("deleting cookie: %w", err))
	}
	return nil
}

// DeleteAllCookies clears the browser's cookies.
func (s *Session) DeleteAllCookies(ctx context.Context) error {
	if _, err := s.call(ctx, "Network.clearBrowserCookies", nil); err != nil {
		return s.wrap("delete all cookies", fmt.Errorf("clearing cookies: %w", err))
	}
	return nil
}

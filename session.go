package drover

import "context"

// ElementID is an opaque reference to one element within one session. IDs
// become stale when the session navigates away or the element leaves the
// page; operations on a stale ID fail with a CommandError at call time, as
// staleness cannot be detected without a round trip.
type ElementID string

// Session is the remote collaborator boundary: one live browser-controlled
// session able to execute locator searches and element commands. It is a
// single-writer resource — the core performs no locking and assumes at most
// one in-flight command at a time; concurrent callers must serialize access.
//
// FindElement returns ErrNoSuchElement (possibly wrapped) for a clean miss.
// FindElements returns an empty slice for zero matches. Every other failure
// is reported as a *CommandError.
type Session interface {
	NavigateTo(ctx context.Context, url string) error
	Back(ctx context.Context) error
	Forward(ctx context.Context) error
	Refresh(ctx context.Context) error

	FindElement(ctx context.Context, by Locator) (ElementID, error)
	FindElements(ctx context.Context, by Locator) ([]ElementID, error)
	FindFromElement(ctx context.Context, root ElementID, by Locator) ([]ElementID, error)

	Click(ctx context.Context, id ElementID) error
	Submit(ctx context.Context, id ElementID) error
	Clear(ctx context.Context, id ElementID) error
	TagName(ctx context.Context, id ElementID) (string, error)
	Attribute(ctx context.Context, id ElementID, name string) (string, error)
	Text(ctx context.Context, id ElementID) (string, error)
	Enabled(ctx context.Context, id ElementID) (bool, error)
	Selected(ctx context.Context, id ElementID) (bool, error)
	Toggle(ctx context.Context, id ElementID) error
	SendKeys(ctx context.Context, id ElementID, text string) error

	CookieCapable

	// Close tears the session down. Errors are propagated; callers decide
	// whether teardown failures are fatal or merely logged.
	Close(ctx context.Context) error
}

// CookieCapable is the cookie slice of a Session.
type CookieCapable interface {
	AddCookie(ctx context.Context, c Cookie) error
	Cookies(ctx context.Context) ([]Cookie, error)
	DeleteCookie(ctx context.Context, name string) error
	DeleteAllCookies(ctx context.Context) error
}

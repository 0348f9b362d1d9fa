package drover

import (
	"context"
	"errors"
)

// Element is a reference to one element found within a session. It holds no
// connection of its own; every call delegates to the owning session. Results
// are never cached — the session is the source of truth.
type Element struct {
	sess Session
	id   ElementID
}

// NewElement binds an existing session-level handle. Most callers get
// elements from FindOne/FindAll instead.
func NewElement(s Session, id ElementID) *Element {
	return &Element{sess: s, id: id}
}

// ID returns the session-level handle for this element.
func (e *Element) ID() ElementID { return e.id }

// Session returns the owning session.
func (e *Element) Session() Session { return e.sess }

// Click clicks the element.
func (e *Element) Click(ctx context.Context) error {
	return e.sess.Click(ctx, e.id)
}

// Submit submits the form the element belongs to.
func (e *Element) Submit(ctx context.Context) error {
	return e.sess.Submit(ctx, e.id)
}

// Clear empties the element's value.
func (e *Element) Clear(ctx context.Context) error {
	return e.sess.Clear(ctx, e.id)
}

// TagName returns the element's tag name, lowercased.
func (e *Element) TagName(ctx context.Context) (string, error) {
	return e.sess.TagName(ctx, e.id)
}

// Attribute returns the value of the named attribute, or "" if the element
// does not carry it.
func (e *Element) Attribute(ctx context.Context, name string) (string, error) {
	return e.sess.Attribute(ctx, e.id, name)
}

// Text returns the element's rendered text.
func (e *Element) Text(ctx context.Context) (string, error) {
	return e.sess.Text(ctx, e.id)
}

// Enabled reports whether the element is interactable (not disabled).
func (e *Element) Enabled(ctx context.Context) (bool, error) {
	return e.sess.Enabled(ctx, e.id)
}

// Selected reports whether a checkbox, radio button, or option is currently
// selected.
func (e *Element) Selected(ctx context.Context) (bool, error) {
	return e.sess.Selected(ctx, e.id)
}

// Toggle flips the state of a checkbox or radio button. Applying it twice
// returns the element to its original state.
func (e *Element) Toggle(ctx context.Context) error {
	return e.sess.Toggle(ctx, e.id)
}

// SendKeys delivers text to the element as a sequence of character events.
// Existing content is not cleared first; call Clear for replacement.
func (e *Element) SendKeys(ctx context.Context, text string) error {
	return e.sess.SendKeys(ctx, e.id, text)
}

// FindAll searches beneath this element. As with the top-level FindAll,
// zero matches yields an empty slice, not an error.
func (e *Element) FindAll(ctx context.Context, by Locator) ([]*Element, error) {
	ids, err := e.sess.FindFromElement(ctx, e.id, by)
	if err != nil {
		if errors.Is(err, ErrNoSuchElement) {
			return []*Element{}, nil
		}
		return nil, err
	}
	return wrapAll(e.sess, ids), nil
}

// Capability views over an element. A concrete Element implements all of
// them; consumers that only need one aspect can accept the narrow interface.

// Clickable is anything that can receive a click.
type Clickable interface {
	Click(ctx context.Context) error
}

// TextCarrier exposes an element's textual surface.
type TextCarrier interface {
	Text(ctx context.Context) (string, error)
	Attribute(ctx context.Context, name string) (string, error)
}

// Selectable is a two-state control: a checkbox, radio button, or option.
type Selectable interface {
	Selected(ctx context.Context) (bool, error)
	Toggle(ctx context.Context) error
}

var (
	_ Clickable   = (*Element)(nil)
	_ TextCarrier = (*Element)(nil)
	_ Selectable  = (*Element)(nil)
)

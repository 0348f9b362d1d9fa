package cdp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tomyan/drover"
)

// Element commands. Each maps 1:1 onto a protocol round trip; there is no
// local caching and no precondition checking — a stale handle fails at call
// time with a CommandError.

// Click moves the mouse to the element's center and dispatches a press and
// release through the real input path.
func (s *Session) Click(ctx context.Context, id drover.ElementID) error {
	return s.wrap("click", s.clickNode(ctx, id))
}

func (s *Session) clickNode(ctx context.Context, id drover.ElementID) error {
	nodeID, err := parseNodeID(id)
	if err != nil {
		return err
	}
	x, y, err := s.nodeCenter(ctx, nodeID)
	if err != nil {
		return err
	}
	return s.dispatchMouseClick(ctx, x, y, "left", 1)
}

// Submit submits the form the element belongs to, or the element itself if
// it is a form.
func (s *Session) Submit(ctx context.Context, id drover.ElementID) error {
	const fn = `function() {
		const form = this.tagName === 'FORM' ? this : this.form || this.closest('form');
		if (!form) throw new Error('element is not inside a form');
		if (form.requestSubmit) form.requestSubmit(); else form.submit();
	}`
	_, err := s.callOnElement(ctx, id, fn)
	return s.wrap("submit", err)
}

// Clear empties the element's value and fires the input and change events a
// real edit would.
func (s *Session) Clear(ctx context.Context, id drover.ElementID) error {
	const fn = `function() {
		this.value = '';
		this.dispatchEvent(new Event('input', {bubbles: true}));
		this.dispatchEvent(new Event('change', {bubbles: true}));
	}`
	_, err := s.callOnElement(ctx, id, fn)
	return s.wrap("clear", err)
}

// TagName returns the element's tag name, lowercased.
func (s *Session) TagName(ctx context.Context, id drover.ElementID) (string, error) {
	nodeID, err := parseNodeID(id)
	if err != nil {
		return "", s.wrap("tag name", err)
	}

	result, err := s.call(ctx, "DOM.describeNode", map[string]any{
		"nodeId": nodeID,
	})
	if err != nil {
		return "", s.wrap("tag name", fmt.Errorf("describing node: %w", err))
	}
	var resp struct {
		Node struct {
			NodeName string `json:"nodeName"`
		} `json:"node"`
	}
	if err := json.Unmarshal(result, &resp); err != nil {
		return "", s.wrap("tag name", fmt.Errorf("parsing describe response: %w", err))
	}
	return strings.ToLower(resp.Node.NodeName), nil
}

// Attribute returns the value of the named attribute, or "" if the element
// does not carry it.
func (s *Session) Attribute(ctx context.Context, id drover.ElementID, name string) (string, error) {
	nodeID, err := parseNodeID(id)
	if err != nil {
		return "", s.wrap("attribute", err)
	}

	result, err := s.call(ctx, "DOM.getAttributes", map[string]any{
		"nodeId": nodeID,
	})
	if err != nil {
		return "", s.wrap("attribute", fmt.Errorf("getting attributes: %w", err))
	}
	var resp struct {
		Attributes []string `json:"attributes"` // flat [name, value, ...] pairs
	}
	if err := json.Unmarshal(result, &resp); err != nil {
		return "", s.wrap("attribute", fmt.Errorf("parsing attributes response: %w", err))
	}
	for i := 0; i+1 < len(resp.Attributes); i += 2 {
		if resp.Attributes[i] == name {
			// Boolean attributes are present with an empty value; report
			// presence as "true" so callers can tell them from absence.
			if resp.Attributes[i+1] == "" && booleanAttrs[name] {
				return "true", nil
			}
			return resp.Attributes[i+1], nil
		}
	}
	return "", nil
}

// booleanAttrs are HTML attributes whose presence alone is the value.
var booleanAttrs = map[string]bool{
	"async": true, "autofocus": true, "checked": true, "disabled": true,
	"hidden": true, "multiple": true, "readonly": true, "required": true,
	"selected": true,
}

// Text returns the element's rendered text.
func (s *Session) Text(ctx context.Context, id drover.ElementID) (string, error) {
	result, err := s.callOnElement(ctx, id, `function() { return this.innerText ?? this.textContent ?? ''; }`)
	if err != nil {
		return "", s.wrap("text", err)
	}
	text, _ := result.(string)
	return text, nil
}

// Enabled reports whether the element is interactable.
func (s *Session) Enabled(ctx context.Context, id drover.ElementID) (bool, error) {
	result, err := s.callOnElement(ctx, id, `function() { return !this.disabled; }`)
	if err != nil {
		return false, s.wrap("enabled", err)
	}
	b, _ := result.(bool)
	return b, nil
}

// Selected reports the live checked/selected state of a two-state control.
func (s *Session) Selected(ctx context.Context, id drover.ElementID) (bool, error) {
	result, err := s.callOnElement(ctx, id, `function() { return !!(this.selected || this.checked); }`)
	if err != nil {
		return false, s.wrap("selected", err)
	}
	b, _ := result.(bool)
	return b, nil
}

// Toggle flips a checkbox or radio button by clicking it; the click is the
// only path that flips state through real events.
func (s *Session) Toggle(ctx context.Context, id drover.ElementID) error {
	return s.wrap("toggle", s.clickNode(ctx, id))
}

// SendKeys focuses the element and delivers text as character input events.
// Existing content is left in place.
func (s *Session) SendKeys(ctx context.Context, id drover.ElementID, text string) error {
	nodeID, err := parseNodeID(id)
	if err != nil {
		return s.wrap("send keys", err)
	}

	if _, err := s.call(ctx, "DOM.focus", map[string]any{"nodeId": nodeID}); err != nil {
		return s.wrap("send keys", fmt.Errorf("focusing element: %w", err))
	}
	if _, err := s.call(ctx, "Input.insertText", map[string]any{"text": text}); err != nil {
		return s.wrap("send keys", fmt.Errorf("inserting text: %w", err))
	}
	return nil
}

// callOnElement runs a function in the page with `this` bound to the
// element and returns its JSON value. A thrown exception becomes an error.
func (s *Session) callOnElement(ctx context.Context, id drover.ElementID, fn string) (any, error) {
	nodeID, err := parseNodeID(id)
	if err != nil {
		return nil, err
	}
	objectID, err := s.resolveNode(ctx, nodeID)
	if err != nil {
		return nil, err
	}

	result, err := s.call(ctx, "Runtime.callFunctionOn", map[string]any{
		"functionDeclaration": fn,
		"objectId":            objectID,
		"returnByValue":       true,
	})
	if err != nil {
		return nil, fmt.Errorf("calling function on element: %w", err)
	}

	var resp struct {
		Result struct {
			Value any `json:"value"`
		} `json:"result"`
		ExceptionDetails *struct {
			Text      string `json:"text"`
			Exception struct {
				Description string `json:"description"`
			} `json:"exception"`
		} `json:"exceptionDetails"`
	}
	if err := json.Unmarshal(result, &resp); err != nil {
		return nil, fmt.Errorf("parsing call response: %w", err)
	}
	if resp.ExceptionDetails != nil {
		msg := resp.ExceptionDetails.Exception.Description
		if msg == "" {
			msg = resp.ExceptionDetails.Text
		}
		return nil, fmt.Errorf("%s", msg)
	}
	return resp.Result.Value, nil
}

// nodeCenter returns the center of a node's content box.
func (s *Session) nodeCenter(ctx context.Context, nodeID int64) (x, y float64, err error) {
	result, err := s.call(ctx, "DOM.getBoxModel", map[string]any{
		"nodeId": nodeID,
	})
	if err != nil {
		return 0, 0, fmt.Errorf("getting box model: %w", err)
	}
	var resp struct {
		Model struct {
			Content []float64 `json:"content"`
		} `json:"model"`
	}
	if err := json.Unmarshal(result, &resp); err != nil {
		return 0, 0, fmt.Errorf("parsing box model response: %w", err)
	}

	content := resp.Model.Content
	if len(content) < 8 {
		return 0, 0, fmt.Errorf("invalid box model")
	}
	x = (content[0] + content[2] + content[4] + content[6]) / 4
	y = (content[1] + content[3] + content[5] + content[7]) / 4
	return x, y, nil
}

// dispatchMouseClick dispatches mouseMoved, mousePressed, and mouseReleased
// at the given coordinates.
func (s *Session) dispatchMouseClick(ctx context.Context, x, y float64, button string, clickCount int) error {
	if _, err := s.call(ctx, "Input.dispatchMouseEvent", map[string]any{
		"type": "mouseMoved",
		"x":    x,
		"y":    y,
	}); err != nil {
		return fmt.Errorf("dispatching mouseMoved: %w", err)
	}

	for _, eventType := range []string{"mousePressed", "mouseReleased"} {
		if _, err := s.call(ctx, "Input.dispatchMouseEvent", map[string]any{
			"type":       eventType,
			"x":          x,
			"y":          y,
			"button":     button,
			"clickCount": clickCount,
		}); err != nil {
			return fmt.Errorf("dispatching %s: %w", eventType, err)
		}
	}
	return nil
}

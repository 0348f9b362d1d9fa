package cdp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/tomyan/drover"
)

// NavigateTo navigates the page and waits for the load event. Callers bound
// the wait through ctx; the session imposes no timeout of its own.
func (s *Session) NavigateTo(ctx context.Context, url string) error {
	loadCh := s.client.subscribe(s.sessionID, "Page.loadEventFired")
	defer s.client.unsubscribe(s.sessionID, "Page.loadEventFired", loadCh)

	result, err := s.call(ctx, "Page.navigate", map[string]string{
		"url": url,
	})
	if err != nil {
		return s.wrap("navigate", fmt.Errorf("navigating: %w", err))
	}

	var resp struct {
		ErrorText string `json:"errorText"`
	}
	if err := json.Unmarshal(result, &resp); err != nil {
		return s.wrap("navigate", fmt.Errorf("parsing navigate response: %w", err))
	}
	if resp.ErrorText != "" {
		return s.wrap("navigate", fmt.Errorf("navigation to %s failed: %s", url, resp.ErrorText))
	}

	// Old node IDs are invalid once the new document is in place.
	s.frameNode = 0

	select {
	case <-loadCh:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Back navigates one entry back in the session history.
func (s *Session) Back(ctx context.Context) error {
	return s.wrap("back", s.stepHistory(ctx, -1))
}

// Forward navigates one entry forward in the session history.
func (s *Session) Forward(ctx context.Context) error {
	return s.wrap("forward", s.stepHistory(ctx, +1))
}

func (s *Session) stepHistory(ctx context.Context, delta int) error {
	result, err := s.call(ctx, "Page.getNavigationHistory", nil)
	if err != nil {
		return fmt.Errorf("getting navigation history: %w", err)
	}

	var resp struct {
		CurrentIndex int `json:"currentIndex"`
		Entries      []struct {
			ID  int    `json:"id"`
			URL string `json:"url"`
		} `json:"entries"`
	}
	if err := json.Unmarshal(result, &resp); err != nil {
		return fmt.Errorf("parsing navigation history: %w", err)
	}

	target := resp.CurrentIndex + delta
	if target < 0 || target >= len(resp.Entries) {
		return fmt.Errorf("no history entry at offset %+d", delta)
	}

	if _, err := s.call(ctx, "Page.navigateToHistoryEntry", map[string]any{
		"entryId": resp.Entries[target].ID,
	}); err != nil {
		return fmt.Errorf("navigating to history entry: %w", err)
	}
	s.frameNode = 0
	return nil
}

// Refresh reloads the page.
func (s *Session) Refresh(ctx context.Context) error {
	if _, err := s.call(ctx, "Page.reload", map[string]any{}); err != nil {
		return s.wrap("refresh", fmt.Errorf("reloading: %w", err))
	}
	s.frameNode = 0
	return nil
}

// Title returns the page title.
func (s *Session) Title(ctx context.Context) (string, error) {
	return s.evalString(ctx, "document.title")
}

// URL returns the current page URL.
func (s *Session) URL(ctx context.Context) (string, error) {
	return s.evalString(ctx, "document.location.href")
}

func (s *Session) evalString(ctx context.Context, expr string) (string, error) {
	result, err := s.call(ctx, "Runtime.evaluate", map[string]any{
		"expression":    expr,
		"returnByValue": true,
	})
	if err != nil {
		return "", s.wrap("evaluate", err)
	}
	var resp struct {
		Result struct {
			Value string `json:"value"`
		} `json:"result"`
	}
	if err := json.Unmarshal(result, &resp); err != nil {
		return "", s.wrap("evaluate", fmt.Errorf("parsing eval response: %w", err))
	}
	return resp.Result.Value, nil
}

// --- Windows ---

// WindowInfo describes one page target.
type WindowInfo struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	URL   string `json:"url"`
}

// Windows lists every page target in the browser.
func (s *Session) Windows(ctx context.Context) ([]WindowInfo, error) {
	pages, err := pageTargets(ctx, s.client)
	if err != nil {
		return nil, s.wrap("windows", err)
	}
	return pages, nil
}

// SwitchToWindow re-binds the session to another page target.
func (s *Session) SwitchToWindow(ctx context.Context, id string) error {
	pages, err := pageTargets(ctx, s.client)
	if err != nil {
		return s.wrap("switch window", err)
	}
	for _, p := range pages {
		if p.ID == id {
			prev := s.sessionID
			if err := s.attachTo(ctx, id); err != nil {
				return s.wrap("switch window", err)
			}
			s.client.detach(prev)
			return nil
		}
	}
	return s.wrap("switch window", fmt.Errorf("no window with target ID %q", id))
}

// NewWindow opens a new page target and returns its ID. The session stays
// bound to its current target.
func (s *Session) NewWindow(ctx context.Context, url string) (string, error) {
	id, err := createTarget(ctx, s.client, url)
	if err != nil {
		return "", s.wrap("new window", err)
	}
	return id, nil
}

// CloseWindow closes a page target.
func (s *Session) CloseWindow(ctx context.Context, id string) error {
	if _, err := s.client.Call(ctx, "Target.closeTarget", map[string]any{
		"targetId": id,
	}); err != nil {
		return s.wrap("close window", fmt.Errorf("closing target: %w", err))
	}
	return nil
}

// --- Frames ---

// SwitchToFrame scopes subsequent searches to the content document of the
// given iframe element.
func (s *Session) SwitchToFrame(ctx context.Context, id drover.ElementID) error {
	nodeID, err := parseNodeID(id)
	if err != nil {
		return s.wrap("switch frame", err)
	}

	result, err := s.call(ctx, "DOM.describeNode", map[string]any{
		"nodeId": nodeID,
		"depth":  1,
		"pierce": true,
	})
	if err != nil {
		return s.wrap("switch frame", fmt.Errorf("describing node: %w", err))
	}
	var resp struct {
		Node struct {
			ContentDocument *struct {
				NodeID int64 `json:"nodeId"`
			} `json:"contentDocument"`
		} `json:"node"`
	}
	if err := json.Unmarshal(result, &resp); err != nil {
		return s.wrap("switch frame", fmt.Errorf("parsing describe response: %w", err))
	}
	if resp.Node.ContentDocument == nil || resp.Node.ContentDocument.NodeID == 0 {
		return s.wrap("switch frame", fmt.Errorf("element has no content document"))
	}

	s.frameNode = resp.Node.ContentDocument.NodeID
	return nil
}

// SwitchToDefaultFrame restores searches to the top document.
func (s *Session) SwitchToDefaultFrame() {
	s.frameNode = 0
}

// --- Target helpers ---

func pageTargets(ctx context.Context, c *Client) ([]WindowInfo, error) {
	result, err := c.Call(ctx, "Target.getTargets", nil)
	if err != nil {
		return nil, fmt.Errorf("listing targets: %w", err)
	}
	var resp struct {
		TargetInfos []struct {
			TargetID string `json:"targetId"`
			Type     string `json:"type"`
			Title    string `json:"title"`
			URL      string `json:"url"`
		} `json:"targetInfos"`
	}
	if err := json.Unmarshal(result, &resp); err != nil {
		return nil, fmt.Errorf("parsing targets: %w", err)
	}

	pages := make([]WindowInfo, 0, len(resp.TargetInfos))
	for _, t := range resp.TargetInfos {
		if t.Type == "page" {
			pages = append(pages, WindowInfo{ID: t.TargetID, Title: t.Title, URL: t.URL})
		}
	}
	return pages, nil
}

func createTarget(ctx context.Context, c *Client, url string) (string, error) {
	if url == "" {
		url = "about:blank"
	}
	result, err := c.Call(ctx, "Target.createTarget", map[string]any{
		"url": url,
	})
	if err != nil {
		return "", fmt.Errorf("creating target: %w", err)
	}
	var resp struct {
		TargetID string `json:"targetId"`
	}
	if err := json.Unmarshal(result, &resp); err != nil {
		return "", fmt.Errorf("parsing create response: %w", err)
	}
	return resp.TargetID, nil
}

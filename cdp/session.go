package cdp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/tomyan/drover"
)

// Session drives one page target and implements drover.Session. It is a
// single-writer resource: callers sharing one Session across goroutines
// must serialize access.
type Session struct {
	client     *Client
	ownsClient bool
	targetID   string
	sessionID  string
	frameNode  int64 // scoped document root; 0 means the top document
	log        *slog.Logger
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithLogger attaches a structured logger. Command failures are logged at
// debug level before being returned.
func WithLogger(log *slog.Logger) SessionOption {
	return func(s *Session) {
		if log != nil {
			s.log = log
		}
	}
}

// WithTargetID pins the session to a specific page target instead of the
// first one found.
func WithTargetID(id string) SessionOption {
	return func(s *Session) { s.targetID = id }
}

// Connect dials the browser's debug endpoint and binds a session to a page
// target, creating a blank one if the browser has no pages open.
func Connect(ctx context.Context, host string, port int, opts ...SessionOption) (*Session, error) {
	client, err := Dial(ctx, host, port)
	if err != nil {
		return nil, err
	}

	s, err := newSession(ctx, client, opts...)
	if err != nil {
		client.Close()
		return nil, err
	}
	s.ownsClient = true
	return s, nil
}

// NewSession binds a session to a page target over an existing client. The
// caller keeps ownership of the client.
func NewSession(ctx context.Context, client *Client, opts ...SessionOption) (*Session, error) {
	return newSession(ctx, client, opts...)
}

func newSession(ctx context.Context, client *Client, opts ...SessionOption) (*Session, error) {
	s := &Session{
		client: client,
		log:    slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.targetID == "" {
		pages, err := pageTargets(ctx, client)
		if err != nil {
			return nil, err
		}
		if len(pages) > 0 {
			s.targetID = pages[0].ID
		} else {
			id, err := createTarget(ctx, client, "about:blank")
			if err != nil {
				return nil, err
			}
			s.targetID = id
		}
	}

	if err := s.attachTo(ctx, s.targetID); err != nil {
		return nil, err
	}
	return s, nil
}

// attachTo binds the session to a target and enables the protocol domains
// every later command relies on.
func (s *Session) attachTo(ctx context.Context, targetID string) error {
	sessionID, err := s.client.attach(ctx, targetID)
	if err != nil {
		return err
	}
	s.targetID = targetID
	s.sessionID = sessionID
	s.frameNode = 0

	for _, domain := range []string{"Page.enable", "DOM.enable", "Runtime.enable"} {
		if _, err := s.call(ctx, domain, nil); err != nil {
			return fmt.Errorf("enabling %s: %w", domain, err)
		}
	}
	return nil
}

// TargetID returns the page target this session is bound to.
func (s *Session) TargetID() string { return s.targetID }

// Close detaches from the target and, when the session owns the transport,
// closes it. The error is propagated so the caller can decide whether
// teardown failure matters.
func (s *Session) Close(ctx context.Context) error {
	s.client.detach(s.sessionID)
	if s.ownsClient {
		return s.client.Close()
	}
	return nil
}

func (s *Session) call(ctx context.Context, method string, params any) (json.RawMessage, error) {
	return s.client.CallSession(ctx, s.sessionID, method, params)
}

// wrap translates a transport or protocol failure into the error vocabulary
// of the core: everything that is not "not found" and not a context
// cancellation becomes a *drover.CommandError.
func (s *Session) wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, drover.ErrNoSuchElement) ||
		errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	s.log.Debug("command failed", "op", op, "target", s.targetID, "err", err)
	var pe *ProtocolError
	if errors.As(err, &pe) {
		return &drover.CommandError{Op: op, Message: pe.Message, Code: pe.Code, Err: err}
	}
	return &drover.CommandError{Op: op, Message: err.Error(), Err: err}
}

// --- Element search ---

// FindElement finds the first element matching the locator. A clean miss is
// reported as drover.ErrNoSuchElement for the search facade to recover.
func (s *Session) FindElement(ctx context.Context, by drover.Locator) (drover.ElementID, error) {
	ids, err := s.find(ctx, 0, by, true)
	if err != nil {
		return "", err
	}
	if len(ids) == 0 {
		return "", fmt.Errorf("%w: %s", drover.ErrNoSuchElement, by)
	}
	return ids[0], nil
}

// FindElements finds every element matching the locator. Zero matches is an
// empty slice, not an error.
func (s *Session) FindElements(ctx context.Context, by drover.Locator) ([]drover.ElementID, error) {
	return s.find(ctx, 0, by, false)
}

// FindFromElement finds every matching element beneath root.
func (s *Session) FindFromElement(ctx context.Context, root drover.ElementID, by drover.Locator) ([]drover.ElementID, error) {
	nodeID, err := parseNodeID(root)
	if err != nil {
		return nil, s.wrap("find", err)
	}
	return s.find(ctx, nodeID, by, false)
}

// find runs a compiled locator against the given root node (0 = scoped
// document root). firstOnly stops CSS dispatch at the first hit.
func (s *Session) find(ctx context.Context, root int64, by drover.Locator, firstOnly bool) ([]drover.ElementID, error) {
	q, err := compileLocator(by)
	if err != nil {
		return nil, &drover.CommandError{Op: "find", Message: err.Error(), Err: err}
	}

	if root == 0 {
		root, err = s.rootNode(ctx)
		if err != nil {
			return nil, s.wrap("find", err)
		}
	}

	var nodeIDs []int64
	if q.css != "" {
		nodeIDs, err = s.cssQuery(ctx, root, q.css, firstOnly)
	} else {
		nodeIDs, err = s.xpathQuery(ctx, root, q.xpath)
	}
	if err != nil {
		return nil, s.wrap("find", err)
	}

	ids := make([]drover.ElementID, 0, len(nodeIDs))
	for _, n := range nodeIDs {
		ids = append(ids, formatNodeID(n))
	}
	return ids, nil
}

// rootNode returns the node every search starts from: the current frame's
// document when switched into one, the top document otherwise.
func (s *Session) rootNode(ctx context.Context) (int64, error) {
	if s.frameNode != 0 {
		return s.frameNode, nil
	}

	result, err := s.call(ctx, "DOM.getDocument", nil)
	if err != nil {
		return 0, fmt.Errorf("getting document: %w", err)
	}
	var resp struct {
		Root struct {
			NodeID int64 `json:"nodeId"`
		} `json:"root"`
	}
	if err := json.Unmarshal(result, &resp); err != nil {
		return 0, fmt.Errorf("parsing document response: %w", err)
	}
	return resp.Root.NodeID, nil
}

func (s *Session) cssQuery(ctx context.Context, root int64, selector string, firstOnly bool) ([]int64, error) {
	if firstOnly {
		result, err := s.call(ctx, "DOM.querySelector", map[string]any{
			"nodeId":   root,
			"selector": selector,
		})
		if err != nil {
			return nil, fmt.Errorf("querying selector: %w", err)
		}
		var resp struct {
			NodeID int64 `json:"nodeId"`
		}
		if err := json.Unmarshal(result, &resp); err != nil {
			return nil, fmt.Errorf("parsing query response: %w", err)
		}
		if resp.NodeID == 0 {
			return nil, nil
		}
		return []int64{resp.NodeID}, nil
	}

	result, err := s.call(ctx, "DOM.querySelectorAll", map[string]any{
		"nodeId":   root,
		"selector": selector,
	})
	if err != nil {
		return nil, fmt.Errorf("querying selector: %w", err)
	}
	var resp struct {
		NodeIDs []int64 `json:"nodeIds"`
	}
	if err := json.Unmarshal(result, &resp); err != nil {
		return nil, fmt.Errorf("parsing query response: %w", err)
	}
	return resp.NodeIDs, nil
}

// xpathQuery evaluates an XPath expression relative to root in the page and
// maps each resulting remote object back to a DOM node ID.
func (s *Session) xpathQuery(ctx context.Context, root int64, expr string) ([]int64, error) {
	rootObj, err := s.resolveNode(ctx, root)
	if err != nil {
		return nil, err
	}

	const fn = `function(expr) {
		const doc = this.ownerDocument || this;
		const r = doc.evaluate(expr, this, null, XPathResult.ORDERED_NODE_SNAPSHOT_TYPE, null);
		const out = [];
		for (let i = 0; i < r.snapshotLength; i++) out.push(r.snapshotItem(i));
		return out;
	}`
	result, err := s.call(ctx, "Runtime.callFunctionOn", map[string]any{
		"functionDeclaration": fn,
		"objectId":            rootObj,
		"arguments":           []map[string]any{{"value": expr}},
	})
	if err != nil {
		return nil, fmt.Errorf("evaluating xpath: %w", err)
	}

	var resp struct {
		Result struct {
			ObjectID string `json:"objectId"`
		} `json:"result"`
		ExceptionDetails *struct {
			Text      string `json:"text"`
			Exception struct {
				Description string `json:"description"`
			} `json:"exception"`
		} `json:"exceptionDetails"`
	}
	if err := json.Unmarshal(result, &resp); err != nil {
		return nil, fmt.Errorf("parsing xpath response: %w", err)
	}
	if resp.ExceptionDetails != nil {
		msg := resp.ExceptionDetails.Exception.Description
		if msg == "" {
			msg = resp.ExceptionDetails.Text
		}
		return nil, fmt.Errorf("xpath %q: %s", expr, msg)
	}
	if resp.Result.ObjectID == "" {
		return nil, nil
	}

	propsResult, err := s.call(ctx, "Runtime.getProperties", map[string]any{
		"objectId":      resp.Result.ObjectID,
		"ownProperties": true,
	})
	if err != nil {
		return nil, fmt.Errorf("listing xpath results: %w", err)
	}
	var props struct {
		Result []struct {
			Name  string `json:"name"`
			Value *struct {
				ObjectID string `json:"objectId"`
			} `json:"value"`
		} `json:"result"`
	}
	if err := json.Unmarshal(propsResult, &props); err != nil {
		return nil, fmt.Errorf("parsing xpath results: %w", err)
	}

	var nodeIDs []int64
	for _, p := range props.Result {
		// Array entries have numeric names; skip "length" and friends.
		if _, err := strconv.Atoi(p.Name); err != nil || p.Value == nil || p.Value.ObjectID == "" {
			continue
		}
		nodeResult, err := s.call(ctx, "DOM.requestNode", map[string]any{
			"objectId": p.Value.ObjectID,
		})
		if err != nil {
			return nil, fmt.Errorf("requesting node: %w", err)
		}
		var nodeResp struct {
			NodeID int64 `json:"nodeId"`
		}
		if err := json.Unmarshal(nodeResult, &nodeResp); err != nil {
			return nil, fmt.Errorf("parsing node response: %w", err)
		}
		if nodeResp.NodeID != 0 {
			nodeIDs = append(nodeIDs, nodeResp.NodeID)
		}
	}
	return nodeIDs, nil
}

// resolveNode maps a DOM node ID to a remote object ID.
func (s *Session) resolveNode(ctx context.Context, nodeID int64) (string, error) {
	result, err := s.call(ctx, "DOM.resolveNode", map[string]any{
		"nodeId": nodeID,
	})
	if err != nil {
		return "", fmt.Errorf("resolving node: %w", err)
	}
	var resp struct {
		Object struct {
			ObjectID string `json:"objectId"`
		} `json:"object"`
	}
	if err := json.Unmarshal(result, &resp); err != nil {
		return "", fmt.Errorf("parsing resolve response: %w", err)
	}
	if resp.Object.ObjectID == "" {
		return "", fmt.Errorf("node %d has no remote object", nodeID)
	}
	return resp.Object.ObjectID, nil
}

func formatNodeID(n int64) drover.ElementID {
	return drover.ElementID(strconv.FormatInt(n, 10))
}

func parseNodeID(id drover.ElementID) (int64, error) {
	n, err := strconv.ParseInt(string(id), 10, 64)
	if err != nil || n == 0 {
		return 0, fmt.Errorf("invalid element handle %q", id)
	}
	return n, nil
}

var _ drover.Session = (*Session)(nil)

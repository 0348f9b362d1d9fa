// Package cdp implements drover.Session over the Chrome DevTools protocol.
// The transport is a single websocket connection to the browser's debug
// endpoint; page-level commands are multiplexed over it using flat protocol
// sessions.
package cdp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/tomyan/drover"
)

// ProtocolError is an error object returned by the browser for a failed
// protocol command.
type ProtocolError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("protocol error %d: %s", e.Code, e.Message)
}

// Client is the protocol transport: it frames commands, routes responses to
// waiting callers, and fans protocol events out to subscribers.
type Client struct {
	conn      *websocket.Conn
	wsURL     string
	writeMu   sync.Mutex
	messageID atomic.Int64

	pendingMu sync.Mutex
	pending   map[int64]chan callResult

	subsMu sync.Mutex
	subs   map[string][]chan json.RawMessage // key: "sessionID:method"

	closed    atomic.Bool
	closeOnce sync.Once
	closeCh   chan struct{}
}

type callResult struct {
	Result json.RawMessage
	Error  *ProtocolError
}

// Dial connects to the browser's debug endpoint at host:port.
func Dial(ctx context.Context, host string, port int) (*Client, error) {
	versionURL := fmt.Sprintf("http://%s:%d/json/version", host, port)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, versionURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("connecting to browser: %w", err)
	}
	defer resp.Body.Close()

	var version struct {
		WebSocketDebuggerURL string `json:"webSocketDebuggerUrl"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&version); err != nil {
		return nil, fmt.Errorf("decoding version response: %w", err)
	}
	if version.WebSocketDebuggerURL == "" {
		return nil, fmt.Errorf("no websocket URL in version response")
	}

	dialer := websocket.Dialer{}
	conn, _, err := dialer.DialContext(ctx, version.WebSocketDebuggerURL, nil)
	if err != nil {
		return nil, fmt.Errorf("connecting to websocket: %w", err)
	}

	c := &Client{
		conn:    conn,
		wsURL:   version.WebSocketDebuggerURL,
		pending: make(map[int64]chan callResult),
		subs:    make(map[string][]chan json.RawMessage),
		closeCh: make(chan struct{}),
	}
	go c.readMessages()
	return c, nil
}

// WebSocketURL returns the websocket URL used for this connection.
func (c *Client) WebSocketURL() string {
	return c.wsURL
}

// Close shuts the connection down and wakes every pending caller with
// drover.ErrConnectionClosed.
func (c *Client) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.closed.Store(true)
		close(c.closeCh)
		err = c.conn.Close()

		c.pendingMu.Lock()
		for _, ch := range c.pending {
			close(ch)
		}
		c.pending = make(map[int64]chan callResult)
		c.pendingMu.Unlock()
	})
	return err
}

type request struct {
	ID        int64           `json:"id"`
	SessionID string          `json:"sessionId,omitempty"`
	Method    string          `json:"method"`
	Params    json.RawMessage `json:"params,omitempty"`
}

type response struct {
	ID        int64           `json:"id"`
	Result    json.RawMessage `json:"result,omitempty"`
	Error     *ProtocolError  `json:"error,omitempty"`
	Method    string          `json:"method,omitempty"`    // events
	Params    json.RawMessage `json:"params,omitempty"`    // events
	SessionID string          `json:"sessionId,omitempty"` // events
}

// Call sends a browser-level command and waits for its response.
func (c *Client) Call(ctx context.Context, method string, params any) (json.RawMessage, error) {
	return c.call(ctx, "", method, params)
}

// CallSession sends a command scoped to a protocol session and waits for
// its response.
func (c *Client) CallSession(ctx context.Context, sessionID, method string, params any) (json.RawMessage, error) {
	return c.call(ctx, sessionID, method, params)
}

func (c *Client) call(ctx context.Context, sessionID, method string, params any) (json.RawMessage, error) {
	if c.closed.Load() {
		return nil, drover.ErrConnectionClosed
	}

	req := request{
		ID:        c.messageID.Add(1),
		SessionID: sessionID,
		Method:    method,
	}
	if params != nil {
		data, err := json.Marshal(params)
		if err != nil {
			return nil, fmt.Errorf("marshaling params: %w", err)
		}
		req.Params = data
	}

	respChan := make(chan callResult, 1)
	c.pendingMu.Lock()
	c.pending[req.ID] = respChan
	c.pendingMu.Unlock()
	defer func() {
		c.pendingMu.Lock()
		delete(c.pending, req.ID)
		c.pendingMu.Unlock()
	}()

	c.writeMu.Lock()
	err := c.conn.WriteJSON(req)
	c.writeMu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("sending message: %w", err)
	}

	select {
	case result, ok := <-respChan:
		if !ok {
			return nil, drover.ErrConnectionClosed
		}
		if result.Error != nil {
			return nil, result.Error
		}
		return result.Result, nil
	case <-c.closeCh:
		return nil, drover.ErrConnectionClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (c *Client) readMessages() {
	defer c.Close()

	for {
		var resp response
		if err := c.conn.ReadJSON(&resp); err != nil {
			return
		}

		if resp.ID > 0 {
			c.pendingMu.Lock()
			if ch, ok := c.pending[resp.ID]; ok {
				ch <- callResult{Result: resp.Result, Error: resp.Error}
			}
			c.pendingMu.Unlock()
		}

		if resp.Method != "" {
			key := resp.SessionID + ":" + resp.Method
			c.subsMu.Lock()
			for _, ch := range c.subs[key] {
				select {
				case ch <- resp.Params:
				default:
					// Drop if the subscriber is not keeping up.
				}
			}
			c.subsMu.Unlock()
		}
	}
}

// subscribe registers interest in a protocol event on a session.
func (c *Client) subscribe(sessionID, method string) chan json.RawMessage {
	ch := make(chan json.RawMessage, 16)
	key := sessionID + ":" + method

	c.subsMu.Lock()
	c.subs[key] = append(c.subs[key], ch)
	c.subsMu.Unlock()
	return ch
}

// unsubscribe removes a previously registered event channel.
func (c *Client) unsubscribe(sessionID, method string, ch chan json.RawMessage) {
	key := sessionID + ":" + method

	c.subsMu.Lock()
	defer c.subsMu.Unlock()
	for i, sub := range c.subs[key] {
		if sub == ch {
			c.subs[key] = append(c.subs[key][:i], c.subs[key][i+1:]...)
			close(ch)
			return
		}
	}
}

// attach creates (or reuses) a flat protocol session for a page target.
func (c *Client) attach(ctx context.Context, targetID string) (string, error) {
	result, err := c.Call(ctx, "Target.attachToTarget", map[string]any{
		"targetId": targetID,
		"flatten":  true,
	})
	if err != nil {
		return "", fmt.Errorf("attaching to target: %w", err)
	}

	var resp struct {
		SessionID string `json:"sessionId"`
	}
	if err := json.Unmarshal(result, &resp); err != nil {
		return "", fmt.Errorf("parsing attach response: %w", err)
	}
	return resp.SessionID, nil
}

// detach releases a protocol session, best effort with a short deadline.
func (c *Client) detach(sessionID string) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	c.Call(ctx, "Target.detachFromTarget", map[string]any{
		"sessionId": sessionID,
	})
}

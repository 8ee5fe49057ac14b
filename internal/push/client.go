package push

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/davidayox123/acadrepo-tui/internal/api"
)

const (
	pingInterval = 30 * time.Second
	writeTimeout = 10 * time.Second
)

// Message is the inbound wire envelope.
type Message struct {
	Type      string          `json:"type"`
	Data      json.RawMessage `json:"data,omitempty"`
	Message   string          `json:"message,omitempty"`
	Timestamp float64         `json:"timestamp,omitempty"`
}

// outbound is the envelope for client-to-server messages.
type outbound struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp int64       `json:"timestamp,omitempty"`
}

// Event reports a connection state change to the owner.
type Event struct {
	Status Status
	Err    error
}

// Refresher receives the dashboard refetch triggers driven by inbound
// messages. The dashboard store satisfies this.
type Refresher interface {
	FetchStats(ctx context.Context) error
	FetchRecentDocuments(ctx context.Context) error
	FetchRecentActivity(ctx context.Context) error
}

// CredentialSource supplies the identity the socket authenticates as.
// The identity manager satisfies this.
type CredentialSource interface {
	CurrentUser() *api.User
	AccessToken(ctx context.Context) (string, error)
}

// Client maintains at most one live push connection per session. It
// reconnects on abnormal closes per its ReconnectPolicy and translates
// typed inbound messages into dashboard refetches.
type Client struct {
	wsURL     string
	creds     CredentialSource
	refresher Refresher
	policy    ReconnectPolicy
	logger    *zap.Logger

	// handler, when set, is invoked for every inbound message in
	// addition to the built-in dispatch.
	handler func(Message)

	events chan Event

	mu             sync.Mutex
	writeMu        sync.Mutex
	ctx            context.Context
	conn           *websocket.Conn
	pingCancel     context.CancelFunc
	status         Status
	attempts       int
	reconnectTimer *time.Timer
	intentional    bool
	connectionID   string
}

// NewClient creates a push client for the given WebSocket endpoint
// (e.g. "ws://127.0.0.1:8000/api/v1/ws/ws"). handler may be nil.
func NewClient(wsURL string, creds CredentialSource, refresher Refresher, policy ReconnectPolicy, handler func(Message), logger *zap.Logger) *Client {
	return &Client{
		wsURL:     wsURL,
		creds:     creds,
		refresher: refresher,
		policy:    policy,
		logger:    logger,
		handler:   handler,
		events:    make(chan Event, 16),
		status:    StatusDisconnected,
	}
}

// Events returns the connection state change feed.
func (c *Client) Events() <-chan Event {
	return c.events
}

// Status returns the current connection status.
func (c *Client) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// ConnectionID returns the opaque identifier of the current connection.
func (c *Client) ConnectionID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connectionID
}

// Connect opens the push channel for the current identity. The context
// bounds the life of the connection and all reconnect attempts.
func (c *Client) Connect(ctx context.Context) error {
	user := c.creds.CurrentUser()
	if user == nil {
		return errors.New("push: no authenticated user")
	}
	token, err := c.creds.AccessToken(ctx)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.ctx = ctx
	c.intentional = false
	c.status = StatusConnecting
	c.connectionID = fmt.Sprintf("%s_%s", user.ID, uuid.NewString())
	connID := c.connectionID
	c.mu.Unlock()
	c.emit(Event{Status: StatusConnecting})

	q := url.Values{}
	q.Set("user_id", user.ID)
	q.Set("token", token)
	target := fmt.Sprintf("%s/%s?%s", c.wsURL, connID, q.Encode())

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, target, nil)
	if err != nil {
		c.logger.Warn("push dial failed", zap.Error(err))
		c.mu.Lock()
		c.status = StatusDisconnected
		c.mu.Unlock()
		c.emit(Event{Status: StatusDisconnected, Err: err})
		// A failed dial counts like an abnormal close for the policy.
		c.maybeReconnect(-1)
		return err
	}

	pingCtx, pingCancel := context.WithCancel(ctx)
	c.mu.Lock()
	if c.pingCancel != nil {
		c.pingCancel()
	}
	c.conn = conn
	c.pingCancel = pingCancel
	c.status = StatusConnected
	c.attempts = 0
	c.mu.Unlock()

	c.logger.Info("push connected", zap.String("connection_id", connID))
	c.emit(Event{Status: StatusConnected})

	go c.pingLoop(pingCtx, conn)
	go c.readLoop(conn)
	return nil
}

// Disconnect tears down the socket with a normal closure and cancels any
// pending reconnect. Normal closures never reconnect.
func (c *Client) Disconnect() {
	c.mu.Lock()
	c.intentional = true
	if c.reconnectTimer != nil {
		c.reconnectTimer.Stop()
		c.reconnectTimer = nil
	}
	if c.pingCancel != nil {
		c.pingCancel()
		c.pingCancel = nil
	}
	conn := c.conn
	c.conn = nil
	c.status = StatusDisconnected
	c.mu.Unlock()

	if conn != nil {
		c.writeMu.Lock()
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, "client disconnect"),
			time.Now().Add(writeTimeout))
		c.writeMu.Unlock()
		_ = conn.Close()
	}
	c.emit(Event{Status: StatusDisconnected})
}

// Send writes an application message on the channel.
func (c *Client) Send(msgType string, data interface{}) error {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn == nil {
		return errors.New("push: not connected")
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return conn.WriteJSON(outbound{Type: msgType, Data: data, Timestamp: time.Now().UnixMilli()})
}

// readLoop drains the connection until it closes, dispatching each
// message. It is bound to one conn; a reconnect starts a fresh loop.
func (c *Client) readLoop(conn *websocket.Conn) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			c.handleClose(conn, err)
			return
		}

		var msg Message
		if jsonErr := json.Unmarshal(data, &msg); jsonErr != nil {
			c.logger.Warn("dropping malformed push message", zap.Error(jsonErr))
			continue
		}
		if c.stale(conn) {
			return
		}
		c.dispatch(msg)
	}
}

func (c *Client) handleClose(conn *websocket.Conn, err error) {
	c.mu.Lock()
	if c.conn != conn {
		// A newer connection has replaced this one; nothing to do.
		c.mu.Unlock()
		return
	}
	c.conn = nil
	if c.pingCancel != nil {
		c.pingCancel()
		c.pingCancel = nil
	}
	intentional := c.intentional
	c.status = StatusDisconnected
	c.mu.Unlock()
	_ = conn.Close()

	code := closeCode(err)
	c.logger.Info("push disconnected", zap.Int("code", code), zap.Error(err))
	c.emit(Event{Status: StatusDisconnected, Err: err})

	if intentional {
		return
	}
	c.maybeReconnect(code)
}

// maybeReconnect schedules one reconnect attempt if the policy allows.
func (c *Client) maybeReconnect(closeCode int) {
	c.mu.Lock()
	ctx := c.ctx
	if c.intentional || ctx == nil || ctx.Err() != nil ||
		!c.policy.ShouldReconnect(closeCode, c.attempts) {
		c.mu.Unlock()
		return
	}
	c.attempts++
	attempt := c.attempts
	c.reconnectTimer = time.AfterFunc(c.policy.Delay, func() {
		c.mu.Lock()
		c.reconnectTimer = nil
		c.mu.Unlock()
		c.logger.Info("push reconnecting",
			zap.Int("attempt", attempt), zap.Int("max", c.policy.MaxAttempts))
		_ = c.Connect(ctx)
	})
	c.mu.Unlock()
}

// pingLoop sends an application-level ping every pingInterval while this
// connection is current. The server answers with a pong; liveness beyond
// that rides on the socket's own close detection.
func (c *Client) pingLoop(ctx context.Context, conn *websocket.Conn) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if c.stale(conn) {
				return
			}
			if err := c.Send("ping", nil); err != nil {
				return
			}
		}
	}
}

// dispatch routes one inbound message to the dashboard refetches it
// implies, then hands it to the caller's handler.
func (c *Client) dispatch(msg Message) {
	ctx := c.baseCtx()
	switch msg.Type {
	case "connected":
		c.logger.Debug("push connection confirmed")
	case "document_uploaded":
		c.refetch(ctx, c.refresher.FetchStats)
		c.refetch(ctx, c.refresher.FetchRecentDocuments)
		c.refetch(ctx, c.refresher.FetchRecentActivity)
	case "document_reviewed":
		c.refetch(ctx, c.refresher.FetchStats)
		c.refetch(ctx, c.refresher.FetchRecentActivity)
	case "stats_update":
		c.refetch(ctx, c.refresher.FetchStats)
	case "activity_update":
		c.refetch(ctx, c.refresher.FetchRecentActivity)
	case "pong":
		c.logger.Debug("push pong")
	case "error":
		c.logger.Warn("push server error", zap.String("message", msg.Message))
		c.mu.Lock()
		c.status = StatusErrored
		c.mu.Unlock()
		c.emit(Event{Status: StatusErrored, Err: errors.New(msg.Message)})
	default:
		c.logger.Debug("dropping unknown push message", zap.String("type", msg.Type))
	}

	if c.handler != nil {
		c.handler(msg)
	}
}

func (c *Client) refetch(ctx context.Context, f func(context.Context) error) {
	if err := f(ctx); err != nil {
		c.logger.Debug("push-triggered refetch failed", zap.Error(err))
	}
}

func (c *Client) baseCtx() context.Context {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ctx != nil {
		return c.ctx
	}
	return context.Background()
}

// stale reports whether conn has been replaced or torn down.
func (c *Client) stale(conn *websocket.Conn) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn != conn
}

// emit pushes an event without blocking; a slow consumer loses old
// events rather than wedging the read loop.
func (c *Client) emit(ev Event) {
	select {
	case c.events <- ev:
	default:
	}
}

// closeCode extracts the WebSocket close code from a read error, or -1
// for transport-level failures.
func closeCode(err error) int {
	var ce *websocket.CloseError
	if errors.As(err, &ce) {
		return ce.Code
	}
	return -1
}

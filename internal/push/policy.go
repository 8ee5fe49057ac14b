// Package push implements the optional push channel: a WebSocket client
// that turns server-side events into dashboard refetches. Delivery is
// best-effort; messages may be dropped or reordered and the dashboard
// poll remains the source of truth.
package push

import "time"

// NormalClosure is the WebSocket close code for an intentional shutdown.
// A normal closure is terminal; only abnormal closes reconnect.
const NormalClosure = 1000

// Status is the connection state of the push channel.
type Status string

const (
	StatusDisconnected Status = "disconnected"
	StatusConnecting   Status = "connecting"
	StatusConnected    Status = "connected"
	StatusErrored      Status = "error"
)

// ReconnectPolicy decides whether a dropped connection is retried. It is
// separated from the socket I/O so the policy can be tested without a
// real connection.
type ReconnectPolicy struct {
	// MaxAttempts caps consecutive reconnects. The counter resets to
	// zero on a successful open.
	MaxAttempts int
	// Delay is the fixed wait before each reconnect attempt.
	Delay time.Duration
}

// DefaultPolicy mirrors the backend's expectations: five attempts, three
// seconds apart.
func DefaultPolicy() ReconnectPolicy {
	return ReconnectPolicy{MaxAttempts: 5, Delay: 3 * time.Second}
}

// ShouldReconnect reports whether a close with the given code, after the
// given number of prior attempts, warrants another try.
func (p ReconnectPolicy) ShouldReconnect(closeCode, attempts int) bool {
	if closeCode == NormalClosure {
		return false
	}
	return attempts < p.MaxAttempts
}

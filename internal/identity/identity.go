// Package identity manages the authenticated session: login, token
// persistence, and transparent access-token refresh for outgoing requests.
package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"go.uber.org/zap"

	"github.com/davidayox123/acadrepo-tui/internal/api"
)

// refreshLeeway is how close to expiry the access token may get before a
// refresh is attempted ahead of the next request.
const refreshLeeway = 30 * time.Second

// ErrNotAuthenticated is returned when an operation needs a session and
// none is stored.
var ErrNotAuthenticated = errors.New("identity: not authenticated")

// Session is the persisted authentication state.
type Session struct {
	User         *api.User `json:"user"`
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
}

// Manager owns the current session and implements api.TokenProvider.
type Manager struct {
	path   string
	logger *zap.Logger

	mu      sync.Mutex
	session *Session
	client  *api.Client
}

// NewManager creates a manager persisting its session at path. An existing
// session file is loaded if present; a corrupt one is discarded.
func NewManager(path string, logger *zap.Logger) *Manager {
	m := &Manager{path: path, logger: logger}
	if data, err := os.ReadFile(path); err == nil {
		var s Session
		if json.Unmarshal(data, &s) == nil && s.AccessToken != "" {
			m.session = &s
		} else {
			logger.Warn("discarding unreadable session file", zap.String("path", path))
		}
	}
	return m
}

// SetClient wires the API client used for token refresh. Called once at
// composition time; the client in turn uses this manager as its token
// provider.
func (m *Manager) SetClient(c *api.Client) {
	m.mu.Lock()
	m.client = c
	m.mu.Unlock()
}

// CurrentUser returns the authenticated user, or nil.
func (m *Manager) CurrentUser() *api.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session == nil {
		return nil
	}
	return m.session.User
}

// Scope returns the dashboard query scope for the current user.
func (m *Manager) Scope() api.Scope {
	return api.ScopeFor(m.CurrentUser())
}

// Authenticated reports whether a session is present.
func (m *Manager) Authenticated() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session != nil
}

// Login authenticates and persists the resulting session.
func (m *Manager) Login(ctx context.Context, creds api.Credentials) (*api.User, error) {
	m.mu.Lock()
	client := m.client
	m.mu.Unlock()
	if client == nil {
		return nil, errors.New("identity: no api client configured")
	}
	pair, err := client.Login(ctx, creds)
	if err != nil {
		return nil, err
	}
	return m.adopt(pair)
}

// Register creates an account and persists the resulting session.
func (m *Manager) Register(ctx context.Context, reg api.Registration) (*api.User, error) {
	m.mu.Lock()
	client := m.client
	m.mu.Unlock()
	if client == nil {
		return nil, errors.New("identity: no api client configured")
	}
	pair, err := client.Register(ctx, reg)
	if err != nil {
		return nil, err
	}
	return m.adopt(pair)
}

func (m *Manager) adopt(pair *api.TokenPair) (*api.User, error) {
	s := &Session{
		User:         pair.User,
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	}
	m.mu.Lock()
	m.session = s
	m.mu.Unlock()
	if err := m.save(s); err != nil {
		return nil, err
	}
	return pair.User, nil
}

// Logout clears the session in memory and on disk.
func (m *Manager) Logout() error {
	m.mu.Lock()
	m.session = nil
	m.mu.Unlock()
	if err := os.Remove(m.path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// AccessToken returns the current bearer token, refreshing it first when
// it is expired or about to expire. Satisfies api.TokenProvider.
func (m *Manager) AccessToken(ctx context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session == nil {
		return "", nil
	}
	if !tokenExpiring(m.session.AccessToken) || m.session.RefreshToken == "" || m.client == nil {
		return m.session.AccessToken, nil
	}

	resp, err := m.client.Refresh(ctx, m.session.RefreshToken)
	if err != nil {
		// A dead refresh token means the session is over; surface the
		// stale access token and let the server reject it with a 401.
		m.logger.Warn("token refresh failed", zap.Error(err))
		return m.session.AccessToken, nil
	}
	m.session.AccessToken = resp.AccessToken
	if err := m.save(m.session); err != nil {
		m.logger.Warn("persisting refreshed session failed", zap.Error(err))
	}
	m.logger.Debug("access token refreshed")
	return m.session.AccessToken, nil
}

func (m *Manager) save(s *Session) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(m.path), 0o700); err != nil {
		return err
	}
	if err := os.WriteFile(m.path, data, 0o600); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	return nil
}

// tokenExpiring reports whether the JWT's exp claim is within the refresh
// leeway. The signature is not verified; only the server can do that, and
// the worst case of a wrong guess is one rejected request.
func tokenExpiring(token string) bool {
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return false
	}
	if claims.ExpiresAt == nil {
		return false
	}
	return time.Until(claims.ExpiresAt.Time) < refreshLeeway
}

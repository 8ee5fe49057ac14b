package identity

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/davidayox123/acadrepo-tui/internal/api"
)

// signedToken builds an HS256 token expiring at exp. The manager never
// verifies signatures, so any key works.
func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "u1",
		ExpiresAt: jwt.NewNumericDate(exp),
	})
	s, err := tok.SignedString([]byte("test-key"))
	require.NoError(t, err)
	return s
}

func sessionPath(t *testing.T) string {
	return filepath.Join(t.TempDir(), "session.json")
}

func TestLoginPersistsSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/auth/login", r.URL.Path)
		_, _ = w.Write([]byte(`{
			"access_token": "at",
			"refresh_token": "rt",
			"token_type": "bearer",
			"user": {"id": "u1", "name": "Ada", "email": "ada@uni.edu", "role": "student"}
		}`))
	}))
	defer srv.Close()

	path := sessionPath(t)
	m := NewManager(path, zap.NewNop())
	m.SetClient(api.NewClient(srv.URL, m))

	user, err := m.Login(context.Background(), api.Credentials{Email: "ada@uni.edu", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, "Ada", user.Name)
	assert.True(t, m.Authenticated())

	// A fresh manager picks the session up from disk.
	m2 := NewManager(path, zap.NewNop())
	require.True(t, m2.Authenticated())
	assert.Equal(t, "u1", m2.CurrentUser().ID)
	assert.Equal(t, api.RoleStudent, m2.Scope().Role)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestLogoutRemovesSessionFile(t *testing.T) {
	path := sessionPath(t)
	m := NewManager(path, zap.NewNop())
	require.NoError(t, m.save(&Session{AccessToken: "at", User: &api.User{ID: "u1"}}))
	m.session = &Session{AccessToken: "at"}

	require.NoError(t, m.Logout())
	assert.False(t, m.Authenticated())
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	// Logging out twice is fine.
	require.NoError(t, m.Logout())
}

func TestCorruptSessionFileIsDiscarded(t *testing.T) {
	path := sessionPath(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o700))
	require.NoError(t, os.WriteFile(path, []byte("{broken"), 0o600))

	m := NewManager(path, zap.NewNop())
	assert.False(t, m.Authenticated())
	assert.Nil(t, m.CurrentUser())
}

func TestTokenExpiring(t *testing.T) {
	tests := []struct {
		name  string
		token func(t *testing.T) string
		want  bool
	}{
		{
			name:  "fresh token",
			token: func(t *testing.T) string { return signedToken(t, time.Now().Add(time.Hour)) },
			want:  false,
		},
		{
			name:  "inside the leeway",
			token: func(t *testing.T) string { return signedToken(t, time.Now().Add(10*time.Second)) },
			want:  true,
		},
		{
			name:  "already expired",
			token: func(t *testing.T) string { return signedToken(t, time.Now().Add(-time.Minute)) },
			want:  true,
		},
		{
			name:  "opaque token never refreshes",
			token: func(t *testing.T) string { return "not-a-jwt" },
			want:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tokenExpiring(tt.token(t)))
		})
	}
}

func TestAccessTokenRefreshesNearExpiry(t *testing.T) {
	refreshed := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/auth/refresh", r.URL.Path)
		assert.Equal(t, "Bearer rt", r.Header.Get("Authorization"))
		refreshed = true
		_, _ = w.Write([]byte(`{"access_token":"fresh-at","token_type":"bearer"}`))
	}))
	defer srv.Close()

	m := NewManager(sessionPath(t), zap.NewNop())
	m.SetClient(api.NewClient(srv.URL, m))
	m.session = &Session{
		AccessToken:  signedToken(t, time.Now().Add(5*time.Second)),
		RefreshToken: "rt",
		User:         &api.User{ID: "u1"},
	}

	tok, err := m.AccessToken(context.Background())
	require.NoError(t, err)
	assert.True(t, refreshed)
	assert.Equal(t, "fresh-at", tok)
}

func TestAccessTokenReturnsStaleOnRefreshFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"detail":"refresh token revoked"}`))
	}))
	defer srv.Close()

	stale := signedToken(t, time.Now().Add(-time.Minute))
	m := NewManager(sessionPath(t), zap.NewNop())
	m.SetClient(api.NewClient(srv.URL, m))
	m.session = &Session{AccessToken: stale, RefreshToken: "rt", User: &api.User{ID: "u1"}}

	// The stale token is surfaced; the server's 401 on the next request
	// drives the logout, not the refresh failure.
	tok, err := m.AccessToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, stale, tok)
}

func TestAccessTokenSkipsRefreshWhenFresh(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected for a fresh token")
	}))
	defer srv.Close()

	fresh := signedToken(t, time.Now().Add(time.Hour))
	m := NewManager(sessionPath(t), zap.NewNop())
	m.SetClient(api.NewClient(srv.URL, m))
	m.session = &Session{AccessToken: fresh, RefreshToken: "rt"}

	tok, err := m.AccessToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, fresh, tok)
}

func TestAccessTokenEmptyWithoutSession(t *testing.T) {
	m := NewManager(sessionPath(t), zap.NewNop())
	tok, err := m.AccessToken(context.Background())
	require.NoError(t, err)
	assert.Empty(t, tok)
}

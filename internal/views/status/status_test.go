package status

import (
	"strings"
	"testing"
	"time"

	"github.com/davidayox123/acadrepo-tui/internal/push"
)

func TestConnectionIndicator(t *testing.T) {
	tests := []struct {
		name   string
		status push.Status
		want   string
	}{
		{"connected shows live", push.StatusConnected, "live"},
		{"connecting", push.StatusConnecting, "connecting"},
		{"errored", push.StatusErrored, "push error"},
		{"disconnected falls back to polling", push.StatusDisconnected, "polling"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := New()
			m.Width = 80
			m.Connection = tt.status
			if v := m.View(); !strings.Contains(v, tt.want) {
				t.Errorf("View() missing %q", tt.want)
			}
		})
	}
}

func TestIdentityAndFreshness(t *testing.T) {
	m := New()
	m.Width = 100
	m.Role = "supervisor"
	m.UserName = "Dr. Lovelace"
	m.LastUpdated = time.Now().Add(-5 * time.Minute)

	v := m.View()
	for _, want := range []string{"[V]", "Dr. Lovelace", "updated 5m ago"} {
		if !strings.Contains(v, want) {
			t.Errorf("View() missing %q", want)
		}
	}
}

func TestSignedOutAndError(t *testing.T) {
	m := New()
	m.Width = 100
	m.Err = "api: 500 Internal Server Error"

	v := m.View()
	if !strings.Contains(v, "not signed in") {
		t.Error("View() should show the signed-out placeholder")
	}
	if !strings.Contains(v, "500") {
		t.Error("View() should surface the error")
	}
}

func TestLoadingBeatsAge(t *testing.T) {
	m := New()
	m.Width = 80
	m.Loading = true
	m.LastUpdated = time.Now().Add(-time.Minute)

	if v := m.View(); !strings.Contains(v, "refreshing") {
		t.Error("View() should show the refreshing indicator while loading")
	}
}

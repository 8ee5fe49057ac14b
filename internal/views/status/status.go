package status

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/davidayox123/acadrepo-tui/internal/push"
	"github.com/davidayox123/acadrepo-tui/internal/theme"
)

// Model holds the status bar state.
type Model struct {
	Connection  push.Status
	Role        string
	UserName    string
	LastUpdated time.Time
	Loading     bool
	Err         string
	Width       int
}

// New creates a status bar model.
func New() Model {
	return Model{Connection: push.StatusDisconnected}
}

// View renders the status bar.
func (m Model) View() string {
	width := m.Width
	if width < 40 {
		width = 40
	}

	var connStr string
	switch m.Connection {
	case push.StatusConnected:
		connStr = lipgloss.NewStyle().Foreground(theme.ColorHealthy).Render("● live")
	case push.StatusConnecting:
		connStr = lipgloss.NewStyle().Foreground(theme.ColorWarning).Render("◌ connecting")
	case push.StatusErrored:
		connStr = lipgloss.NewStyle().Foreground(theme.ColorDanger).Render("✗ push error")
	default:
		connStr = lipgloss.NewStyle().Foreground(theme.ColorDimmed).Render("○ polling")
	}

	identity := theme.RoleBadge(m.Role) + " " + m.UserName
	if m.UserName == "" {
		identity = theme.StyleDimmed.Render("not signed in")
	}

	var freshness string
	switch {
	case m.Loading:
		freshness = lipgloss.NewStyle().Foreground(theme.ColorWarning).Render("refreshing…")
	case m.LastUpdated.IsZero():
		freshness = theme.StyleDimmed.Render("no data")
	default:
		freshness = theme.StyleDimmed.Render("updated " + formatAge(m.LastUpdated))
	}

	sep := lipgloss.NewStyle().Foreground(theme.ColorBorder).Render(" | ")
	content := connStr + sep + identity + sep + freshness
	if m.Err != "" {
		content += sep + lipgloss.NewStyle().Foreground(theme.ColorDanger).Render(truncate(m.Err, width/3))
	}

	return lipgloss.NewStyle().
		Width(width).
		Padding(0, 1).
		BorderStyle(lipgloss.DoubleBorder()).
		BorderForeground(theme.ColorBorder).
		Render(content)
}

func formatAge(t time.Time) string {
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return fmt.Sprintf("%ds ago", int(d.Seconds()))
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	default:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	}
}

func truncate(s string, max int) string {
	if max < 4 || len(s) <= max {
		return s
	}
	return s[:max-1] + "…"
}

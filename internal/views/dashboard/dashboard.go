// Package dashboard renders the stats summary row, recent-documents table,
// and activity feed for the Academic Repository TUI.
package dashboard

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/davidayox123/acadrepo-tui/internal/api"
	"github.com/davidayox123/acadrepo-tui/internal/theme"
)

// Model holds the dashboard view state.
type Model struct {
	Width int

	stats    *api.StatsView
	recent   []api.RecentDocument
	activity []api.ActivityItem
	loading  bool
}

// New creates a dashboard model.
func New() Model {
	return Model{}
}

// SetData replaces the rendered dashboard data.
func (m *Model) SetData(stats *api.StatsView, recent []api.RecentDocument, activity []api.ActivityItem, loading bool) {
	m.stats = stats
	m.recent = recent
	m.activity = activity
	m.loading = loading
}

// View renders the full dashboard: stats row, recent documents, activity.
func (m Model) View() string {
	width := m.Width
	if width < 40 {
		width = 40
	}

	sections := []string{
		m.renderStatsRow(width),
		m.renderRecentDocuments(width),
		m.renderActivity(width),
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// statLabels returns the four card labels for a role. The supervisor's
// counters track review workload rather than downloads.
func statLabels(role api.Role) (docs, pending, approved, last string) {
	switch role {
	case api.RoleStudent:
		return "My Documents", "Pending", "Approved", "Downloads"
	case api.RoleSupervisor:
		return "Dept Documents", "Assigned", "Approved", "Completed"
	case api.RoleAdmin:
		return "All Documents", "Pending", "Approved", "Downloads"
	default:
		return "Dept Documents", "Pending", "Approved", "Downloads"
	}
}

// renderStatsRow shows the role-shaped counters in a single bordered row.
func (m Model) renderStatsRow(width int) string {
	statStyle := lipgloss.NewStyle().Padding(0, 1)

	if m.stats == nil {
		placeholder := theme.StyleDimmed.Render("Loading stats...")
		if m.loading {
			placeholder = theme.StyleDimmed.Render("Fetching dashboard...")
		}
		return lipgloss.NewStyle().
			Width(width).
			Padding(0, 1).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(theme.ColorBorder).
			Render(placeholder)
	}

	docsLabel, pendingLabel, approvedLabel, lastLabel := statLabels(m.stats.Role)

	stats := []string{
		statStyle.Foreground(theme.ColorBright).Render(
			fmt.Sprintf("%s: %s", docsLabel, formatCount(m.stats.TotalDocuments))),
		statStyle.Foreground(theme.ColorPending).Render(
			fmt.Sprintf("%s: %s", pendingLabel, formatCount(m.stats.PendingReviews))),
		statStyle.Foreground(theme.ColorApproved).Render(
			fmt.Sprintf("%s: %s", approvedLabel, formatCount(m.stats.ApprovedDocuments))),
		statStyle.Foreground(theme.ColorDownload).Render(
			fmt.Sprintf("%s: %s", lastLabel, formatCount(m.stats.TotalDownloads))),
	}
	if m.stats.Role == api.RoleAdmin {
		stats = append(stats, statStyle.Foreground(theme.ColorAdmin).Render(
			fmt.Sprintf("Users: %s", formatCount(m.stats.TotalUsers))))
	}

	content := strings.Join(stats, lipgloss.NewStyle().Foreground(theme.ColorBorder).Render(" | "))

	return lipgloss.NewStyle().
		Width(width).
		Padding(0, 1).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(theme.ColorBorder).
		Render(content)
}

// renderRecentDocuments renders a table of the latest documents.
func (m Model) renderRecentDocuments(width int) string {
	header := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorBright).
		Render("  Recent Documents")

	if len(m.recent) == 0 {
		return lipgloss.JoinVertical(lipgloss.Left,
			header,
			theme.StyleDimmed.Render("  No recent documents"),
		)
	}

	// Column widths (fixed layout).
	colStatus := 3
	colTitle := 32
	colUploader := 22
	colDownloads := 5
	colAge := 12

	dimStyle := lipgloss.NewStyle().Foreground(theme.ColorDimmed)
	brightStyle := lipgloss.NewStyle().Foreground(theme.ColorBright)

	tableHeader := fmt.Sprintf("  %-*s %-*s %-*s %*s %-*s",
		colStatus, " ",
		colTitle, "Title",
		colUploader, "Uploader",
		colDownloads, "DLs",
		colAge, "Uploaded",
	)
	lines := []string{
		header,
		dimStyle.Render(tableHeader),
		dimStyle.Render("  " + strings.Repeat("─", min(width-4, colStatus+colTitle+colUploader+colDownloads+colAge+4))),
	}

	for _, d := range m.recent {
		status := string(d.Status)
		glyph := lipgloss.NewStyle().Foreground(theme.StatusColor(status)).
			Width(colStatus).Render(theme.StatusGlyph(status))

		title := d.Title
		if len(title) > colTitle-1 {
			title = title[:colTitle-2] + "…"
		}
		titleStr := brightStyle.Width(colTitle).Render(title)

		uploader := d.Uploader.Name
		if uploader == "" {
			uploader = d.Uploader.Email
		}
		if len(uploader) > colUploader-1 {
			uploader = uploader[:colUploader-2] + "…"
		}
		uploaderStr := dimStyle.Width(colUploader).Render(uploader)

		dlStr := brightStyle.Width(colDownloads).Align(lipgloss.Right).
			Render(fmt.Sprintf("%d", d.Downloads))

		ageStr := dimStyle.Width(colAge).Render(formatAge(d.UploadedAt))

		lines = append(lines, fmt.Sprintf("  %s %s %s %s %s",
			glyph, titleStr, uploaderStr, dlStr, ageStr))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

// renderActivity renders the recent-activity feed.
func (m Model) renderActivity(width int) string {
	header := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorBright).
		Render("  Recent Activity")

	if len(m.activity) == 0 {
		return lipgloss.JoinVertical(lipgloss.Left,
			header,
			theme.StyleDimmed.Render("  No recent activity"),
		)
	}

	dimStyle := lipgloss.NewStyle().Foreground(theme.ColorDimmed)

	lines := []string{header}
	for _, a := range m.activity {
		kindStr := lipgloss.NewStyle().Foreground(theme.ActivityColor(a.Type)).
			Width(10).Render(a.Type)

		msg := a.Message
		maxMsg := width - 28
		if maxMsg > 10 && len(msg) > maxMsg {
			msg = msg[:maxMsg-1] + "…"
		}

		ageStr := dimStyle.Render(formatAge(a.Timestamp))
		lines = append(lines, fmt.Sprintf("  %s %s %s", kindStr, msg, ageStr))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

// formatAge renders a timestamp as a compact relative age.
func formatAge(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return fmt.Sprintf("%ds ago", int(d.Seconds()))
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours())/24)
	}
}

// formatCount formats large numbers with K/M suffixes.
func formatCount(n int) string {
	switch {
	case n >= 1_000_000:
		return fmt.Sprintf("%.1fM", float64(n)/1_000_000)
	case n >= 1_000:
		return fmt.Sprintf("%.1fK", float64(n)/1_000)
	default:
		return fmt.Sprintf("%d", n)
	}
}

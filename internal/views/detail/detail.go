// Package detail renders the document info flyout overlay.
package detail

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/davidayox123/acadrepo-tui/internal/api"
	"github.com/davidayox123/acadrepo-tui/internal/theme"
)

const (
	panelWidth = 64
	labelWidth = 14
)

var (
	stylePanel = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(theme.ColorBorder).
			Padding(0, 1)

	styleLabel = lipgloss.NewStyle().
			Foreground(theme.ColorDimmed).
			Width(labelWidth)

	styleValue = lipgloss.NewStyle().
			Foreground(theme.ColorBright)

	styleTitle = lipgloss.NewStyle().
			Bold(true).
			Foreground(theme.ColorBright)

	styleFooter = lipgloss.NewStyle().
			Foreground(theme.ColorDimmed)

	styleError = lipgloss.NewStyle().
			Foreground(theme.ColorDanger)
)

// Model holds the state for the detail overlay.
type Model struct {
	Document *api.Document
	Reviews  []api.Review
	// ActionError is a transient failure from a download, review, or
	// delete attempt, shown inline rather than as a toast.
	ActionError string
	// CanReview enables the review footer hint.
	CanReview bool
	// CanDelete enables the delete footer hint.
	CanDelete bool
}

// New creates a detail model for the given document.
func New(d *api.Document) Model {
	return Model{Document: d}
}

// View renders the detail panel. Returns an empty string if no document
// is set.
func (m Model) View() string {
	if m.Document == nil {
		return ""
	}
	inner := m.renderInner(m.Document)
	return stylePanel.Width(panelWidth).Render(inner)
}

func (m Model) renderInner(d *api.Document) string {
	var b strings.Builder

	title := d.Title
	if len(title) > panelWidth-14 {
		title = title[:panelWidth-15] + "…"
	}
	b.WriteString(styleTitle.Render("Document: "+title) + "\n")
	b.WriteString(strings.Repeat("─", panelWidth-4) + "\n")

	writeRow(&b, "ID", truncate(d.ID, 36))

	status := string(d.Status)
	statusStr := lipgloss.NewStyle().Foreground(theme.StatusColor(status)).
		Render(theme.StatusGlyph(status) + " " + status)
	writeRow(&b, "Status", statusStr)
	writeRow(&b, "Department", d.Department)
	if len(d.Tags) > 0 {
		writeRow(&b, "Tags", strings.Join(d.Tags, ", "))
	}

	b.WriteString("\n")

	writeRow(&b, "File", truncate(d.FileName, 40))
	writeRow(&b, "Type", d.FileType)
	writeRow(&b, "Size", formatSize(d.FileSize))
	writeRow(&b, "Version", fmt.Sprintf("v%d", d.Version))
	writeRow(&b, "Downloads", fmt.Sprintf("%d", d.DownloadCount))
	visibility := "private"
	if d.IsPublic {
		visibility = "public"
	}
	writeRow(&b, "Visibility", visibility)

	b.WriteString("\n")

	if !d.CreatedAt.IsZero() {
		writeRow(&b, "Uploaded", formatAge(d.CreatedAt))
	}
	if !d.UpdatedAt.IsZero() && !d.UpdatedAt.Equal(d.CreatedAt) {
		writeRow(&b, "Updated", formatAge(d.UpdatedAt))
	}

	if d.Description != "" {
		b.WriteString("\n")
		b.WriteString(renderDescription(d.Description))
	}

	if len(m.Reviews) > 0 {
		b.WriteString("\n")
		header := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorDimmed).
			Render(fmt.Sprintf("Reviews (%d)", len(m.Reviews)))
		b.WriteString(header + "\n")
		for _, r := range m.Reviews {
			b.WriteString(renderReview(r) + "\n")
		}
	}

	if m.ActionError != "" {
		b.WriteString("\n")
		b.WriteString(styleError.Render("Error: "+m.ActionError) + "\n")
	}

	b.WriteString("\n")
	b.WriteString(styleFooter.Render(m.footer()))

	return b.String()
}

func (m Model) footer() string {
	parts := []string{"[d] download"}
	if m.CanReview {
		parts = append(parts, "[a] approve", "[x] reject")
	}
	if m.CanDelete {
		parts = append(parts, "[D] delete")
	}
	parts = append(parts, "[esc] close")
	return strings.Join(parts, "  ")
}

// renderDescription renders the document description as terminal markdown.
// A render failure falls back to the raw text.
func renderDescription(desc string) string {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(panelWidth-6),
	)
	if err != nil {
		return desc + "\n"
	}
	out, err := r.Render(desc)
	if err != nil {
		return desc + "\n"
	}
	return strings.TrimRight(out, "\n") + "\n"
}

func renderReview(r api.Review) string {
	color := theme.StatusColor(r.Status)
	statusStr := lipgloss.NewStyle().Foreground(color).Render(r.Status)

	line := fmt.Sprintf("  %s %s", theme.StatusGlyph(r.Status), statusStr)
	if r.Rating > 0 {
		line += theme.StyleDimmed.Render(fmt.Sprintf("  %s", strings.Repeat("★", r.Rating)))
	}
	if r.Comments != "" {
		line += "  " + truncate(r.Comments, 36)
	}
	line += theme.StyleDimmed.Render("  " + formatAge(r.CreatedAt))
	return line
}

func writeRow(b *strings.Builder, label, value string) {
	b.WriteString(styleLabel.Render(label+":") + styleValue.Render(value) + "\n")
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-1] + "…"
}

func formatSize(n int64) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}

func formatAge(t time.Time) string {
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return fmt.Sprintf("%ds ago", int(d.Seconds()))
	case d < time.Hour:
		return fmt.Sprintf("%dm %ds ago", int(d.Minutes()), int(d.Seconds())%60)
	case d < 24*time.Hour:
		h := int(d.Hours())
		return fmt.Sprintf("%dh %dm ago", h, int(d.Minutes())%60)
	default:
		return t.Format("2006-01-02 15:04")
	}
}

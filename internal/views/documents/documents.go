// Package documents implements the document browser: documents grouped by
// review zone (queue/in review/decided) with a selection cursor.
package documents

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/davidayox123/acadrepo-tui/internal/api"
	"github.com/davidayox123/acadrepo-tui/internal/theme"
)

const titleWidth = 32

// Model holds the document browser state.
type Model struct {
	// Documents grouped by zone, rebuilt on each SetDocuments call.
	queue   []*api.Document
	review  []*api.Document
	decided []*api.Document

	// Navigation state.
	SelectedIdx int
	ActiveZone  Zone

	// Layout dimensions.
	Width  int
	Height int
}

// New creates a document browser model.
func New() Model {
	return Model{}
}

// SetDocuments replaces the document list and rebuilds zone groupings.
func (m *Model) SetDocuments(docs []api.Document) {
	m.queue = nil
	m.review = nil
	m.decided = nil

	for i := range docs {
		d := &docs[i]
		switch Classify(d) {
		case ZoneQueue:
			m.queue = append(m.queue, d)
		case ZoneReview:
			m.review = append(m.review, d)
		case ZoneDecided:
			m.decided = append(m.decided, d)
		}
	}

	// Queue and review sort oldest first so reviewers see the longest
	// waiters at the top; decided sorts by most recent decision.
	sort.Slice(m.queue, func(i, j int) bool {
		return m.queue[i].CreatedAt.Before(m.queue[j].CreatedAt)
	})
	sort.Slice(m.review, func(i, j int) bool {
		return m.review[i].UpdatedAt.Before(m.review[j].UpdatedAt)
	})
	sort.Slice(m.decided, func(i, j int) bool {
		return m.decided[i].UpdatedAt.After(m.decided[j].UpdatedAt)
	})

	m.clampSelection()
}

// Counts returns the number of documents in each zone.
func (m Model) Counts() (queue, review, decided int) {
	return len(m.queue), len(m.review), len(m.decided)
}

// MoveDown advances the selection cursor within the active zone.
func (m *Model) MoveDown() {
	count := m.activeZoneCount()
	if count > 0 {
		m.SelectedIdx = (m.SelectedIdx + 1) % count
	}
}

// MoveUp moves the selection cursor back within the active zone.
func (m *Model) MoveUp() {
	count := m.activeZoneCount()
	if count > 0 {
		m.SelectedIdx = (m.SelectedIdx - 1 + count) % count
	}
}

// CycleZone advances to the next zone.
func (m *Model) CycleZone() {
	m.ActiveZone = (m.ActiveZone + 1) % 3
	m.SelectedIdx = 0
}

// JumpToZone sets the active zone directly.
func (m *Model) JumpToZone(z Zone) {
	m.ActiveZone = z
	m.SelectedIdx = 0
}

// SelectedDocument returns the currently selected document, if any.
func (m Model) SelectedDocument() *api.Document {
	zone := m.activeZoneDocs()
	if m.SelectedIdx >= 0 && m.SelectedIdx < len(zone) {
		return zone[m.SelectedIdx]
	}
	return nil
}

// View renders the full document browser.
func (m Model) View() string {
	width := m.Width
	if width < 60 {
		width = 60
	}

	var sections []string

	queueHeader := "═══ QUEUE " + strings.Repeat("═", maxInt(4, width-12))
	sections = append(sections, theme.StyleHeader.Render(queueHeader))

	if len(m.queue) == 0 {
		sections = append(sections, theme.StyleDimmed.Render("  No documents waiting"))
	}
	for i, d := range m.queue {
		selected := m.ActiveZone == ZoneQueue && i == m.SelectedIdx
		sections = append(sections, renderDocLine(i, d, selected))
	}

	reviewHeader := "─── IN REVIEW " + strings.Repeat("─", maxInt(4, width-16))
	sections = append(sections, theme.StyleDimmed.Render(reviewHeader))

	if len(m.review) == 0 {
		sections = append(sections, theme.StyleDimmed.Render("  No documents in review"))
	}
	for i, d := range m.review {
		selected := m.ActiveZone == ZoneReview && i == m.SelectedIdx
		sections = append(sections, renderDocLine(i, d, selected))
	}

	decidedHeader := "─── DECIDED " + strings.Repeat("─", maxInt(4, width-14))
	sections = append(sections, theme.StyleDimmed.Render(decidedHeader))

	if len(m.decided) == 0 {
		sections = append(sections, theme.StyleDimmed.Render("  No decided documents"))
	}
	for i, d := range m.decided {
		selected := m.ActiveZone == ZoneDecided && i == m.SelectedIdx
		sections = append(sections, renderDocLine(i, d, selected))
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// renderDocLine renders one document row: cursor, number, status glyph,
// title, department, size, downloads, and age.
func renderDocLine(idx int, d *api.Document, selected bool) string {
	var b strings.Builder

	if selected {
		b.WriteString(lipgloss.NewStyle().Foreground(theme.ColorBright).Bold(true).Render("> "))
	} else {
		b.WriteString("  ")
	}

	b.WriteString(theme.StyleDimmed.Render(fmt.Sprintf("%2d", idx+1)))
	b.WriteString("│ ")

	status := string(d.Status)
	glyphStyle := lipgloss.NewStyle().Foreground(theme.StatusColor(status))
	b.WriteString(glyphStyle.Render(theme.StatusGlyph(status)))
	b.WriteByte(' ')

	title := d.Title
	if len(title) > titleWidth {
		title = title[:titleWidth-1] + "…"
	}
	titleStyle := lipgloss.NewStyle().Foreground(theme.ColorBright)
	if selected {
		titleStyle = titleStyle.Bold(true)
	}
	b.WriteString(titleStyle.Render(title))
	if len(title) < titleWidth {
		b.WriteString(strings.Repeat(" ", titleWidth-len(title)))
	}

	b.WriteString("  ")
	b.WriteString(glyphStyle.Render(status))
	b.WriteString(theme.StyleDimmed.Render(fmt.Sprintf("  %-12s %7s  dl:%-4d %s",
		truncate(d.Department, 12), formatSize(d.FileSize), d.DownloadCount, formatAge(d.CreatedAt))))

	return b.String()
}

func (m Model) activeZoneCount() int {
	return len(m.activeZoneDocs())
}

func (m Model) activeZoneDocs() []*api.Document {
	switch m.ActiveZone {
	case ZoneQueue:
		return m.queue
	case ZoneReview:
		return m.review
	case ZoneDecided:
		return m.decided
	default:
		return nil
	}
}

func (m *Model) clampSelection() {
	count := m.activeZoneCount()
	if count == 0 {
		m.SelectedIdx = 0
	} else if m.SelectedIdx >= count {
		m.SelectedIdx = count - 1
	}
}

// formatSize renders a file size in human-readable form.
func formatSize(n int64) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1fMB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1fKB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%dB", n)
	}
}

func formatAge(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	d := time.Since(t)
	switch {
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd", int(d.Hours())/24)
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-1] + "…"
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// Package debug provides a scrollable, filterable event log overlay for
// inspecting push traffic, HTTP activity, and errors at runtime.
package debug

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/davidayox123/acadrepo-tui/internal/theme"
)

const maxEntries = 200

// Kind classifies an event log entry.
type Kind string

const (
	KindPush Kind = "push"
	KindHTTP Kind = "http"
	KindAuth Kind = "auth"
	KindErr  Kind = "err"
)

// filterOrder is the cycle for CycleFilter; the empty Kind means "all".
var filterOrder = []Kind{"", KindPush, KindHTTP, KindAuth, KindErr}

// Entry is a single event log line.
type Entry struct {
	Seq     int
	Time    time.Time
	Kind    Kind
	Message string
}

// Model holds event log state.
type Model struct {
	entries []Entry
	seq     int
	offset  int  // scroll offset from the bottom, in visible rows
	filter  Kind // empty shows everything
}

// New creates an empty event log model.
func New() Model {
	return Model{}
}

// Add appends an entry, capping the buffer and snapping the viewport back
// to the newest row.
func (m *Model) Add(kind Kind, message string) {
	m.seq++
	m.entries = append(m.entries, Entry{
		Seq:     m.seq,
		Time:    time.Now(),
		Kind:    kind,
		Message: message,
	})
	if len(m.entries) > maxEntries {
		m.entries = m.entries[len(m.entries)-maxEntries:]
	}
	m.offset = 0
}

// Len reports how many entries are buffered.
func (m Model) Len() int { return len(m.entries) }

// CycleFilter advances to the next kind filter: all, push, http, auth, err.
func (m *Model) CycleFilter() {
	for i, k := range filterOrder {
		if k == m.filter {
			m.filter = filterOrder[(i+1)%len(filterOrder)]
			m.offset = 0
			return
		}
	}
	m.filter = ""
}

// visible returns the entries matching the active filter, oldest first.
func (m Model) visible() []Entry {
	if m.filter == "" {
		return m.entries
	}
	var out []Entry
	for _, e := range m.entries {
		if e.Kind == m.filter {
			out = append(out, e)
		}
	}
	return out
}

// ScrollUp moves the viewport toward older entries.
func (m *Model) ScrollUp(n int) {
	m.offset += n
	if limit := len(m.visible()) - 1; m.offset > limit {
		m.offset = limit
	}
	if m.offset < 0 {
		m.offset = 0
	}
}

// ScrollDown moves the viewport toward newer entries.
func (m *Model) ScrollDown(n int) {
	m.offset -= n
	if m.offset < 0 {
		m.offset = 0
	}
}

// counts tallies entries per kind for the header line.
func (m Model) counts() string {
	tally := map[Kind]int{}
	for _, e := range m.entries {
		tally[e.Kind]++
	}
	var parts []string
	for _, k := range filterOrder[1:] {
		if tally[k] > 0 {
			parts = append(parts, fmt.Sprintf("%s:%d", k, tally[k]))
		}
	}
	return strings.Join(parts, "  ")
}

// View renders the event log as an overlay panel.
func (m Model) View(width, height int) string {
	innerW := width - 4
	if innerW < 24 {
		innerW = 24
	}
	rows := height - 7
	if rows < 3 {
		rows = 3
	}

	filterLabel := "all"
	if m.filter != "" {
		filterLabel = string(m.filter)
	}
	title := theme.StyleHeader.Render(" EVENT LOG ") + " " +
		theme.StyleDimmed.Render("filter: "+filterLabel)
	help := theme.StyleDimmed.Render(
		fmt.Sprintf("j/k:scroll  tab:filter  esc:close  %d entries", len(m.entries)))

	panel := lipgloss.NewStyle().
		Width(innerW).
		Padding(1, 2).
		BorderStyle(lipgloss.DoubleBorder()).
		BorderForeground(theme.ColorBorder)

	vis := m.visible()
	if len(vis) == 0 {
		placeholder := "  No events recorded yet."
		if m.filter != "" && len(m.entries) > 0 {
			placeholder = fmt.Sprintf("  No %s events.", m.filter)
		}
		body := theme.StyleDimmed.Render(placeholder)
		return panel.Render(lipgloss.JoinVertical(lipgloss.Left, title, "", body, "", help))
	}

	end := len(vis) - m.offset
	if end > len(vis) {
		end = len(vis)
	}
	start := end - rows
	if start < 0 {
		start = 0
	}

	var lines []string
	for _, e := range vis[start:end] {
		msg := e.Message
		if avail := innerW - 26; avail > 3 && len(msg) > avail {
			msg = msg[:avail-3] + "..."
		}
		lines = append(lines, strings.Join([]string{
			theme.StyleDimmed.Render(fmt.Sprintf("#%03d", e.Seq%1000)),
			theme.StyleDimmed.Render(e.Time.Format("15:04:05")),
			lipgloss.NewStyle().Foreground(kindColor(e.Kind)).Width(5).Render(string(e.Kind)),
			msg,
		}, " "))
	}

	footer := m.counts()
	if m.offset > 0 {
		footer += theme.StyleDimmed.Render(fmt.Sprintf("   ↓ %d newer", m.offset))
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		title, strings.Join(lines, "\n"), footer, help)
	return panel.Render(content)
}

func kindColor(kind Kind) lipgloss.Color {
	switch kind {
	case KindPush:
		return theme.ColorUnderReview
	case KindErr:
		return theme.ColorDanger
	case KindHTTP:
		return theme.ColorDownload
	case KindAuth:
		return theme.ColorWarning
	default:
		return theme.ColorDimmed
	}
}

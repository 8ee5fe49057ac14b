// Package admin provides the user administration overlay: a paged user
// listing with activate/deactivate and delete actions, admin-only.
package admin

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/davidayox123/acadrepo-tui/internal/api"
	"github.com/davidayox123/acadrepo-tui/internal/theme"
)

const pageLimit = 20

// UsersLoadedMsg is returned after fetching the user listing.
type UsersLoadedMsg struct {
	Page *api.UserPage
	Err  error
}

// OverviewLoadedMsg is returned after fetching the user overview counters.
type OverviewLoadedMsg struct {
	Overview *api.UserOverview
	Err      error
}

// UserMutatedMsg is returned after a toggle or delete call.
type UserMutatedMsg struct {
	Err error
}

// KeyMap holds the admin-specific key bindings.
type KeyMap struct {
	Up       key.Binding
	Down     key.Binding
	PrevPage key.Binding
	NextPage key.Binding
	Toggle   key.Binding
	Delete   key.Binding
	Confirm  key.Binding
	Refresh  key.Binding
	Escape   key.Binding
}

// DefaultKeyMap returns the default admin key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/↑", "prev user"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/↓", "next user"),
		),
		PrevPage: key.NewBinding(
			key.WithKeys("h", "left"),
			key.WithHelp("h/←", "prev page"),
		),
		NextPage: key.NewBinding(
			key.WithKeys("l", "right"),
			key.WithHelp("l/→", "next page"),
		),
		Toggle: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "toggle active"),
		),
		Delete: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "delete"),
		),
		Confirm: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y", "confirm"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "close"),
		),
	}
}

// Model is the admin overlay model.
type Model struct {
	client *api.Client
	keys   KeyMap

	users    []api.User
	total    int
	skip     int
	overview *api.UserOverview

	selectedIdx int

	// pendingDelete holds the user awaiting a delete confirmation.
	pendingDelete *api.User

	loading   bool
	statusMsg string

	width  int
	height int
}

// New creates an admin model. It begins in the loading state.
func New(client *api.Client) Model {
	return Model{
		client:  client,
		keys:    DefaultKeyMap(),
		loading: true,
	}
}

// Init fetches the first page and the overview counters.
func (m Model) Init() tea.Cmd {
	return tea.Batch(fetchUsers(m.client, 0), fetchOverview(m.client))
}

// SetSize updates the available rendering area.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// Update handles messages for the admin overlay.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case UsersLoadedMsg:
		m.loading = false
		if msg.Err != nil {
			m.statusMsg = "Error: " + msg.Err.Error()
			return m, nil
		}
		m.users = msg.Page.Items
		m.total = msg.Page.Total
		m.skip = msg.Page.Skip
		if m.selectedIdx >= len(m.users) {
			m.selectedIdx = 0
		}
		return m, nil

	case OverviewLoadedMsg:
		if msg.Err == nil {
			m.overview = msg.Overview
		}
		return m, nil

	case UserMutatedMsg:
		if msg.Err != nil {
			m.statusMsg = "Error: " + msg.Err.Error()
			return m, nil
		}
		m.statusMsg = "Saved"
		return m, tea.Batch(fetchUsers(m.client, m.skip), fetchOverview(m.client))

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	// A pending delete only understands confirm or anything-else-cancels.
	if m.pendingDelete != nil {
		target := m.pendingDelete
		m.pendingDelete = nil
		if key.Matches(msg, m.keys.Confirm) {
			m.statusMsg = ""
			return m, deleteUser(m.client, target.ID)
		}
		m.statusMsg = "Delete cancelled"
		return m, nil
	}

	m.statusMsg = ""

	switch {
	case key.Matches(msg, m.keys.Up):
		if len(m.users) > 0 {
			m.selectedIdx = (m.selectedIdx - 1 + len(m.users)) % len(m.users)
		}

	case key.Matches(msg, m.keys.Down):
		if len(m.users) > 0 {
			m.selectedIdx = (m.selectedIdx + 1) % len(m.users)
		}

	case key.Matches(msg, m.keys.PrevPage):
		if m.skip > 0 {
			skip := m.skip - pageLimit
			if skip < 0 {
				skip = 0
			}
			m.loading = true
			m.selectedIdx = 0
			return m, fetchUsers(m.client, skip)
		}

	case key.Matches(msg, m.keys.NextPage):
		if m.skip+pageLimit < m.total {
			m.loading = true
			m.selectedIdx = 0
			return m, fetchUsers(m.client, m.skip+pageLimit)
		}

	case key.Matches(msg, m.keys.Toggle):
		if u := m.selectedUser(); u != nil {
			return m, toggleActive(m.client, u)
		}

	case key.Matches(msg, m.keys.Delete):
		if u := m.selectedUser(); u != nil {
			m.pendingDelete = u
			m.statusMsg = fmt.Sprintf("Delete %s? [y] confirm, any other key cancels", u.Email)
		}

	case key.Matches(msg, m.keys.Refresh):
		m.loading = true
		return m, tea.Batch(fetchUsers(m.client, m.skip), fetchOverview(m.client))
	}

	return m, nil
}

func (m *Model) selectedUser() *api.User {
	if m.selectedIdx >= 0 && m.selectedIdx < len(m.users) {
		return &m.users[m.selectedIdx]
	}
	return nil
}

// View renders the admin overlay.
func (m Model) View() string {
	if m.loading && len(m.users) == 0 {
		return theme.StyleBorder.Padding(1, 2).Render("Loading users...")
	}

	title := theme.StyleHeader.Render("  USER ADMINISTRATION  ")

	sections := []string{title, ""}
	if m.overview != nil {
		sections = append(sections, m.renderOverview(), "")
	}
	sections = append(sections, m.renderTable())

	pageInfo := theme.StyleDimmed.Render(fmt.Sprintf("  %d-%d of %d",
		m.skip+1, m.skip+len(m.users), m.total))
	help := theme.StyleDimmed.Render("  j/k: user  h/l: page  t: toggle active  x: delete  r: refresh  esc: close")
	sections = append(sections, "", pageInfo, help)

	if m.statusMsg != "" {
		sections = append(sections,
			lipgloss.NewStyle().Foreground(theme.ColorWarning).Render("  "+m.statusMsg))
	}

	body := lipgloss.JoinVertical(lipgloss.Left, sections...)

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.ColorBorder).
		Padding(0, 1).
		Render(body)
}

func (m Model) renderOverview() string {
	o := m.overview
	statStyle := lipgloss.NewStyle().Padding(0, 1)
	parts := []string{
		statStyle.Foreground(theme.ColorBright).Render(fmt.Sprintf("Total: %d", o.TotalUsers)),
		statStyle.Foreground(theme.ColorHealthy).Render(fmt.Sprintf("Active: %d", o.ActiveUsers)),
		statStyle.Foreground(theme.ColorStudent).Render(fmt.Sprintf("Students: %d", o.ByRole.Students)),
		statStyle.Foreground(theme.ColorStaff).Render(fmt.Sprintf("Staff: %d", o.ByRole.Staff)),
		statStyle.Foreground(theme.ColorSupervisor).Render(fmt.Sprintf("Supervisors: %d", o.ByRole.Supervisors)),
		statStyle.Foreground(theme.ColorAdmin).Render(fmt.Sprintf("Admins: %d", o.ByRole.Admins)),
	}
	return strings.Join(parts, lipgloss.NewStyle().Foreground(theme.ColorBorder).Render("|"))
}

func (m Model) renderTable() string {
	if len(m.users) == 0 {
		return theme.StyleDimmed.Render("  No users")
	}

	colName := 24
	colEmail := 28
	colRole := 12
	colDept := 16

	dimStyle := lipgloss.NewStyle().Foreground(theme.ColorDimmed)
	tableHeader := fmt.Sprintf("    %-*s %-*s %-*s %-*s %s",
		colName, "Name",
		colEmail, "Email",
		colRole, "Role",
		colDept, "Department",
		"Active",
	)

	lines := []string{
		dimStyle.Render(tableHeader),
		dimStyle.Render("  " + strings.Repeat("─", colName+colEmail+colRole+colDept+12)),
	}

	for i, u := range m.users {
		cursor := "  "
		if i == m.selectedIdx {
			cursor = lipgloss.NewStyle().Foreground(theme.ColorBright).Bold(true).Render("> ")
		}

		name := truncate(u.Name, colName-1)
		nameStr := lipgloss.NewStyle().Foreground(theme.ColorBright).
			Width(colName).Render(name)

		emailStr := dimStyle.Width(colEmail).Render(truncate(u.Email, colEmail-1))

		roleStr := lipgloss.NewStyle().Foreground(theme.RoleColor(string(u.Role))).
			Width(colRole).Render(string(u.Role))

		deptStr := dimStyle.Width(colDept).Render(truncate(u.DepartmentName, colDept-1))

		activeStr := lipgloss.NewStyle().Foreground(theme.ColorHealthy).Render("✓")
		if !u.IsActive {
			activeStr = lipgloss.NewStyle().Foreground(theme.ColorDanger).Render("✗")
		}

		lines = append(lines, fmt.Sprintf("  %s%s %s %s %s %s",
			cursor, nameStr, emailStr, roleStr, deptStr, activeStr))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func truncate(s string, max int) string {
	if max < 2 || len(s) <= max {
		return s
	}
	return s[:max-1] + "…"
}

func fetchUsers(c *api.Client, skip int) tea.Cmd {
	return func() tea.Msg {
		page, err := c.ListUsers(context.Background(), api.UserFilter{Skip: skip, Limit: pageLimit})
		return UsersLoadedMsg{Page: page, Err: err}
	}
}

func fetchOverview(c *api.Client) tea.Cmd {
	return func() tea.Msg {
		o, err := c.UserOverview(context.Background())
		return OverviewLoadedMsg{Overview: o, Err: err}
	}
}

func toggleActive(c *api.Client, u *api.User) tea.Cmd {
	active := !u.IsActive
	id := u.ID
	return func() tea.Msg {
		_, err := c.UpdateUser(context.Background(), id, api.UserUpdate{IsActive: &active})
		return UserMutatedMsg{Err: err}
	}
}

func deleteUser(c *api.Client, id string) tea.Cmd {
	return func() tea.Msg {
		err := c.DeleteUser(context.Background(), id)
		return UserMutatedMsg{Err: err}
	}
}

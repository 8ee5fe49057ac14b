// Package app wires the root Bubble Tea model: screens, overlays, the
// dashboard store subscription, and the push channel event feed.
package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/davidayox123/acadrepo-tui/internal/api"
	"github.com/davidayox123/acadrepo-tui/internal/dashboard"
	"github.com/davidayox123/acadrepo-tui/internal/identity"
	"github.com/davidayox123/acadrepo-tui/internal/push"
	"github.com/davidayox123/acadrepo-tui/internal/theme"
	"github.com/davidayox123/acadrepo-tui/internal/views/admin"
	dashview "github.com/davidayox123/acadrepo-tui/internal/views/dashboard"
	"github.com/davidayox123/acadrepo-tui/internal/views/debug"
	"github.com/davidayox123/acadrepo-tui/internal/views/detail"
	"github.com/davidayox123/acadrepo-tui/internal/views/documents"
	"github.com/davidayox123/acadrepo-tui/internal/views/status"
)

// Screen identifies the main content area.
type Screen int

const (
	ScreenDashboard Screen = iota
	ScreenDocuments
)

// Overlay identifies which modal is active.
type Overlay int

const (
	OverlayNone Overlay = iota
	OverlayDetail
	OverlayUsers
	OverlayEvents
)

// Notices is a buffered channel the dashboard store posts user-facing
// failure notifications into. It satisfies dashboard.Notifier.
type Notices chan string

// Notify posts a notice without blocking; a full buffer drops it.
func (n Notices) Notify(message string) {
	select {
	case n <- message:
	default:
	}
}

// Messages.

type snapshotChangedMsg struct{}

type noticeMsg string

type pushEventMsg push.Event

type pushMessageMsg push.Message

type pushStartedMsg struct{ err error }

type initialFetchMsg struct{ err error }

type documentsLoadedMsg struct {
	page *api.DocumentPage
	err  error
}

type downloadDoneMsg struct {
	path string
	n    int64
	err  error
}

type reviewDoneMsg struct{ err error }

type deleteDoneMsg struct{ err error }

// Model is the root Bubble Tea model.
type Model struct {
	client *api.Client
	ident  *identity.Manager
	store  *dashboard.Store
	push   *push.Client
	logger *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc

	keys   KeyMap
	width  int
	height int

	screen  Screen
	overlay Overlay

	// Sub-views.
	statusBar status.Model
	dashView  dashview.Model
	docsView  documents.Model
	detail    detail.Model
	admin     admin.Model
	events    debug.Model

	// Channels bridged into the Bubble Tea loop.
	snapshots chan struct{}
	notices   Notices
	pushMsgs  chan push.Message

	notice string
}

// New creates the root model. pushMsgs receives every raw push message for
// the event log; wire it as the push client's handler.
func New(client *api.Client, ident *identity.Manager, store *dashboard.Store, pushClient *push.Client, notices Notices, pushMsgs chan push.Message, logger *zap.Logger) Model {
	ctx, cancel := context.WithCancel(context.Background())
	return Model{
		client:    client,
		ident:     ident,
		store:     store,
		push:      pushClient,
		logger:    logger,
		ctx:       ctx,
		cancel:    cancel,
		keys:      DefaultKeyMap(),
		statusBar: status.New(),
		dashView:  dashview.New(),
		docsView:  documents.New(),
		events:    debug.New(),
		snapshots: store.Subscribe(),
		notices:   notices,
		pushMsgs:  pushMsgs,
	}
}

// Init starts the auto-refresh timer, the push channel, and the initial
// dashboard fetch, then arms the channel waiters.
func (m Model) Init() tea.Cmd {
	m.store.StartAutoRefresh()
	return tea.Batch(
		m.connectPush(),
		m.fetchDashboard(),
		m.fetchDocuments(),
		waitSnapshot(m.snapshots),
		waitNotice(m.notices),
		waitPushEvent(m.push.Events()),
		waitPushMessage(m.pushMsgs),
	)
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.statusBar.Width = msg.Width
		m.dashView.Width = msg.Width
		m.docsView.Width = msg.Width
		m.docsView.Height = msg.Height
		m.admin.SetSize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case snapshotChangedMsg:
		m.syncFromStore()
		return m, waitSnapshot(m.snapshots)

	case noticeMsg:
		m.notice = string(msg)
		m.events.Add(debug.KindErr, string(msg))
		return m, waitNotice(m.notices)

	case pushEventMsg:
		m.statusBar.Connection = msg.Status
		m.store.SetLive(msg.Status == push.StatusConnected)
		if msg.Err != nil {
			m.events.Add(debug.KindPush, fmt.Sprintf("%s: %v", msg.Status, msg.Err))
		} else {
			m.events.Add(debug.KindPush, string(msg.Status))
		}
		return m, waitPushEvent(m.push.Events())

	case pushMessageMsg:
		m.events.Add(debug.KindPush, "recv "+msg.Type)
		return m, waitPushMessage(m.pushMsgs)

	case pushStartedMsg:
		if msg.err != nil {
			m.logger.Warn("push connect failed", zap.Error(msg.err))
			m.events.Add(debug.KindErr, "push connect: "+msg.err.Error())
		}
		return m, nil

	case initialFetchMsg:
		if msg.err != nil {
			m.events.Add(debug.KindHTTP, "dashboard fetch: "+msg.err.Error())
		}
		return m, nil

	case documentsLoadedMsg:
		if msg.err != nil {
			m.events.Add(debug.KindErr, "documents: "+msg.err.Error())
			return m, nil
		}
		m.docsView.SetDocuments(msg.page.Items)
		m.events.Add(debug.KindHTTP, fmt.Sprintf("documents loaded (%d)", len(msg.page.Items)))
		return m, nil

	case downloadDoneMsg:
		if msg.err != nil {
			m.detail.ActionError = msg.err.Error()
			return m, nil
		}
		m.notice = fmt.Sprintf("Saved %s (%d bytes)", msg.path, msg.n)
		m.events.Add(debug.KindHTTP, "download "+msg.path)
		return m, nil

	case reviewDoneMsg:
		if msg.err != nil {
			m.detail.ActionError = msg.err.Error()
			return m, nil
		}
		m.overlay = OverlayNone
		return m, tea.Batch(m.fetchDashboard(), m.fetchDocuments())

	case deleteDoneMsg:
		if msg.err != nil {
			m.detail.ActionError = msg.err.Error()
			return m, nil
		}
		m.overlay = OverlayNone
		return m, tea.Batch(m.fetchDashboard(), m.fetchDocuments())
	}

	if m.overlay == OverlayUsers {
		var cmd tea.Cmd
		m.admin, cmd = m.admin.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Any keypress clears the transient notice line.
	m.notice = ""

	switch m.overlay {
	case OverlayDetail:
		return m.handleDetailKey(msg)
	case OverlayUsers:
		if key.Matches(msg, m.keys.Escape) {
			m.overlay = OverlayNone
			return m, nil
		}
		var cmd tea.Cmd
		m.admin, cmd = m.admin.Update(msg)
		return m, cmd
	case OverlayEvents:
		switch {
		case key.Matches(msg, m.keys.Escape):
			m.overlay = OverlayNone
		case key.Matches(msg, m.keys.Up):
			m.events.ScrollUp(1)
		case key.Matches(msg, m.keys.Down):
			m.events.ScrollDown(1)
		case key.Matches(msg, m.keys.Tab):
			m.events.CycleFilter()
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.push.Disconnect()
		m.store.StopAutoRefresh()
		m.cancel()
		return m, tea.Quit

	case key.Matches(msg, m.keys.Dashboard):
		m.screen = ScreenDashboard
		return m, nil

	case key.Matches(msg, m.keys.Documents):
		m.screen = ScreenDocuments
		return m, nil

	case key.Matches(msg, m.keys.Down):
		if m.screen == ScreenDocuments {
			m.docsView.MoveDown()
		}
		return m, nil

	case key.Matches(msg, m.keys.Up):
		if m.screen == ScreenDocuments {
			m.docsView.MoveUp()
		}
		return m, nil

	case key.Matches(msg, m.keys.Tab):
		if m.screen == ScreenDocuments {
			m.docsView.CycleZone()
		}
		return m, nil

	case key.Matches(msg, m.keys.Zone1):
		m.screen = ScreenDocuments
		m.docsView.JumpToZone(documents.ZoneQueue)
		return m, nil

	case key.Matches(msg, m.keys.Zone2):
		m.screen = ScreenDocuments
		m.docsView.JumpToZone(documents.ZoneReview)
		return m, nil

	case key.Matches(msg, m.keys.Zone3):
		m.screen = ScreenDocuments
		m.docsView.JumpToZone(documents.ZoneDecided)
		return m, nil

	case key.Matches(msg, m.keys.Enter):
		if m.screen == ScreenDocuments {
			if d := m.docsView.SelectedDocument(); d != nil {
				m.detail = detail.New(d)
				m.detail.CanReview = m.canReview(d)
				m.detail.CanDelete = m.canDelete(d)
				m.overlay = OverlayDetail
			}
		}
		return m, nil

	case key.Matches(msg, m.keys.Users):
		if m.ident.Scope().Role == api.RoleAdmin {
			m.admin = admin.New(m.client)
			m.admin.SetSize(m.width, m.height)
			m.overlay = OverlayUsers
			return m, m.admin.Init()
		}
		m.notice = "User administration is admin-only"
		return m, nil

	case key.Matches(msg, m.keys.Events):
		m.overlay = OverlayEvents
		return m, nil

	case key.Matches(msg, m.keys.Refresh):
		m.store.ClearError()
		return m, tea.Batch(m.fetchDashboard(), m.fetchDocuments())
	}

	return m, nil
}

func (m Model) handleDetailKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	d := m.detail.Document
	switch {
	case key.Matches(msg, m.keys.Escape):
		m.overlay = OverlayNone
		return m, nil

	case key.Matches(msg, m.keys.Download):
		if d != nil {
			return m, m.downloadDocument(d)
		}

	case key.Matches(msg, m.keys.Approve):
		if d != nil && m.detail.CanReview {
			return m, m.submitReview(d.ID, string(api.StatusApproved))
		}

	case key.Matches(msg, m.keys.Reject):
		if d != nil && m.detail.CanReview {
			return m, m.submitReview(d.ID, string(api.StatusRejected))
		}

	case key.Matches(msg, m.keys.Delete):
		if d != nil && m.detail.CanDelete {
			return m, m.deleteDocument(d.ID)
		}
	}
	return m, nil
}

// canReview reports whether the current identity may review a document.
// Students never review; nobody reviews an already-decided document.
func (m Model) canReview(d *api.Document) bool {
	role := m.ident.Scope().Role
	if role == api.RoleStudent {
		return false
	}
	return d.Status == api.StatusPending || d.Status == api.StatusUnderReview
}

// canDelete reports whether the current identity may delete a document.
// Admins delete anything; everyone else only their own uploads.
func (m Model) canDelete(d *api.Document) bool {
	scope := m.ident.Scope()
	if scope.Role == api.RoleAdmin {
		return true
	}
	return d.UploaderID == scope.UserID
}

// syncFromStore copies the latest snapshot into the rendered views.
func (m *Model) syncFromStore() {
	snap := m.store.Snapshot()
	m.dashView.SetData(snap.Stats, snap.RecentDocuments, snap.RecentActivity, snap.Loading)
	m.statusBar.LastUpdated = snap.LastUpdated
	m.statusBar.Loading = snap.Loading
	m.statusBar.Err = snap.Err

	if u := m.ident.CurrentUser(); u != nil {
		m.statusBar.Role = string(u.Role)
		m.statusBar.UserName = u.Name
	}
}

// View renders the full TUI.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Initializing..."
	}

	switch m.overlay {
	case OverlayDetail:
		return m.detail.View()
	case OverlayUsers:
		return m.admin.View()
	case OverlayEvents:
		return m.events.View(m.width, m.height)
	}

	var body string
	var help string
	switch m.screen {
	case ScreenDocuments:
		body = m.docsView.View()
		help = "  j/k:navigate  tab:zone  enter:detail  1:dashboard  r:refresh  e:events  q:quit"
	default:
		body = m.dashView.View()
		help = "  2:documents  u:users  r:refresh  e:events  q:quit"
	}

	sections := []string{
		m.statusBar.View(),
		body,
		theme.StyleDimmed.Render(help),
	}
	if m.notice != "" {
		sections = append(sections,
			lipgloss.NewStyle().Foreground(theme.ColorWarning).Render("  "+m.notice))
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// Commands.

func (m Model) connectPush() tea.Cmd {
	ctx := m.ctx
	p := m.push
	return func() tea.Msg {
		return pushStartedMsg{err: p.Connect(ctx)}
	}
}

func (m Model) fetchDashboard() tea.Cmd {
	ctx := m.ctx
	s := m.store
	return func() tea.Msg {
		return initialFetchMsg{err: s.FetchAll(ctx)}
	}
}

func (m Model) fetchDocuments() tea.Cmd {
	ctx := m.ctx
	c := m.client
	return func() tea.Msg {
		page, err := c.ListDocuments(ctx, api.DocumentFilter{Limit: 100})
		return documentsLoadedMsg{page: page, err: err}
	}
}

func (m Model) downloadDocument(d *api.Document) tea.Cmd {
	ctx := m.ctx
	c := m.client
	id := d.ID
	name := d.FileName
	if name == "" {
		name = d.ID
	}
	return func() tea.Msg {
		path := filepath.Clean(filepath.Base(name))
		f, err := os.Create(path)
		if err != nil {
			return downloadDoneMsg{err: err}
		}
		n, err := c.DownloadDocument(ctx, id, f)
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		return downloadDoneMsg{path: path, n: n, err: err}
	}
}

func (m Model) submitReview(docID, verdict string) tea.Cmd {
	ctx := m.ctx
	c := m.client
	return func() tea.Msg {
		_, err := c.SubmitReview(ctx, api.ReviewSubmission{
			DocumentID: docID,
			Status:     verdict,
		})
		return reviewDoneMsg{err: err}
	}
}

func (m Model) deleteDocument(id string) tea.Cmd {
	ctx := m.ctx
	c := m.client
	return func() tea.Msg {
		return deleteDoneMsg{err: c.DeleteDocument(ctx, id)}
	}
}

// Channel waiters. Each returns one message and is re-armed by Update.

func waitSnapshot(ch chan struct{}) tea.Cmd {
	return func() tea.Msg {
		<-ch
		return snapshotChangedMsg{}
	}
}

func waitNotice(ch Notices) tea.Cmd {
	return func() tea.Msg {
		return noticeMsg(<-ch)
	}
}

func waitPushEvent(ch <-chan push.Event) tea.Cmd {
	return func() tea.Msg {
		return pushEventMsg(<-ch)
	}
}

func waitPushMessage(ch chan push.Message) tea.Cmd {
	return func() tea.Msg {
		return pushMessageMsg(<-ch)
	}
}

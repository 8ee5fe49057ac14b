// Package theme provides the Lip Gloss color palette and reusable styles
// for the Academic Repository TUI. It is a leaf package with no internal
// imports to avoid import cycles.
package theme

import "github.com/charmbracelet/lipgloss"

// Role colors.
var (
	ColorStudent    = lipgloss.Color("#3b82f6")
	ColorStaff      = lipgloss.Color("#06b6d4")
	ColorSupervisor = lipgloss.Color("#a855f7")
	ColorAdmin      = lipgloss.Color("#f59e0b")
	ColorDefault    = lipgloss.Color("#9ca3af")
)

// Document status colors.
var (
	ColorPending     = lipgloss.Color("#d97706")
	ColorUnderReview = lipgloss.Color("#2563eb")
	ColorApproved    = lipgloss.Color("#16a34a")
	ColorRejected    = lipgloss.Color("#dc2626")
)

// Activity type colors.
var (
	ColorUpload   = lipgloss.Color("#7c3aed")
	ColorReview   = lipgloss.Color("#2563eb")
	ColorApproval = lipgloss.Color("#16a34a")
	ColorDownload = lipgloss.Color("#06b6d4")
)

// UI chrome colors.
var (
	ColorBorder  = lipgloss.Color("#4b5563")
	ColorDimmed  = lipgloss.Color("#6b7280")
	ColorBright  = lipgloss.Color("#f9fafb")
	ColorHealthy = lipgloss.Color("#22c55e")
	ColorWarning = lipgloss.Color("#d97706")
	ColorDanger  = lipgloss.Color("#dc2626")
)

// RoleColor returns the Lip Gloss color for a role name.
func RoleColor(role string) lipgloss.Color {
	switch role {
	case "student":
		return ColorStudent
	case "staff":
		return ColorStaff
	case "supervisor":
		return ColorSupervisor
	case "admin":
		return ColorAdmin
	default:
		return ColorDefault
	}
}

// StatusColor returns the color for a document status string.
func StatusColor(status string) lipgloss.Color {
	switch status {
	case "pending":
		return ColorPending
	case "under_review":
		return ColorUnderReview
	case "approved":
		return ColorApproved
	case "rejected":
		return ColorRejected
	default:
		return ColorDefault
	}
}

// ActivityColor returns the color for an activity event type.
func ActivityColor(kind string) lipgloss.Color {
	switch kind {
	case "upload":
		return ColorUpload
	case "review":
		return ColorReview
	case "approve", "approval":
		return ColorApproval
	case "rejection":
		return ColorRejected
	case "download":
		return ColorDownload
	default:
		return ColorDefault
	}
}

// StatusGlyph returns a Unicode glyph representing a document status.
func StatusGlyph(status string) string {
	switch status {
	case "pending":
		return "◌"
	case "under_review":
		return "●"
	case "approved":
		return "✓"
	case "rejected":
		return "✗"
	default:
		return "·"
	}
}

// RoleBadge returns a colored badge string for a role name.
func RoleBadge(role string) string {
	switch role {
	case "student":
		return lipgloss.NewStyle().Foreground(ColorStudent).Render("[S]")
	case "staff":
		return lipgloss.NewStyle().Foreground(ColorStaff).Render("[T]")
	case "supervisor":
		return lipgloss.NewStyle().Foreground(ColorSupervisor).Render("[V]")
	case "admin":
		return lipgloss.NewStyle().Foreground(ColorAdmin).Render("[A]")
	default:
		return lipgloss.NewStyle().Foreground(ColorDefault).Render("[?]")
	}
}

// Reusable styles.
var (
	StyleBorder = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder)

	StyleHeader = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorBright)

	StyleDimmed = lipgloss.NewStyle().
			Foreground(ColorDimmed)

	StyleSelected = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorBright)
)

package detail

import (
	"strings"
	"testing"
	"time"

	"github.com/davidayox123/acadrepo-tui/internal/api"
)

func sampleDoc() *api.Document {
	return &api.Document{
		ID:            "doc-1",
		Title:         "Compiler Construction Notes",
		Description:   "Lecture notes on *parsing*.",
		FileName:      "compilers.pdf",
		FileType:      "application/pdf",
		FileSize:      2 << 20,
		Status:        api.StatusUnderReview,
		Department:    "Computer Science",
		Version:       3,
		DownloadCount: 17,
		CreatedAt:     time.Now().Add(-48 * time.Hour),
	}
}

func TestViewNilDocument(t *testing.T) {
	var m Model
	if v := m.View(); v != "" {
		t.Errorf("View() with no document = %q, want empty", v)
	}
}

func TestViewShowsCoreFields(t *testing.T) {
	m := New(sampleDoc())
	v := m.View()

	for _, want := range []string{
		"Compiler Construction Notes",
		"under_review",
		"compilers.pdf",
		"Computer Science",
		"v3",
		"17",
		"2.0 MB",
		"[d] download",
		"[esc] close",
	} {
		if !strings.Contains(v, want) {
			t.Errorf("View() missing %q", want)
		}
	}
}

func TestFooterReflectsPermissions(t *testing.T) {
	m := New(sampleDoc())
	m.CanReview = true
	m.CanDelete = true
	v := m.View()

	for _, want := range []string{"[a] approve", "[x] reject", "[D] delete"} {
		if !strings.Contains(v, want) {
			t.Errorf("View() missing %q", want)
		}
	}

	m.CanReview = false
	m.CanDelete = false
	v = m.View()
	if strings.Contains(v, "[a] approve") || strings.Contains(v, "[D] delete") {
		t.Error("View() should hide review and delete hints without permission")
	}
}

func TestActionErrorShown(t *testing.T) {
	m := New(sampleDoc())
	m.ActionError = "review already submitted"
	if v := m.View(); !strings.Contains(v, "review already submitted") {
		t.Error("View() should surface the action error")
	}
}

func TestReviewsRendered(t *testing.T) {
	m := New(sampleDoc())
	m.Reviews = []api.Review{
		{ID: "r1", Status: "approved", Comments: "solid work", Rating: 4, CreatedAt: time.Now()},
	}
	v := m.View()
	for _, want := range []string{"Reviews (1)", "approved", "solid work"} {
		if !strings.Contains(v, want) {
			t.Errorf("View() missing %q", want)
		}
	}
}

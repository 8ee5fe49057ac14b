package debug

import (
	"fmt"
	"strings"
	"testing"
)

func TestAddCapsBuffer(t *testing.T) {
	m := New()
	for i := 0; i < maxEntries+50; i++ {
		m.Add(KindPush, fmt.Sprintf("event %d", i))
	}
	if m.Len() != maxEntries {
		t.Errorf("Len() = %d, want %d", m.Len(), maxEntries)
	}
	// Oldest entries were dropped.
	if m.entries[0].Message != "event 50" {
		t.Errorf("oldest entry = %q, want event 50", m.entries[0].Message)
	}
}

func TestScrollClamps(t *testing.T) {
	m := New()
	m.Add(KindHTTP, "one")
	m.Add(KindHTTP, "two")

	m.ScrollUp(10)
	if m.offset != 1 {
		t.Errorf("offset = %d, want clamp to 1", m.offset)
	}
	m.ScrollDown(10)
	if m.offset != 0 {
		t.Errorf("offset = %d, want clamp to 0", m.offset)
	}
}

func TestAddResetsScroll(t *testing.T) {
	m := New()
	m.Add(KindPush, "one")
	m.Add(KindPush, "two")
	m.ScrollUp(1)
	m.Add(KindPush, "three")
	if m.offset != 0 {
		t.Errorf("offset = %d, want reset to 0 on new entry", m.offset)
	}
}

func TestCycleFilterHidesOtherKinds(t *testing.T) {
	m := New()
	m.Add(KindPush, "recv stats_update")
	m.Add(KindHTTP, "documents loaded")
	m.Add(KindErr, "dashboard stats: boom")

	m.CycleFilter() // push
	v := m.View(100, 24)
	if !strings.Contains(v, "recv stats_update") {
		t.Error("push filter should show push entries")
	}
	if strings.Contains(v, "documents loaded") {
		t.Error("push filter should hide http entries")
	}

	m.CycleFilter() // http
	m.CycleFilter() // auth, nothing buffered
	v = m.View(100, 24)
	if !strings.Contains(v, "No auth events") {
		t.Errorf("empty filtered view should say so, got %q", v)
	}

	m.CycleFilter() // err
	m.CycleFilter() // back to all
	v = m.View(100, 24)
	for _, want := range []string{"recv stats_update", "documents loaded", "dashboard stats: boom"} {
		if !strings.Contains(v, want) {
			t.Errorf("unfiltered view missing %q", want)
		}
	}
}

func TestViewEmptyAndPopulated(t *testing.T) {
	m := New()
	v := m.View(80, 24)
	if !strings.Contains(v, "No events recorded yet") {
		t.Error("empty View() should show placeholder")
	}

	m.Add(KindErr, "dashboard stats: boom")
	v = m.View(80, 24)
	for _, want := range []string{"EVENT LOG", "err", "dashboard stats: boom", "1 entries"} {
		if !strings.Contains(v, want) {
			t.Errorf("View() missing %q", want)
		}
	}
}

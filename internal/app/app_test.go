package app

import (
	"strings"
	"testing"
)

func TestNotifyNeverBlocks(t *testing.T) {
	n := make(Notices, 2)
	for i := 0; i < 10; i++ {
		n.Notify("overflow")
	}
	if len(n) != 2 {
		t.Errorf("buffered notices = %d, want 2", len(n))
	}
}

func TestViewBeforeFirstResize(t *testing.T) {
	var m Model
	if v := m.View(); !strings.Contains(v, "Initializing") {
		t.Errorf("zero-size View() = %q, want initializing placeholder", v)
	}
}

func TestDefaultKeyMapCoversScreens(t *testing.T) {
	k := DefaultKeyMap()
	checks := map[string][]string{
		"quit":      k.Quit.Keys(),
		"dashboard": k.Dashboard.Keys(),
		"documents": k.Documents.Keys(),
		"events":    k.Events.Keys(),
	}
	for name, keys := range checks {
		if len(keys) == 0 {
			t.Errorf("%s binding has no keys", name)
		}
	}
}

package cli

import (
	"bytes"
	"strings"
	"testing"
)

func TestVersionCommand(t *testing.T) {
	cmd := newVersionCommand()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)

	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !strings.Contains(buf.String(), "acadrepo v") {
		t.Errorf("output = %q, want version banner", buf.String())
	}
}

func TestRootCommandHasSubcommands(t *testing.T) {
	root := NewRootCmd()
	want := []string{"login", "logout", "whoami", "docs", "upload", "download", "users", "version"}

	have := make(map[string]bool)
	for _, c := range root.Commands() {
		have[c.Name()] = true
	}
	for _, name := range want {
		if !have[name] {
			t.Errorf("root command missing %q subcommand", name)
		}
	}
}

package main

import (
	"bytes"
	"testing"
)

// TestNewRootCmd tests the command tree wiring.
func TestNewRootCmd(t *testing.T) {
	t.Parallel()

	cmd := NewRootCmd()

	if cmd.Use != "linkharvest" {
		t.Errorf("Use = %q, want %q", cmd.Use, "linkharvest")
	}
	if cmd.Version == "" {
		t.Error("Version is empty")
	}

	want := map[string]bool{
		"crawl":   false,
		"history": false,
		"init":    false,
		"version": false,
	}
	for _, sub := range cmd.Commands() {
		if _, ok := want[sub.Name()]; ok {
			want[sub.Name()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("subcommand %q not registered", name)
		}
	}

	if cmd.PersistentFlags().Lookup("verbose") == nil {
		t.Error("persistent flag --verbose not registered")
	}
}

// TestRootCmdHelp tests that help output renders without error.
func TestRootCmdHelp(t *testing.T) {
	t.Parallel()

	cmd := NewRootCmd()

	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs([]string{"--help"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute(--help) error = %v", err)
	}
	if buf.Len() == 0 {
		t.Error("help produced no output")
	}
}

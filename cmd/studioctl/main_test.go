package main

import (
	"bytes"
	"strings"
	"testing"
)

func TestCommandTree(t *testing.T) {
	root := newRootCommand()

	paths := [][]string{
		{"migrate", "up"},
		{"migrate", "down"},
		{"migrate", "status"},
		{"users", "reset-password"},
		{"users", "repair-counters"},
		{"storage", "ensure-bucket"},
		{"packages", "import"},
		{"maintenance", "prune"},
	}
	for _, path := range paths {
		t.Run(strings.Join(path, " "), func(t *testing.T) {
			cmd, rest, err := root.Find(path)
			if err != nil {
				t.Fatalf("Find(%v) error = %v", path, err)
			}
			if len(rest) != 0 || cmd.Name() != path[len(path)-1] {
				t.Fatalf("Find(%v) = %s with leftover %v", path, cmd.Name(), rest)
			}
		})
	}
}

func TestRequiredFlags(t *testing.T) {
	tests := [][]string{
		{"users", "reset-password", "--email", "a@example.com"},
		{"packages", "import"},
	}
	for _, args := range tests {
		t.Run(strings.Join(args, " "), func(t *testing.T) {
			root := newRootCommand()
			root.SetArgs(args)
			root.SetOut(&bytes.Buffer{})
			root.SetErr(&bytes.Buffer{})
			if err := root.Execute(); err == nil || !strings.Contains(err.Error(), "required flag") {
				t.Fatalf("Execute(%v) error = %v, want missing required flag", args, err)
			}
		})
	}
}

package main

import (
	"bytes"
	"strings"
	"testing"
)

// execute runs the root command with args and returns stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := NewRootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return stdout.String(), err
}

func TestNewRootCmd(t *testing.T) {
	t.Parallel()

	cmd := NewRootCmd()
	if cmd.Use != "scanledger" {
		t.Errorf("expected use scanledger, got %s", cmd.Use)
	}

	want := []string{"record", "sessions", "stats", "export", "delete", "cleanup", "version"}
	for _, name := range want {
		found := false
		for _, sub := range cmd.Commands() {
			if sub.Name() == name {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("subcommand %s not registered", name)
		}
	}
}

func TestVersionCmd(t *testing.T) {
	t.Parallel()

	out, err := execute(t, "version")
	if err != nil {
		t.Fatalf("version command failed: %v", err)
	}
	if !strings.Contains(out, "scanledger version") {
		t.Errorf("unexpected version output: %q", out)
	}
	if !strings.Contains(out, "commit:") {
		t.Errorf("expected commit line, got: %q", out)
	}
}

func TestBuildConfig(t *testing.T) {
	t.Parallel()

	t.Run("flags override defaults", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		cmd := NewRootCmd()
		if err := cmd.PersistentFlags().Set("db", dir); err != nil {
			t.Fatalf("failed to set flag: %v", err)
		}
		if err := cmd.PersistentFlags().Set("days-to-keep", "7"); err != nil {
			t.Fatalf("failed to set flag: %v", err)
		}
		if err := cmd.PersistentFlags().Set("no-cleanup", "true"); err != nil {
			t.Fatalf("failed to set flag: %v", err)
		}

		cfg, err := buildConfig(cmd)
		if err != nil {
			t.Fatalf("failed to build config: %v", err)
		}
		if cfg.DBDir != dir {
			t.Errorf("expected db dir %s, got %s", dir, cfg.DBDir)
		}
		if cfg.DaysToKeep != 7 {
			t.Errorf("expected 7 days to keep, got %d", cfg.DaysToKeep)
		}
		if !cfg.SkipStartupCleanup {
			t.Error("expected startup cleanup to be skipped")
		}
	})

	t.Run("defaults validate", func(t *testing.T) {
		t.Parallel()

		cfg, err := buildConfig(NewRootCmd())
		if err != nil {
			t.Fatalf("failed to build config: %v", err)
		}
		if err := cfg.Validate(); err != nil {
			t.Errorf("default config should validate: %v", err)
		}
	})
}

package main

import (
	"testing"
)

// TestNewRootCmd tests the root command creation.
func TestNewRootCmd(t *testing.T) {
	t.Parallel()

	cmd := NewRootCmd()

	t.Run("has correct use", func(t *testing.T) {
		t.Parallel()
		if cmd.Use != "filingctl" {
			t.Errorf("expected use 'filingctl', got %q", cmd.Use)
		}
	})

	t.Run("has version", func(t *testing.T) {
		t.Parallel()
		if cmd.Version == "" {
			t.Error("expected non-empty version")
		}
	})

	t.Run("has global flags", func(t *testing.T) {
		t.Parallel()
		for _, name := range []string{"verbose", "config", "base-url", "json", "markdown", "yes", "journal-dir", "no-journal"} {
			if cmd.PersistentFlags().Lookup(name) == nil {
				t.Errorf("expected persistent flag %q", name)
			}
		}
		if f := cmd.PersistentFlags().Lookup("verbose"); f != nil && f.Shorthand != "v" {
			t.Errorf("expected verbose shorthand 'v', got %q", f.Shorthand)
		}
	})

	t.Run("has subcommands", func(t *testing.T) {
		t.Parallel()
		names := make(map[string]bool)
		for _, sub := range cmd.Commands() {
			names[sub.Name()] = true
		}
		for _, want := range []string{"classify", "batch", "lookup", "results", "watch", "delete", "history", "init", "version"} {
			if !names[want] {
				t.Errorf("expected %s subcommand", want)
			}
		}
	})

	t.Run("silences usage and errors", func(t *testing.T) {
		t.Parallel()
		if !cmd.SilenceUsage {
			t.Error("expected SilenceUsage to be true")
		}
		if !cmd.SilenceErrors {
			t.Error("expected SilenceErrors to be true")
		}
	})
}

func TestBuildConfig(t *testing.T) {
	t.Parallel()

	t.Run("flags override the config file", func(t *testing.T) {
		t.Parallel()

		cfgPath := writeTestConfig(t, "http://from-file:8000")
		sub, _, err := NewRootCmd().Find([]string{"results"})
		if err != nil {
			t.Fatalf("find: %v", err)
		}
		// ParseFlags merges the persistent flags of the root.
		if err := sub.ParseFlags([]string{"-c", cfgPath, "--base-url", "http://from-flag:9000", "--journal-dir", "/tmp/j"}); err != nil {
			t.Fatalf("parse: %v", err)
		}

		cfg, err := buildConfig(sub)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.BaseURL != "http://from-flag:9000" {
			t.Errorf("expected flag base URL, got %q", cfg.BaseURL)
		}
		if cfg.Timeout.String() != "10s" {
			t.Errorf("expected file timeout, got %v", cfg.Timeout)
		}
		if cfg.JournalDir != "/tmp/j" {
			t.Errorf("expected flag journal dir, got %q", cfg.JournalDir)
		}
		if cfg.ConfigFilePath != cfgPath {
			t.Errorf("expected config path recorded, got %q", cfg.ConfigFilePath)
		}
	})

	t.Run("missing explicit config file is an error", func(t *testing.T) {
		t.Parallel()

		_, err := runCLI(t, "", "results", "-c", "/nonexistent/.filingctl")
		if err == nil {
			t.Error("expected error for missing config file")
		}
	})
}

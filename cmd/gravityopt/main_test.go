package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/bft-labs/gravityopt/internal/cliconfig"
	"github.com/bft-labs/gravityopt/internal/domain"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("%w: bad backend", domain.ErrInvalidConfig), 2},
		{fmt.Errorf("commit removal: %w", domain.ErrPersistence), 3},
		{domain.ErrEmptyGravity, 1},
		{errors.New("anything else"), 1},
	}
	for _, tt := range tests {
		if got := exitCode(tt.err); got != tt.want {
			t.Errorf("exitCode(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestApplyConfigFile(t *testing.T) {
	tests := []struct {
		name string
		path string
	}{
		{"unparsable toml", writeConfig(t, "bad.toml", "pihole_dir = \n[[[")},
		{"unparsable yaml", writeConfig(t, "bad.yaml", "pihole_dir: [unclosed")},
		{"bad duration", writeConfig(t, "dur.toml", `timeout = "soon"`)},
		{"missing explicit file", filepath.Join(t.TempDir(), "absent.toml")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := cliconfig.DefaultConfig()
			err := applyConfigFile(&cfg, tt.path, map[string]bool{})
			if !errors.Is(err, domain.ErrInvalidConfig) {
				t.Fatalf("applyConfigFile() error = %v, want ErrInvalidConfig", err)
			}
			if got := exitCode(err); got != 2 {
				t.Errorf("exitCode() = %d, want 2", got)
			}
		})
	}
}

func TestApplyConfigFile_Valid(t *testing.T) {
	path := writeConfig(t, "gravityopt.toml", "pihole_dir = \"/srv/pihole\"\ntimeout = \"30s\"\n")

	cfg := cliconfig.DefaultConfig()
	if err := applyConfigFile(&cfg, path, map[string]bool{}); err != nil {
		t.Fatalf("applyConfigFile() error = %v", err)
	}
	if cfg.PiholeDir != "/srv/pihole" {
		t.Errorf("PiholeDir = %q, want /srv/pihole", cfg.PiholeDir)
	}
	if cfg.Timeout != 30*time.Second {
		t.Errorf("Timeout = %v, want 30s", cfg.Timeout)
	}
}

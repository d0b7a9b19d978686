package cliconfig

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestApplyFileConfig(t *testing.T) {
	trueVal := true
	falseVal := false

	tests := []struct {
		name       string
		fileConfig FileConfig
		changed    map[string]bool
		initial    Config
		expected   Config
		wantErr    bool
	}{
		{
			name: "applies all valid config values",
			fileConfig: FileConfig{
				PiholeDir:      "/srv/pihole",
				Timeout:        "5m",
				RegexBatchSize: 20,
				SkipRefresh:    &trueVal,
			},
			changed: map[string]bool{},
			expected: Config{
				PiholeDir:      "/srv/pihole",
				Timeout:        5 * time.Minute,
				RegexBatchSize: 20,
				SkipRefresh:    true,
			},
		},
		{
			name: "respects changed flags",
			fileConfig: FileConfig{
				PiholeDir: "/config/pihole",
				Backend:   "file",
			},
			changed: map[string]bool{"pihole-dir": true},
			initial: Config{
				PiholeDir: "/flag/pihole",
				Backend:   "auto",
			},
			expected: Config{
				PiholeDir: "/flag/pihole", // unchanged because flag was set
				Backend:   "file",
			},
		},
		{
			name: "unset booleans keep their value",
			fileConfig: FileConfig{
				DryRun: &falseVal,
			},
			changed:  map[string]bool{},
			initial:  Config{DryRun: true, SkipReload: true},
			expected: Config{DryRun: false, SkipReload: true},
		},
		{
			name:       "invalid duration",
			fileConfig: FileConfig{Timeout: "soon"},
			changed:    map[string]bool{},
			wantErr:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.initial
			err := ApplyFileConfig(&cfg, tt.fileConfig, tt.changed)

			if tt.wantErr {
				if err == nil {
					t.Error("ApplyFileConfig() expected error but got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("ApplyFileConfig() unexpected error: %v", err)
			}
			if cfg != tt.expected {
				t.Errorf("ApplyFileConfig() = %+v, want %+v", cfg, tt.expected)
			}
		})
	}
}

func TestLoadFileConfig_TOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gravityopt.toml")
	content := `
pihole_dir = "/opt/pihole"
backend = "sqlite"
regex_batch_size = 15
timeout = "2m"
dry_run = true
metrics_file = "/tmp/gravityopt.prom"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	fc, err := LoadFileConfig(path)
	if err != nil {
		t.Fatalf("LoadFileConfig() error: %v", err)
	}
	if fc.PiholeDir != "/opt/pihole" {
		t.Errorf("PiholeDir = %v, want /opt/pihole", fc.PiholeDir)
	}
	if fc.Backend != "sqlite" {
		t.Errorf("Backend = %v, want sqlite", fc.Backend)
	}
	if fc.RegexBatchSize != 15 {
		t.Errorf("RegexBatchSize = %v, want 15", fc.RegexBatchSize)
	}
	if fc.Timeout != "2m" {
		t.Errorf("Timeout = %v, want 2m", fc.Timeout)
	}
	if fc.DryRun == nil || !*fc.DryRun {
		t.Errorf("DryRun = %v, want true", fc.DryRun)
	}
	if fc.SkipReload != nil {
		t.Errorf("SkipReload = %v, want unset", fc.SkipReload)
	}
}

func TestLoadFileConfig_YAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gravityopt.yaml")
	content := `
dnsmasq_dir: /etc/dnsmasq.custom
delete_chunk_size: 250
skip_reload: true
log_format: json
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	fc, err := LoadFileConfig(path)
	if err != nil {
		t.Fatalf("LoadFileConfig() error: %v", err)
	}
	if fc.DnsmasqDir != "/etc/dnsmasq.custom" {
		t.Errorf("DnsmasqDir = %v, want /etc/dnsmasq.custom", fc.DnsmasqDir)
	}
	if fc.DeleteChunkSize != 250 {
		t.Errorf("DeleteChunkSize = %v, want 250", fc.DeleteChunkSize)
	}
	if fc.SkipReload == nil || !*fc.SkipReload {
		t.Errorf("SkipReload = %v, want true", fc.SkipReload)
	}
	if fc.LogFormat != "json" {
		t.Errorf("LogFormat = %v, want json", fc.LogFormat)
	}
}

func TestLoadFileConfig_Errors(t *testing.T) {
	dir := t.TempDir()

	if _, err := LoadFileConfig(filepath.Join(dir, "missing.toml")); err == nil {
		t.Error("expected error for missing file")
	}

	bad := filepath.Join(dir, "bad.toml")
	if err := os.WriteFile(bad, []byte("pihole_dir = [unterminated"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFileConfig(bad); err == nil {
		t.Error("expected error for malformed TOML")
	}
}

func TestFileExists(t *testing.T) {
	dir := t.TempDir()
	if !FileExists(dir) {
		t.Errorf("FileExists(%s) = false, want true", dir)
	}
	if FileExists(filepath.Join(dir, "nope")) {
		t.Error("FileExists() = true for missing path")
	}
}

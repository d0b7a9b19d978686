package cliconfig

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// DefaultConfigPath is where the config file is looked up when none is given.
const DefaultConfigPath = "/etc/pihole/gravityopt.toml"

// FileConfig mirrors Config but uses strings for durations and pointers for
// booleans so unset keys can be told apart.
type FileConfig struct {
	PiholeDir       string `toml:"pihole_dir" yaml:"pihole_dir"`
	DnsmasqDir      string `toml:"dnsmasq_dir" yaml:"dnsmasq_dir"`
	DatabasePath    string `toml:"database" yaml:"database"`
	GravityList     string `toml:"gravity_list" yaml:"gravity_list"`
	RegexList       string `toml:"regex_list" yaml:"regex_list"`
	ReservedConf    string `toml:"reserved_conf" yaml:"reserved_conf"`
	PiholeBinary    string `toml:"pihole_binary" yaml:"pihole_binary"`
	Backend         string `toml:"backend" yaml:"backend"`
	RegexBatchSize  int    `toml:"regex_batch_size" yaml:"regex_batch_size"`
	DeleteChunkSize int    `toml:"delete_chunk_size" yaml:"delete_chunk_size"`
	Workers         int    `toml:"workers" yaml:"workers"`
	Timeout         string `toml:"timeout" yaml:"timeout"`
	DryRun          *bool  `toml:"dry_run" yaml:"dry_run"`
	SkipRefresh     *bool  `toml:"skip_refresh" yaml:"skip_refresh"`
	SkipReload      *bool  `toml:"skip_reload" yaml:"skip_reload"`
	AllowNonRoot    *bool  `toml:"allow_non_root" yaml:"allow_non_root"`
	LogLevel        string `toml:"log_level" yaml:"log_level"`
	LogFormat       string `toml:"log_format" yaml:"log_format"`
	MetricsFile     string `toml:"metrics_file" yaml:"metrics_file"`
}

// LoadFileConfig reads and parses a config file. Files ending in .yaml or
// .yml are read as YAML, anything else as TOML.
func LoadFileConfig(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse %s: %w", path, err)
		}
	default:
		if err := toml.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse %s: %w", path, err)
		}
	}
	return fc, nil
}

// ApplyFileConfig applies configuration from a file to the Config struct.
// It respects flags that have been explicitly set (changed map).
func ApplyFileConfig(cfg *Config, fc FileConfig, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("pihole-dir", fc.PiholeDir, &cfg.PiholeDir)
	s.setString("dnsmasq-dir", fc.DnsmasqDir, &cfg.DnsmasqDir)
	s.setString("database", fc.DatabasePath, &cfg.DatabasePath)
	s.setString("gravity-list", fc.GravityList, &cfg.GravityList)
	s.setString("regex-list", fc.RegexList, &cfg.RegexList)
	s.setString("reserved-conf", fc.ReservedConf, &cfg.ReservedConf)
	s.setString("pihole-binary", fc.PiholeBinary, &cfg.PiholeBinary)
	s.setString("backend", fc.Backend, &cfg.Backend)
	s.setString("log-level", fc.LogLevel, &cfg.LogLevel)
	s.setString("log-format", fc.LogFormat, &cfg.LogFormat)
	s.setString("metrics-file", fc.MetricsFile, &cfg.MetricsFile)

	if err := s.setDuration("timeout", fc.Timeout, &cfg.Timeout); err != nil {
		return err
	}

	s.setInt("regex-batch-size", fc.RegexBatchSize, &cfg.RegexBatchSize)
	s.setInt("delete-chunk-size", fc.DeleteChunkSize, &cfg.DeleteChunkSize)
	s.setInt("workers", fc.Workers, &cfg.Workers)

	s.setBool("dry-run", fc.DryRun, &cfg.DryRun)
	s.setBool("skip-refresh", fc.SkipRefresh, &cfg.SkipRefresh)
	s.setBool("skip-reload", fc.SkipReload, &cfg.SkipReload)
	s.setBool("allow-non-root", fc.AllowNonRoot, &cfg.AllowNonRoot)

	return nil
}

// FileExists checks if a file exists at the given path.
func FileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}

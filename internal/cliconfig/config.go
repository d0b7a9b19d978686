package cliconfig

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/bft-labs/gravityopt/internal/domain"
)

// Storage backends.
const (
	BackendAuto   = "auto"
	BackendSQLite = "sqlite"
	BackendFile   = "file"
)

// Log output formats.
const (
	LogFormatConsole = "console"
	LogFormatJSON    = "json"
)

// Defaults for the Pi-hole layout.
const (
	DefaultPiholeDir    = "/etc/pihole"
	DefaultDnsmasqDir   = "/etc/dnsmasq.d"
	DefaultReservedConf = "01-pihole.conf"
	DefaultPiholeBinary = "pihole"
)

// Config holds CLI configuration for gravityopt.
type Config struct {
	PiholeDir    string
	DnsmasqDir   string
	DatabasePath string
	GravityList  string
	RegexList    string
	ReservedConf string
	PiholeBinary string

	Backend         string
	RegexBatchSize  int
	DeleteChunkSize int
	Workers         int
	Timeout         time.Duration

	DryRun       bool
	SkipRefresh  bool
	SkipReload   bool
	AllowNonRoot bool

	LogLevel    string
	LogFormat   string
	MetricsFile string
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		PiholeDir:       DefaultPiholeDir,
		DnsmasqDir:      DefaultDnsmasqDir,
		ReservedConf:    DefaultReservedConf,
		PiholeBinary:    DefaultPiholeBinary,
		Backend:         BackendAuto,
		RegexBatchSize:  10,
		DeleteChunkSize: 1000,
		LogLevel:        "info",
		LogFormat:       LogFormatConsole,
	}
}

// Validate checks the configuration for errors and sets derived defaults.
// File locations left empty are derived from PiholeDir.
func (c *Config) Validate() error {
	if c.PiholeDir == "" {
		return fmt.Errorf("%w: pihole-dir is required", domain.ErrInvalidConfig)
	}

	if c.DatabasePath == "" {
		c.DatabasePath = filepath.Join(c.PiholeDir, "gravity.db")
	}
	if c.GravityList == "" {
		c.GravityList = filepath.Join(c.PiholeDir, "gravity.list")
	}
	if c.RegexList == "" {
		c.RegexList = filepath.Join(c.PiholeDir, "regex.list")
	}
	if c.ReservedConf == "" {
		c.ReservedConf = DefaultReservedConf
	}
	if c.PiholeBinary == "" {
		c.PiholeBinary = DefaultPiholeBinary
	}

	c.Backend = strings.ToLower(c.Backend)
	if c.Backend == "" {
		c.Backend = BackendAuto
	}
	switch c.Backend {
	case BackendAuto, BackendSQLite, BackendFile:
	default:
		return fmt.Errorf("%w: unknown backend %q (want auto, sqlite or file)", domain.ErrInvalidConfig, c.Backend)
	}

	if c.RegexBatchSize <= 0 {
		return fmt.Errorf("%w: regex batch size must be positive", domain.ErrInvalidConfig)
	}
	if c.DeleteChunkSize <= 0 {
		return fmt.Errorf("%w: delete chunk size must be positive", domain.ErrInvalidConfig)
	}
	if c.Workers < 0 {
		return fmt.Errorf("%w: workers must not be negative", domain.ErrInvalidConfig)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("%w: timeout must not be negative", domain.ErrInvalidConfig)
	}

	switch c.LogFormat {
	case "":
		c.LogFormat = LogFormatConsole
	case LogFormatConsole, LogFormatJSON:
	default:
		return fmt.Errorf("%w: unknown log format %q", domain.ErrInvalidConfig, c.LogFormat)
	}

	return nil
}

// ResolveBackend picks the storage backend. An explicit choice is returned
// as is; auto selects sqlite when the database exists and is not empty, and
// file otherwise. Call it after the gravity refresh, which may create the
// database.
func (c *Config) ResolveBackend() (string, error) {
	if c.Backend != BackendAuto && c.Backend != "" {
		return c.Backend, nil
	}
	if fi, err := os.Stat(c.DatabasePath); err == nil && fi.Mode().IsRegular() && fi.Size() > 0 {
		return BackendSQLite, nil
	}
	if FileExists(c.GravityList) {
		return BackendFile, nil
	}
	return "", fmt.Errorf("%w: neither %s nor %s found", domain.ErrPrecondition, c.DatabasePath, c.GravityList)
}

// configSetter helps apply configuration values while respecting flag precedence.
// It only applies values if the corresponding flag hasn't been explicitly set.
type configSetter struct {
	changed map[string]bool
}

// newConfigSetter creates a new setter with the given changed flags map.
func newConfigSetter(changed map[string]bool) *configSetter {
	return &configSetter{changed: changed}
}

// setString sets a string value if not empty and flag not changed.
func (s *configSetter) setString(flag, value string, dst *string) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value
}

// setInt sets an int value if positive and flag not changed.
func (s *configSetter) setInt(flag string, value int, dst *int) {
	if value <= 0 || s.changed[flag] {
		return
	}
	*dst = value
}

// setDuration parses and sets a duration from string if valid and flag not changed.
func (s *configSetter) setDuration(flag, value string, dst *time.Duration) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = d
	return nil
}

// setBool sets a bool value from a pointer if not nil and flag not changed.
func (s *configSetter) setBool(flag string, value *bool, dst *bool) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

// setIntFromString parses a string to int and sets the destination if valid.
// Used for environment variables that come as strings.
func (s *configSetter) setIntFromString(flag, value string, dst *int) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	if i <= 0 {
		return nil
	}
	*dst = i
	return nil
}

// setBoolFromString parses a string to bool and sets the destination.
// Accepts "true", "1" as true, anything else as false.
func (s *configSetter) setBoolFromString(flag, value string, dst *bool) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value == "true" || value == "1"
}

package cliconfig

import "os"

// ApplyEnvConfig applies configuration from environment variables (GRAVITYOPT_*).
// It respects flags that have been explicitly set (changed map).
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("pihole-dir", os.Getenv("GRAVITYOPT_PIHOLE_DIR"), &cfg.PiholeDir)
	s.setString("dnsmasq-dir", os.Getenv("GRAVITYOPT_DNSMASQ_DIR"), &cfg.DnsmasqDir)
	s.setString("database", os.Getenv("GRAVITYOPT_DATABASE"), &cfg.DatabasePath)
	s.setString("gravity-list", os.Getenv("GRAVITYOPT_GRAVITY_LIST"), &cfg.GravityList)
	s.setString("regex-list", os.Getenv("GRAVITYOPT_REGEX_LIST"), &cfg.RegexList)
	s.setString("reserved-conf", os.Getenv("GRAVITYOPT_RESERVED_CONF"), &cfg.ReservedConf)
	s.setString("pihole-binary", os.Getenv("GRAVITYOPT_PIHOLE_BINARY"), &cfg.PiholeBinary)
	s.setString("backend", os.Getenv("GRAVITYOPT_BACKEND"), &cfg.Backend)
	s.setString("log-level", os.Getenv("GRAVITYOPT_LOG_LEVEL"), &cfg.LogLevel)
	s.setString("log-format", os.Getenv("GRAVITYOPT_LOG_FORMAT"), &cfg.LogFormat)
	s.setString("metrics-file", os.Getenv("GRAVITYOPT_METRICS_FILE"), &cfg.MetricsFile)

	if err := s.setDuration("timeout", os.Getenv("GRAVITYOPT_TIMEOUT"), &cfg.Timeout); err != nil {
		return err
	}

	if err := s.setIntFromString("regex-batch-size", os.Getenv("GRAVITYOPT_REGEX_BATCH_SIZE"), &cfg.RegexBatchSize); err != nil {
		return err
	}
	if err := s.setIntFromString("delete-chunk-size", os.Getenv("GRAVITYOPT_DELETE_CHUNK_SIZE"), &cfg.DeleteChunkSize); err != nil {
		return err
	}
	if err := s.setIntFromString("workers", os.Getenv("GRAVITYOPT_WORKERS"), &cfg.Workers); err != nil {
		return err
	}

	s.setBoolFromString("dry-run", os.Getenv("GRAVITYOPT_DRY_RUN"), &cfg.DryRun)
	s.setBoolFromString("skip-refresh", os.Getenv("GRAVITYOPT_SKIP_REFRESH"), &cfg.SkipRefresh)
	s.setBoolFromString("skip-reload", os.Getenv("GRAVITYOPT_SKIP_RELOAD"), &cfg.SkipReload)
	s.setBoolFromString("allow-non-root", os.Getenv("GRAVITYOPT_ALLOW_NON_ROOT"), &cfg.AllowNonRoot)

	return nil
}

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"runtime/debug"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	"github.com/bft-labs/gravityopt/internal/cliconfig"
	"github.com/bft-labs/gravityopt/internal/domain"
	"github.com/bft-labs/gravityopt/pkg/gravityopt"
	"github.com/bft-labs/gravityopt/pkg/log"
)

const helpDescription = `
Remove gravity domains that your Pi-hole already blocks another way.

A domain in gravity is redundant when a dnsmasq wildcard block
(address=/example.com/#) or a regex blocklist rule covers it. gravityopt
refreshes gravity, finds those domains, deletes them from gravity.db (or
rewrites gravity.list) and reloads the resolver.

Configure via file, GRAVITYOPT_* environment variables, or flags.
`

var exampleUsage = strings.TrimSpace(`
  sudo gravityopt
  sudo gravityopt --skip-refresh --dry-run --log-level debug
  gravityopt --allow-non-root --pihole-dir ./pihole --dnsmasq-dir ./dnsmasq.d --backend file
`)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

func main() {
	cfg := cliconfig.DefaultConfig()
	var cfgPath string

	root := &cobra.Command{
		Use:           "gravityopt",
		Short:         "Remove gravity domains already covered by wildcard and regex rules",
		Long:          strings.TrimSpace(helpDescription),
		Example:       exampleUsage,
		Version:       fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, &cfg, cfgPath)
		},
	}

	f := root.Flags()
	f.StringVar(&cfgPath, "config", "", fmt.Sprintf("path to config file, .toml or .yaml (default: %s)", cliconfig.DefaultConfigPath))
	f.StringVar(&cfg.PiholeDir, "pihole-dir", cfg.PiholeDir, "Pi-hole configuration directory")
	f.StringVar(&cfg.DnsmasqDir, "dnsmasq-dir", cfg.DnsmasqDir, "dnsmasq configuration directory scanned for wildcard blocks")
	f.StringVar(&cfg.DatabasePath, "database", cfg.DatabasePath, "gravity database (default: <pihole-dir>/gravity.db)")
	f.StringVar(&cfg.GravityList, "gravity-list", cfg.GravityList, "flat gravity list (default: <pihole-dir>/gravity.list)")
	f.StringVar(&cfg.RegexList, "regex-list", cfg.RegexList, "flat regex rule file (default: <pihole-dir>/regex.list)")
	f.StringVar(&cfg.ReservedConf, "reserved-conf", cfg.ReservedConf, "dnsmasq file managed by Pi-hole, never scanned")
	f.StringVar(&cfg.PiholeBinary, "pihole-binary", cfg.PiholeBinary, "pihole command used for refresh and reload")
	f.StringVar(&cfg.Backend, "backend", cfg.Backend, "gravity storage: auto, sqlite or file")

	f.IntVar(&cfg.RegexBatchSize, "regex-batch-size", cfg.RegexBatchSize, "regex rules compiled into one alternation")
	f.IntVar(&cfg.DeleteChunkSize, "delete-chunk-size", cfg.DeleteChunkSize, "domains deleted per SQL statement")
	f.IntVar(&cfg.Workers, "workers", cfg.Workers, "regex batches scanned concurrently (0: number of CPUs)")
	f.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "abort the run after this long (0: no limit)")

	f.BoolVar(&cfg.DryRun, "dry-run", cfg.DryRun, "report what would be removed without changing anything")
	f.BoolVar(&cfg.SkipRefresh, "skip-refresh", cfg.SkipRefresh, "do not run 'pihole -g' first")
	f.BoolVar(&cfg.SkipReload, "skip-reload", cfg.SkipReload, "do not reload the resolver after removing domains")
	f.BoolVar(&cfg.AllowNonRoot, "allow-non-root", cfg.AllowNonRoot, "run without root privileges")

	f.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level: debug, info, warn or error")
	f.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "log format: console or json")
	f.StringVar(&cfg.MetricsFile, "metrics-file", cfg.MetricsFile, "write run metrics to this Prometheus textfile")

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "gravityopt: %v\n", err)
		os.Exit(exitCode(err))
	}
}

func run(cmd *cobra.Command, cfg *cliconfig.Config, cfgPath string) error {
	changed := map[string]bool{}
	cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })

	if err := applyConfigFile(cfg, cfgPath, changed); err != nil {
		return err
	}

	// GRAVITYOPT_* override the file but not explicit flags.
	if err := cliconfig.ApplyEnvConfig(cfg, changed); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := log.NewZerolog(log.Options{Level: cfg.LogLevel, Format: cfg.LogFormat, Out: os.Stderr})
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidConfig, err)
	}

	if !cfg.AllowNonRoot && os.Geteuid() != 0 {
		return fmt.Errorf("%w: must run as root (or pass --allow-non-root)", domain.ErrPrecondition)
	}

	logger.Debug("configuration",
		log.String("pihole_dir", cfg.PiholeDir),
		log.String("dnsmasq_dir", cfg.DnsmasqDir),
		log.String("backend", cfg.Backend),
		log.Int("regex_batch_size", cfg.RegexBatchSize),
		log.Int("delete_chunk_size", cfg.DeleteChunkSize),
		log.Bool("dry_run", cfg.DryRun),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	report, err := gravityopt.Run(ctx, *cfg, gravityopt.WithLogger(logger))
	if err != nil {
		return err
	}

	logger.Info("gravity optimised",
		log.String("backend", report.Backend),
		log.Int("loaded", report.Loaded),
		log.Int("wildcards", report.Wildcards),
		log.Int("regexps", report.Regexps),
		log.Int("removed", report.Removed),
		log.Int("remaining", report.Remaining),
		log.Bool("dry_run", report.DryRun),
		log.Duration("took", report.Duration),
	)
	return nil
}

// applyConfigFile loads cfgPath, or the default config file when cfgPath is
// empty, into cfg. An explicit path must exist; the default one is optional.
func applyConfigFile(cfg *cliconfig.Config, cfgPath string, changed map[string]bool) error {
	cfgFile := cfgPath
	if cfgFile == "" {
		cfgFile = cliconfig.DefaultConfigPath
	}
	if cfgPath == "" && !cliconfig.FileExists(cfgFile) {
		return nil
	}

	fc, err := cliconfig.LoadFileConfig(cfgFile)
	if err != nil {
		return fmt.Errorf("%w: load config: %v", domain.ErrInvalidConfig, err)
	}
	if err := cliconfig.ApplyFileConfig(cfg, fc, changed); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidConfig, err)
	}
	return nil
}

// exitCode maps run errors to process exit codes.
func exitCode(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidConfig):
		return 2
	case errors.Is(err, domain.ErrPersistence):
		return 3
	default:
		return 1
	}
}

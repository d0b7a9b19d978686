// Package gravityopt removes gravity domains that a Pi-hole already blocks
// through dnsmasq wildcard or regex rules.
//
// Example usage:
//
//	cfg := gravityopt.DefaultConfig()
//	cfg.DryRun = true
//	report, err := gravityopt.Run(context.Background(), cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(report.Removed, "redundant domains")
//
// The library API with options lives in pkg/gravityopt.
package gravityopt

import (
	"context"

	lib "github.com/bft-labs/gravityopt/pkg/gravityopt"
)

// Config holds the configuration of a run.
// Use DefaultConfig() to get a Config for a stock Pi-hole installation.
type Config = lib.Config

// Report summarises a finished run.
type Report = lib.Report

// Run executes one reconciliation pass with the given configuration.
func Run(ctx context.Context, cfg Config) (Report, error) {
	return lib.Run(ctx, cfg)
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return lib.DefaultConfig()
}

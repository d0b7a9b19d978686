// Package gravityopt removes redundant entries from a Pi-hole gravity list.
//
// A gravity domain is redundant when a dnsmasq wildcard block
// (address=/<base>/...) or a regex blocklist rule already blocks it. One call
// to [Optimizer.Run] loads the gravity set from gravity.db or gravity.list,
// finds those domains, removes them and reloads the resolver.
//
// # Basic Usage
//
//	cfg := gravityopt.DefaultConfig()
//	cfg.SkipRefresh = true
//
//	opt, err := gravityopt.New(cfg, gravityopt.WithLogger(logger))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	report, err := opt.Run(ctx)
//
// # Backends
//
// The gravity set lives in the gravity table of a SQLite database or in a
// flat file, one domain per line. With Backend "auto" the database is used
// when it exists and is not empty. Regex rules are read from the same place:
// domainlist rows of type 3, or regex.list.
//
// # Dependency Injection
//
// The refresh and reload steps run the pihole command line. Tests and
// embedders can replace them:
//
//	opt, err := gravityopt.New(cfg,
//	    gravityopt.WithRefreshAction(myRefresh),
//	    gravityopt.WithReloadAction(myReload),
//	)
package gravityopt

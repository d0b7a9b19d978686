// Package ports defines the interfaces (ports) that connect the reconciliation
// engine to infrastructure adapters.
//
// # Port Interfaces
//
//   - [DomainStore]: loads the gravity domain set and commits the removal
//   - [LineSource]: yields raw dnsmasq configuration lines for wildcard extraction
//   - [PatternSource]: yields regex blocklist patterns
//   - [Action]: an external collaborator such as a list refresh or resolver reload
//   - [ReportSink]: receives the run report (metrics)
//
// The application layer (internal/app) depends only on these interfaces.
// Infrastructure adapters (internal/adapters) implement them with SQLite,
// flat files, subprocesses and Prometheus textfiles.
package ports

// Package domain contains the core entities of gravityopt.
//
// It has no dependencies on infrastructure concerns (SQLite, files, logging)
// and holds only the value types the reconciliation engine passes around.
//
// # Entities
//
//   - [Set]: a set of lowercase domain names (gravity domains, wildcard bases,
//     removal sets)
//   - [Report]: the outcome of a single reconciliation pass
//   - [SkippedBatch]: a regex batch that could not be compiled as a whole
package domain

// Package domain defines the core business entities for Sercha Chat.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - RawQuery: The text a user is typing, with its cursor
//   - SearchRequest: What is actually sent to the search backends
//   - FileFilter: The file-type restriction applied to file searches
//   - ResultSet: The aggregated outcome of one committed search
//   - Snapshot: The observable state of a search screen
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain

// Package domain defines the core business entities for conciliar.
//
// This package is part of the hexagonal architecture's innermost layer.
// It defines the fundamental types of a reconciliation run:
//
//   - Table: A pre-loaded source table with named columns
//   - InternalRecord: A billing line from the primary or secondary internal source
//   - ExternalRecord: A portfolio line from the insurer report
//   - CombinedSet: Internal records after primary-source precedence
//   - Outcome: One classified result, grouped into five buckets by Result
//
// It also holds the key normalizer (policy, receipt and date canonical forms).
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import the Go
// standard library and github.com/shopspring/decimal for money amounts.
// All other packages depend on domain, never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library, shopspring/decimal
//   - Cannot Import: Any internal/ package, any other external dependency
package domain

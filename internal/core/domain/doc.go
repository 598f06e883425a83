// Package domain defines the core business entities for stig-assist.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - ControlRecord: One compliance control parsed from a benchmark document
//   - Document: The rendered text body of a ControlRecord, input to preprocessing
//   - Segment: A bounded slice of a Document, the unit placed into the corpus
//   - Answer: The structured result of a question
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

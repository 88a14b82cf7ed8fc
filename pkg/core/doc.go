// Package core defines the small set of types shared by the linter, the CLI
// and tooling: diagnostic severities and rule metadata.
//
// The Golden Rule: pkg/core imports ONLY stdlib.
// All other packages depend on core, not the reverse.
package core

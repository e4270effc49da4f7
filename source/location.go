// Package source identifies program points in loaded source code.
//
// A Location pins a breakpointable call site by its origin and exact
// position. Locations are immutable values with structural equality,
// which makes them usable directly as map keys in breakpoint registries.
package source

import "fmt"

// Location identifies a single program point.
type Location struct {
	// Origin identifies the source unit, typically a file URI.
	Origin string

	// StartLine is the 1-based line of the call site.
	StartLine int

	// StartColumn is the 1-based column of the call site.
	StartColumn int

	// CharIndex is the absolute character offset within the origin.
	CharIndex int
}

// IsZero reports whether the location carries no position information.
func (l Location) IsZero() bool {
	return l == Location{}
}

// String returns a compact origin:line:column@offset form for logs.
func (l Location) String() string {
	return fmt.Sprintf("%s:%d:%d@%d", l.Origin, l.StartLine, l.StartColumn, l.CharIndex)
}

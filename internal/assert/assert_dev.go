//go:build !release

// Package assert holds the checked-build switch. Checks compile to nothing when built with -tags release.
package assert

import "fmt"

// Enabled reports whether programmer-error checks are compiled in.
const Enabled = true

func That(cond bool, format string, args ...any) { //nolint:goprintffuncname // it's ok
	if !cond {
		panic(fmt.Sprintf(format, args...))
	}
}

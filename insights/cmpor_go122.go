//go:build go1.22

package insights

import "cmp"

// cmpOr forwards to cmp.Or on toolchains that provide it.
func cmpOr[T comparable](vals ...T) T { return cmp.Or(vals...) }

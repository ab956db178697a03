//go:build !statsview

package statsview

import (
	"io"
)

// Available reports whether this build can serve statistics.
func Available() bool {
	return false
}

// Launch does nothing in this build.
func Launch(output io.Writer) (stop func()) {
	return func() {}
}

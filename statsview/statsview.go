//go:build statsview

package statsview

import (
	"fmt"
	"io"

	"github.com/go-echarts/statsview"
	"github.com/go-echarts/statsview/viewer"
)

// Available reports whether this build can serve statistics.
func Available() bool {
	return true
}

// Launch starts the statistics server in the background, and tells the
// user where to find it. The returned function shuts the server down.
func Launch(output io.Writer) (stop func()) {
	viewer.SetConfiguration(viewer.WithAddr(Address))

	mgr := statsview.New()
	go mgr.Start()

	fmt.Fprintf(output, "ls8: runtime statistics at http://%s/debug/statsview\n", Address)

	return mgr.Stop
}

// Command vscpsim drives a single simulated VSCP Level 1 node in-process:
// a channel-backed bus stands in for the physical transport so the node's
// lifecycle, register access and decision matrices can be exercised without
// real hardware.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

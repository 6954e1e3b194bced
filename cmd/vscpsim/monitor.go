package main

import (
	"bufio"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"vscpnode/internal/vscpconst"
	"vscpnode/internal/vscpevent"
	"vscpnode/internal/vscplog"
)

// newMonitorCmd puts the terminal in raw mode and lets the operator drive a
// simulated node one keystroke at a time: 'h' injects a segment-controller
// heartbeat, 't' injects a measurement/temperature reading the decision
// matrix can act on, 's' prints the node's state, 'q' quits. Every frame the
// node transmits is printed as it arrives.
func newMonitorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "monitor",
		Short: "Interactively drive a simulated node from the keyboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			log, err := vscplog.New(debug)
			if err != nil {
				return err
			}
			defer log.Sync()

			node := newSimNode(log)

			fd := int(os.Stdin.Fd())
			if !term.IsTerminal(fd) {
				return fmt.Errorf("monitor requires an interactive terminal")
			}
			oldState, err := term.MakeRaw(fd)
			if err != nil {
				return err
			}
			defer term.Restore(fd, oldState)

			out := bufio.NewWriter(os.Stdout)
			defer out.Flush()
			fmt.Fprint(out, "vscpsim monitor: h=heartbeat t=temperature s=state q=quit\r\n")
			out.Flush()

			keys := make(chan byte)
			go readKeys(os.Stdin, keys)

			ticker := time.NewTicker(50 * time.Millisecond)
			defer ticker.Stop()

			for {
				select {
				case k, ok := <-keys:
					if !ok || k == 'q' {
						return nil
					}
					handleKey(node, k, out)
				case <-ticker.C:
					node.core.Process()
					drainToTerminal(node, out)
				}
			}
		},
	}
}

func readKeys(f *os.File, out chan<- byte) {
	defer close(out)
	buf := make([]byte, 1)
	for {
		n, err := f.Read(buf)
		if err != nil || n == 0 {
			return
		}
		out <- buf[0]
	}
}

func handleKey(node *simNode, k byte, out *bufio.Writer) {
	switch k {
	case 'h':
		evt := vscpevent.RxEvent{Class: vscpconst.ClassProtocol, Type: vscpconst.ProtoSegControllerHeartbeat, Origin: vscpconst.NicknameSegmentMaster}
		node.bus.Inject(evt)
		fmt.Fprint(out, "injected: segment heartbeat\r\n")
	case 't':
		tx := vscpevent.MeasurementTemperature(node.core.ReadNickname(), vscpconst.PriorityNormal, 0, []byte{21})
		node.bus.Inject(vscpevent.RxEvent(tx))
		fmt.Fprint(out, "injected: temperature=21\r\n")
	case 's':
		fmt.Fprintf(out, "state: %s nickname=0x%02X\r\n", node.core.State(), node.core.ReadNickname())
	default:
		return
	}
	out.Flush()
}

func drainToTerminal(node *simNode, out *bufio.Writer) {
	for {
		select {
		case evt := <-node.bus.out:
			fmt.Fprintf(out, "tx: %s\r\n", evt.String())
			out.Flush()
		default:
			return
		}
	}
}

package main

import (
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"vscpnode/internal/vscplog"
)

func newRunCmd() *cobra.Command {
	var tickMS int
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a simulated node headlessly until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			log, err := vscplog.New(debug)
			if err != nil {
				return err
			}
			defer log.Sync()

			node := newSimNode(log)

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			tick := time.NewTicker(time.Duration(tickMS) * time.Millisecond)
			defer tick.Stop()

			log.Info("node started", zap.String(vscplog.FieldState, node.core.State().String()))

			for {
				select {
				case <-ctx.Done():
					log.Info("shutting down")
					return nil
				case <-tick.C:
					for node.core.Process() {
						// drain every queued frame before advancing the clock
					}
					drainOutbound(node, log)
				}
			}
		},
	}
	cmd.Flags().IntVar(&tickMS, "tick-ms", 50, "simulated clock period in milliseconds")
	return cmd
}

func drainOutbound(node *simNode, log *zap.Logger) {
	for {
		select {
		case evt := <-node.bus.out:
			log.Info("tx", zap.String("event", evt.String()))
		default:
			return
		}
	}
}

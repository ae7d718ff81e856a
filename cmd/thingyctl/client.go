package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/srg/thingy52/pkg/thingy"
	"github.com/srg/thingy52/pkg/transport"
)

// interruptContext returns a context cancelled on Ctrl+C or SIGTERM.
func interruptContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// dialThingy connects to the peripheral at addr using the configured client
// options. The returned cleanup disconnects; callers must defer it.
func dialThingy(ctx context.Context, cmd *cobra.Command, addr string, logger *logrus.Logger) (*thingy.Client, func(), error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}

	client := thingy.NewClient(transport.NewBLE(logger), cfg.ClientOptions(), logger)
	if err := client.Connect(ctx, addr); err != nil {
		return nil, nil, fmt.Errorf("connect to %q: %w", addr, err)
	}
	return client, func() { _ = client.Disconnect() }, nil
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// statusCmd represents the status command
var statusCmd = &cobra.Command{
	Use:   "status <device-address>",
	Short: "Show device connection state, battery and LED status",
	Long: `Connect to a Thingy:52 and print a quick health summary:
connection state, battery level and the current LED state.

Example:
  thingyctl status AA:BB:CC:DD:EE:FF`,
	Args: cobra.ExactArgs(1),
	RunE: runStatus,
}

var statusVerbose bool

func init() {
	statusCmd.Flags().BoolVar(&statusVerbose, "verbose", false, "Enable debug logging")
}

func runStatus(cmd *cobra.Command, args []string) error {
	logger, err := configureLogger(cmd, "verbose")
	if err != nil {
		return err
	}
	cmd.SilenceUsage = true

	ctx, cancel := interruptContext()
	defer cancel()

	client, disconnect, err := dialThingy(ctx, cmd, args[0], logger)
	if err != nil {
		return err
	}
	defer disconnect()

	fmt.Printf("Device:     %s\n", client.Address())
	fmt.Printf("State:      %s\n", client.State())

	policy := client.ReconnectPolicy()
	if policy.Enabled {
		attempts := "unbounded"
		if policy.MaxAttempts > 0 {
			attempts = fmt.Sprintf("%d attempts", policy.MaxAttempts)
		}
		fmt.Printf("Reconnect:  enabled (%s, %s..%s backoff)\n",
			attempts, policy.InitialDelay, policy.MaxDelay)
	} else {
		fmt.Printf("Reconnect:  disabled\n")
	}

	if level, err := client.ReadBattery(ctx); err != nil {
		logger.WithError(err).Warn("battery level unavailable")
	} else {
		fmt.Printf("Battery:    %d%%\n", level)
	}

	if state, err := client.ReadLED(ctx); err != nil {
		logger.WithError(err).Warn("LED state unavailable")
	} else {
		_ = printLEDState(state)
	}
	return nil
}

package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/srg/thingy52/pkg/codec"
)

// soundCmd represents the sound command
var soundCmd = &cobra.Command{
	Use:   "sound <device-address> <sample-id>",
	Short: "Play a preset sound sample",
	Long: fmt.Sprintf(`Play one of the Thingy:52's preset firmware sound samples (%d-%d).

The speaker is switched to sample mode automatically; playback runs at a
fixed volume.

Example:
  thingyctl sound AA:BB:CC:DD:EE:FF 1`, codec.MinSoundSample, codec.MaxSoundSample),
	Args: cobra.ExactArgs(2),
	RunE: runSound,
}

var soundVerbose bool

func init() {
	soundCmd.Flags().BoolVar(&soundVerbose, "verbose", false, "Enable debug logging")
}

func runSound(cmd *cobra.Command, args []string) error {
	addr := args[0]
	id, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("invalid sample id %q: must be a number %d-%d", args[1], codec.MinSoundSample, codec.MaxSoundSample)
	}

	logger, err := configureLogger(cmd, "verbose")
	if err != nil {
		return err
	}
	cmd.SilenceUsage = true

	ctx, cancel := interruptContext()
	defer cancel()

	client, disconnect, err := dialThingy(ctx, cmd, addr, logger)
	if err != nil {
		return err
	}
	defer disconnect()

	if err := client.PlaySoundSample(ctx, id); err != nil {
		return err
	}

	fmt.Printf("Playing sample %d\n", id)
	return nil
}

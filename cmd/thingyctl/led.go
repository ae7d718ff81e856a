package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/srg/thingy52/pkg/codec"
)

// ledCmd represents the led command
var ledCmd = &cobra.Command{
	Use:   "led <device-address> <off|constant|breathe|one-shot|status>",
	Short: "Drive the LED lightwell",
	Long: `Drive the Thingy:52 LED lightwell.

Constant mode takes an arbitrary RGB color; breathe and one-shot modes
quantize the color to the nearest of the seven firmware primaries.

Examples:
  thingyctl led AA:BB:CC:DD:EE:FF constant --red 255 --green 80 --intensity 60
  thingyctl led AA:BB:CC:DD:EE:FF breathe --blue 255 --delay 1500
  thingyctl led AA:BB:CC:DD:EE:FF off
  thingyctl led AA:BB:CC:DD:EE:FF status`,
	Args: cobra.ExactArgs(2),
	RunE: runLED,
}

var (
	ledRed       uint8
	ledGreen     uint8
	ledBlue      uint8
	ledIntensity int
	ledDelayMs   int
	ledVerbose   bool
)

func init() {
	ledCmd.Flags().Uint8Var(&ledRed, "red", 0, "Red channel (0-255)")
	ledCmd.Flags().Uint8Var(&ledGreen, "green", 0, "Green channel (0-255)")
	ledCmd.Flags().Uint8Var(&ledBlue, "blue", 0, "Blue channel (0-255)")
	ledCmd.Flags().IntVar(&ledIntensity, "intensity", 100, "Intensity percentage (0-100)")
	ledCmd.Flags().IntVar(&ledDelayMs, "delay", 1000, "Breathe period in milliseconds")
	ledCmd.Flags().BoolVar(&ledVerbose, "verbose", false, "Enable debug logging")
}

func runLED(cmd *cobra.Command, args []string) error {
	addr, mode := args[0], args[1]

	var ledMode codec.LEDMode
	switch mode {
	case "off":
		ledMode = codec.LEDOff
	case "constant":
		ledMode = codec.LEDConstant
	case "breathe":
		ledMode = codec.LEDBreathe
	case "one-shot":
		ledMode = codec.LEDOneShot
	case "status":
		// handled below
	default:
		return fmt.Errorf("unknown LED mode %q (one of: off, constant, breathe, one-shot, status)", mode)
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

	if mode == "status" {
		state, err := client.ReadLED(ctx)
		if err != nil {
			return err
		}
		return printLEDState(state)
	}

	err = client.SetLED(ctx, codec.LEDCommand{
		Mode:      ledMode,
		Red:       ledRed,
		Green:     ledGreen,
		Blue:      ledBlue,
		Intensity: ledIntensity,
		DelayMs:   ledDelayMs,
	})
	if err != nil {
		return err
	}

	fmt.Printf("LED set to %s\n", ledMode)
	return nil
}

func printLEDState(state codec.LEDState) error {
	switch state.Mode {
	case codec.LEDOff:
		fmt.Println("LED is off")
	case codec.LEDConstant:
		fmt.Printf("LED constant: R=%d G=%d B=%d\n", state.Red, state.Green, state.Blue)
	case codec.LEDBreathe:
		fmt.Printf("LED breathe: color=%s intensity=%d delay=%dms\n", state.Color, state.Intensity, state.DelayMs)
	case codec.LEDOneShot:
		fmt.Printf("LED one-shot: color=%s intensity=%d\n", state.Color, state.Intensity)
	default:
		fmt.Printf("LED mode unknown (%d)\n", state.Mode)
	}
	return nil
}

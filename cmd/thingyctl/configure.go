package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/srg/thingy52/pkg/codec"
)

// envConfigCmd represents the env-config command
var envConfigCmd = &cobra.Command{
	Use:   "env-config <device-address>",
	Short: "Configure environment sensor sampling",
	Long: `Update the environment sensor configuration record.

Only the flags you pass change; everything else keeps its current
device-side value (read-modify-write). Gas mode selects the gas sensor
sampling interval: 1 = 1s, 2 = 10s, 3 = 60s.

Example:
  thingyctl env-config AA:BB:CC:DD:EE:FF --temp-interval 2000 --gas-mode 3`,
	Args: cobra.ExactArgs(1),
	RunE: runEnvConfig,
}

// motionConfigCmd represents the motion-config command
var motionConfigCmd = &cobra.Command{
	Use:   "motion-config <device-address>",
	Short: "Configure motion sensor processing",
	Long: `Update the motion sensor configuration record.

Only the flags you pass change; everything else keeps its current
device-side value (read-modify-write).

Example:
  thingyctl motion-config AA:BB:CC:DD:EE:FF --frequency 50 --wake=false`,
	Args: cobra.ExactArgs(1),
	RunE: runMotionConfig,
}

var (
	envTempInterval     uint16
	envPressureInterval uint16
	envHumidityInterval uint16
	envColorInterval    uint16
	envGasMode          uint8
	envVerbose          bool

	motionStepInterval uint16
	motionTempComp     uint16
	motionMagComp      uint16
	motionFrequency    uint16
	motionWake         bool
	motionVerbose      bool
)

func init() {
	envConfigCmd.Flags().Uint16Var(&envTempInterval, "temp-interval", 0, "Temperature sampling interval (ms)")
	envConfigCmd.Flags().Uint16Var(&envPressureInterval, "pressure-interval", 0, "Pressure sampling interval (ms)")
	envConfigCmd.Flags().Uint16Var(&envHumidityInterval, "humidity-interval", 0, "Humidity sampling interval (ms)")
	envConfigCmd.Flags().Uint16Var(&envColorInterval, "color-interval", 0, "Color sampling interval (ms)")
	envConfigCmd.Flags().Uint8Var(&envGasMode, "gas-mode", 0, "Gas sensor mode (1=1s, 2=10s, 3=60s)")
	envConfigCmd.Flags().BoolVar(&envVerbose, "verbose", false, "Enable debug logging")

	motionConfigCmd.Flags().Uint16Var(&motionStepInterval, "step-interval", 0, "Step counter interval (ms)")
	motionConfigCmd.Flags().Uint16Var(&motionTempComp, "temp-comp-interval", 0, "Temperature compensation interval (ms)")
	motionConfigCmd.Flags().Uint16Var(&motionMagComp, "mag-comp-interval", 0, "Magnetometer compensation interval (ms)")
	motionConfigCmd.Flags().Uint16Var(&motionFrequency, "frequency", 0, "Motion processing frequency (1-200 Hz)")
	motionConfigCmd.Flags().BoolVar(&motionWake, "wake", true, "Wake on motion")
	motionConfigCmd.Flags().BoolVar(&motionVerbose, "verbose", false, "Enable debug logging")
}

func runEnvConfig(cmd *cobra.Command, args []string) error {
	var update codec.EnvironmentConfigUpdate
	if cmd.Flags().Changed("temp-interval") {
		update.TemperatureIntervalMs = &envTempInterval
	}
	if cmd.Flags().Changed("pressure-interval") {
		update.PressureIntervalMs = &envPressureInterval
	}
	if cmd.Flags().Changed("humidity-interval") {
		update.HumidityIntervalMs = &envHumidityInterval
	}
	if cmd.Flags().Changed("color-interval") {
		update.ColorIntervalMs = &envColorInterval
	}
	if cmd.Flags().Changed("gas-mode") {
		mode := codec.GasMode(envGasMode)
		update.GasMode = &mode
	}
	if update.Empty() {
		return fmt.Errorf("nothing to change: pass at least one configuration flag")
	}

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

	res, err := client.ConfigureEnvironment(ctx, update)
	if err != nil {
		return err
	}

	if res.ReadFallbackUsed {
		fmt.Println("WARNING: current device record could not be read; unspecified fields were set to defaults")
	}
	cfg := res.Config
	fmt.Printf("Environment configuration written:\n")
	fmt.Printf("  temperature interval  %d ms\n", cfg.TemperatureIntervalMs)
	fmt.Printf("  pressure interval     %d ms\n", cfg.PressureIntervalMs)
	fmt.Printf("  humidity interval     %d ms\n", cfg.HumidityIntervalMs)
	fmt.Printf("  color interval        %d ms\n", cfg.ColorIntervalMs)
	fmt.Printf("  gas mode              %d\n", cfg.GasMode)
	return nil
}

func runMotionConfig(cmd *cobra.Command, args []string) error {
	var update codec.MotionConfigUpdate
	if cmd.Flags().Changed("step-interval") {
		update.StepIntervalMs = &motionStepInterval
	}
	if cmd.Flags().Changed("temp-comp-interval") {
		update.TempCompIntervalMs = &motionTempComp
	}
	if cmd.Flags().Changed("mag-comp-interval") {
		update.MagCompIntervalMs = &motionMagComp
	}
	if cmd.Flags().Changed("frequency") {
		update.FrequencyHz = &motionFrequency
	}
	if cmd.Flags().Changed("wake") {
		update.WakeOnMotion = &motionWake
	}
	if update.Empty() {
		return fmt.Errorf("nothing to change: pass at least one configuration flag")
	}

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

	res, err := client.ConfigureMotion(ctx, update)
	if err != nil {
		return err
	}

	if res.ReadFallbackUsed {
		fmt.Println("WARNING: current device record could not be read; unspecified fields were set to defaults")
	}
	cfg := res.Config
	fmt.Printf("Motion configuration written:\n")
	fmt.Printf("  step interval        %d ms\n", cfg.StepIntervalMs)
	fmt.Printf("  temp comp interval   %d ms\n", cfg.TempCompIntervalMs)
	fmt.Printf("  mag comp interval    %d ms\n", cfg.MagCompIntervalMs)
	fmt.Printf("  frequency            %d Hz\n", cfg.FrequencyHz)
	fmt.Printf("  wake on motion       %t\n", cfg.WakeOnMotion)
	return nil
}

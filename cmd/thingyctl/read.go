package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/srg/thingy52/pkg/thingy"
)

// readCmd represents the read command
var readCmd = &cobra.Command{
	Use:   "read <device-address> <sensor>",
	Short: "Read a sensor value",
	Long: `Read one sensor from a connected Thingy:52.

Sensors:
  temperature   degrees Celsius
  humidity      relative humidity, percent
  pressure      hectopascals
  air-quality   eCO2 ppm and TVOC ppb (configures the gas sensor first)
  color         RGBC color sensor sample
  light         ambient light (clear channel)
  battery       battery level, percent
  steps         cumulative step count
  orientation   coarse device orientation
  quaternion    orientation quaternion
  euler         roll / pitch / yaw in degrees
  heading       compass heading in degrees
  tap           wait for the next tap event
  environment   temperature, humidity, pressure and air quality in one go

Examples:
  thingyctl read AA:BB:CC:DD:EE:FF temperature
  thingyctl read AA:BB:CC:DD:EE:FF environment --format json`,
	Args: cobra.ExactArgs(2),
	RunE: runRead,
}

var (
	readFormat  string
	readVerbose bool
)

func init() {
	readCmd.Flags().StringVarP(&readFormat, "format", "f", "table", "Output format (table, json)")
	readCmd.Flags().BoolVar(&readVerbose, "verbose", false, "Enable debug logging")
}

// sensorReaders maps sensor names to read functions producing printable
// key/value pairs.
var sensorReaders = map[string]func(ctx context.Context, c *thingy.Client) (map[string]any, error){
	"temperature": func(ctx context.Context, c *thingy.Client) (map[string]any, error) {
		v, err := c.ReadTemperature(ctx)
		if err != nil {
			return nil, err
		}
		return map[string]any{"temperature_c": v}, nil
	},
	"humidity": func(ctx context.Context, c *thingy.Client) (map[string]any, error) {
		v, err := c.ReadHumidity(ctx)
		if err != nil {
			return nil, err
		}
		return map[string]any{"humidity_pct": v}, nil
	},
	"pressure": func(ctx context.Context, c *thingy.Client) (map[string]any, error) {
		v, err := c.ReadPressure(ctx)
		if err != nil {
			return nil, err
		}
		return map[string]any{"pressure_hpa": v}, nil
	},
	"air-quality": func(ctx context.Context, c *thingy.Client) (map[string]any, error) {
		v, err := c.ReadAirQuality(ctx)
		if err != nil {
			return nil, err
		}
		out := map[string]any{"eco2_ppm": v.ECO2, "tvoc_ppb": v.TVOC}
		if v.WarmingUp() {
			out["warming_up"] = true
		}
		return out, nil
	},
	"color": func(ctx context.Context, c *thingy.Client) (map[string]any, error) {
		v, err := c.ReadColor(ctx)
		if err != nil {
			return nil, err
		}
		return map[string]any{"red": v.Red, "green": v.Green, "blue": v.Blue, "clear": v.Clear}, nil
	},
	"light": func(ctx context.Context, c *thingy.Client) (map[string]any, error) {
		v, err := c.ReadLightIntensity(ctx)
		if err != nil {
			return nil, err
		}
		return map[string]any{"light": v}, nil
	},
	"battery": func(ctx context.Context, c *thingy.Client) (map[string]any, error) {
		v, err := c.ReadBattery(ctx)
		if err != nil {
			return nil, err
		}
		return map[string]any{"battery_pct": v}, nil
	},
	"steps": func(ctx context.Context, c *thingy.Client) (map[string]any, error) {
		v, err := c.ReadStepCount(ctx)
		if err != nil {
			return nil, err
		}
		return map[string]any{"steps": v}, nil
	},
	"orientation": func(ctx context.Context, c *thingy.Client) (map[string]any, error) {
		v, err := c.ReadOrientation(ctx)
		if err != nil {
			return nil, err
		}
		return map[string]any{"orientation": v.String()}, nil
	},
	"quaternion": func(ctx context.Context, c *thingy.Client) (map[string]any, error) {
		v, err := c.ReadQuaternion(ctx)
		if err != nil {
			return nil, err
		}
		return map[string]any{"w": v.W, "x": v.X, "y": v.Y, "z": v.Z}, nil
	},
	"euler": func(ctx context.Context, c *thingy.Client) (map[string]any, error) {
		v, err := c.ReadEulerAngles(ctx)
		if err != nil {
			return nil, err
		}
		return map[string]any{"roll_deg": v.Roll, "pitch_deg": v.Pitch, "yaw_deg": v.Yaw}, nil
	},
	"heading": func(ctx context.Context, c *thingy.Client) (map[string]any, error) {
		v, err := c.ReadHeading(ctx)
		if err != nil {
			return nil, err
		}
		return map[string]any{"heading_deg": v}, nil
	},
	"tap": func(ctx context.Context, c *thingy.Client) (map[string]any, error) {
		v, err := c.ReadTapEvent(ctx)
		if err != nil {
			return nil, err
		}
		return map[string]any{"direction": v.Direction.String(), "count": v.Count}, nil
	},
	"environment": func(ctx context.Context, c *thingy.Client) (map[string]any, error) {
		v, err := c.ReadAllEnvironmental(ctx)
		if err != nil {
			return nil, err
		}
		out := map[string]any{}
		if v.Temperature != nil {
			out["temperature_c"] = *v.Temperature
		}
		if v.Humidity != nil {
			out["humidity_pct"] = *v.Humidity
		}
		if v.Pressure != nil {
			out["pressure_hpa"] = *v.Pressure
		}
		if v.CO2 != nil {
			out["eco2_ppm"] = *v.CO2
		}
		if v.TVOC != nil {
			out["tvoc_ppb"] = *v.TVOC
		}
		if len(out) == 0 {
			out["warning"] = "no sensor responded in time"
		}
		return out, nil
	},
}

func sensorNames() []string {
	names := make([]string, 0, len(sensorReaders))
	for name := range sensorReaders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func runRead(cmd *cobra.Command, args []string) error {
	addr, sensor := args[0], strings.ToLower(args[1])

	reader, ok := sensorReaders[sensor]
	if !ok {
		return fmt.Errorf("unknown sensor %q (one of: %s)", sensor, strings.Join(sensorNames(), ", "))
	}
	if readFormat != "table" && readFormat != "json" {
		return fmt.Errorf("invalid format %q: must be table or json", readFormat)
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

	values, err := reader(ctx, client)
	if err != nil {
		return fmt.Errorf("read %s: %w", sensor, err)
	}

	return printValues(values, readFormat)
}

func printValues(values map[string]any, format string) error {
	if format == "json" {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(values)
	}

	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Printf("%-16s %v\n", k, values[k])
	}
	return nil
}

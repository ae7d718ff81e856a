package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/srg/thingy52/scanner"
)

// scanCmd represents the scan command
var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan for Thingy:52 devices",
	Long: `Scan for Nordic Thingy:52 peripherals in the vicinity.

By default only devices identifying as a Thingy (by advertised name or by a
Thingy vendor service UUID) are listed; --all shows every BLE device seen.`,
	RunE: runScan,
}

var (
	scanDuration  time.Duration
	scanFormat    string
	scanAll       bool
	scanAllowList []string
	scanBlockList []string
	scanVerbose   bool
)

func init() {
	scanCmd.Flags().DurationVarP(&scanDuration, "duration", "d", 10*time.Second, "Scan duration (0 for indefinite)")
	scanCmd.Flags().StringVarP(&scanFormat, "format", "f", "table", "Output format (table, json)")
	scanCmd.Flags().BoolVarP(&scanAll, "all", "a", false, "Show all BLE devices, not only Thingys")
	scanCmd.Flags().StringSliceVar(&scanAllowList, "allow", nil, "Only show devices with these addresses")
	scanCmd.Flags().StringSliceVar(&scanBlockList, "block", nil, "Hide devices with these addresses")
	scanCmd.Flags().BoolVar(&scanVerbose, "verbose", false, "Enable debug logging")
}

func runScan(cmd *cobra.Command, args []string) error {
	if scanFormat != "table" && scanFormat != "json" {
		return fmt.Errorf("invalid format %q: must be table or json", scanFormat)
	}

	logger, err := configureLogger(cmd, "verbose")
	if err != nil {
		return err
	}

	// All arguments validated - don't show usage on runtime errors
	cmd.SilenceUsage = true

	ctx, cancel := interruptContext()
	defer cancel()

	opts := scanner.DefaultOptions()
	opts.Duration = scanDuration
	opts.ThingyOnly = !scanAll
	opts.AllowList = scanAllowList
	opts.BlockList = scanBlockList

	s := scanner.New(logger)

	progress := newProgressPrinter("Scanning for Thingy devices", scanDuration)
	progress.Start()
	defer progress.Stop()

	devices, err := s.Scan(ctx, opts, progress.Callback())
	progress.Stop()
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	return displayDevices(devices, scanFormat)
}

func displayDevices(devices map[string]scanner.Discovery, format string) error {
	if len(devices) == 0 {
		fmt.Println("No devices discovered")
		return nil
	}

	if format == "json" {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(devices)
	}

	// Sorted views come from the scanner; the map loses order.
	list := make([]scanner.Discovery, 0, len(devices))
	for _, d := range devices {
		list = append(list, d)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Address < list[j].Address })

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		color.NoColor = true
	}
	highlight := color.New(color.FgCyan)

	var base io.Writer = os.Stdout
	w := tabwriter.NewWriter(base, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tADDRESS\tRSSI\tTHINGY\tSERVICES")
	fmt.Fprintln(w, strings.Repeat("-", 80))

	for _, d := range list {
		name := d.Name
		if name == "" {
			name = "(unknown)"
		}
		if len(name) > 20 {
			name = name[:17] + "..."
		}
		services := strings.Join(d.Services, ",")
		if len(services) > 30 {
			services = services[:27] + "..."
		}
		marker := ""
		if d.Thingy {
			marker = highlight.Sprint("yes")
		}
		fmt.Fprintf(w, "%s\t%s\t%d dBm\t%s\t%s\n", name, d.Address, d.RSSI, marker, services)
	}

	return w.Flush()
}

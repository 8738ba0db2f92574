package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/netfold/netfold/internal/aggregate"
	"github.com/netfold/netfold/internal/scanning"
	"github.com/netfold/netfold/internal/validate"
)

// timeRound is the display granularity for scan durations.
const timeRound = time.Millisecond

var (
	scanPorts   string
	scanType    string
	scanWorkers int
	scanTimeout int
	scanRaw     bool
)

// scanCmd represents the scan command.
var scanCmd = &cobra.Command{
	Use:   "scan [file]",
	Short: "Aggregate targets and port-scan them with nmap",
	Long: `Scan reads network descriptors from a file or stdin, aggregates them
into minimal CIDR blocks, and runs an nmap port scan over each block
concurrently. Aggregating first keeps the target list short and avoids
scanning the same address twice.`,
	Example: `  netfold scan targets.txt --ports 22,80,443
  netfold scan targets.txt --type version --workers 4
  cat targets.txt | netfold scan --ports 1-1000 --timeout 300`,
	Args: cobra.MaximumNArgs(1),
	Run:  runScan,
}

func init() {
	scanCmd.Flags().StringVar(&scanPorts, "ports", "",
		"port specification (e.g. '80,443' or '1-1000')")
	scanCmd.Flags().StringVar(&scanType, "type", "",
		"scan type: connect, udp, version")
	scanCmd.Flags().IntVar(&scanWorkers, "workers", 0,
		"number of targets scanned concurrently")
	scanCmd.Flags().IntVar(&scanTimeout, "timeout", 0,
		"scan timeout in seconds (0 = unbounded)")
	scanCmd.Flags().BoolVar(&scanRaw, "raw", false,
		"scan the input targets as-is, without aggregating first")

	for flag, key := range map[string]string{
		"ports":   "scanning.default_ports",
		"type":    "scanning.default_scan_type",
		"workers": "scanning.workers",
		"timeout": "scanning.timeout_sec",
	} {
		if err := viper.BindPFlag(key, scanCmd.Flags().Lookup(flag)); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to bind %s flag: %v\n", flag, err)
		}
	}

	rootCmd.AddCommand(scanCmd)
}

func runScan(cmd *cobra.Command, args []string) {
	lines, err := readInputLines(args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading input: %v\n", err)
		os.Exit(1)
	}
	if len(lines) == 0 {
		fmt.Fprintln(os.Stderr, "Error: no targets to scan")
		os.Exit(1)
	}

	targets, err := validate.NormalizeAll(lines)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if !scanRaw {
		engine := aggregate.New()
		targets, err = engine.Aggregate(targets)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error aggregating targets: %v\n", err)
			os.Exit(1)
		}
	}

	scanConfig := &scanning.Config{
		Targets:    targets,
		Ports:      viper.GetString("scanning.default_ports"),
		ScanType:   viper.GetString("scanning.default_scan_type"),
		TimeoutSec: viper.GetInt("scanning.timeout_sec"),
		Workers:    viper.GetInt("scanning.workers"),
	}

	result, err := scanning.Run(context.Background(), scanConfig)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: scan failed: %v\n", err)
		os.Exit(1)
	}

	displayScanResult(result)

	for target, targetErr := range result.TargetErrors {
		fmt.Fprintf(os.Stderr, "Warning: target %s failed: %v\n", target, targetErr)
	}
}

// displayScanResult prints per-host open ports as a table, then summary
// counts.
func displayScanResult(result *scanning.Result) {
	open := result.OpenPorts()
	if len(open) == 0 {
		fmt.Println("No open ports found.")
	} else {
		table := tablewriter.NewWriter(os.Stdout)
		table.Header("Host", "Port", "Protocol", "Service", "Version")
		for _, entry := range open {
			_ = table.Append([]string{
				entry.Host,
				strconv.Itoa(int(entry.Port.Number)),
				entry.Port.Protocol,
				entry.Port.Service,
				entry.Port.Version,
			})
		}
		_ = table.Render()
	}

	fmt.Printf("\nHosts: %d up, %d down, %d total  Duration: %s\n",
		result.Stats.Up, result.Stats.Down, result.Stats.Total, result.Duration.Round(timeRound))
}

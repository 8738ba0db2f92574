package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/netfold/netfold/internal/aggregate"
	"github.com/netfold/netfold/internal/export"
	"github.com/netfold/netfold/internal/logging"
	"github.com/netfold/netfold/internal/validate"
)

var (
	aggPermissivePrefix int
	aggSwapPrefix       int
	aggModes            string
	aggCSVPath          string
	aggTable            bool
	aggNoNormalize      bool
)

// aggregateCmd represents the aggregate command.
var aggregateCmd = &cobra.Command{
	Use:   "aggregate [file]",
	Short: "Aggregate a list of networks into minimal CIDR blocks",
	Long: `Aggregate reads IPv4 address and network descriptors, one per line,
from a file or stdin, and prints the minimal covering set of CIDR blocks.
Host addresses are normalized to /32 networks before aggregation.

Networks fully covered by a broader surviving network are dropped, and
sibling networks are united into their common supernet within the
configured search windows.`,
	Example: `  netfold aggregate targets.txt
  cat targets.txt | netfold aggregate
  netfold aggregate targets.txt --permissive-prefix 8 --modes horizontal,vertical,max
  netfold aggregate targets.txt --csv networks.csv`,
	Args: cobra.MaximumNArgs(1),
	Run:  runAggregate,
}

func init() {
	aggregateCmd.Flags().IntVar(&aggPermissivePrefix, "permissive-prefix", 1,
		"search-window bound for horizontal merges (1-32)")
	aggregateCmd.Flags().IntVar(&aggSwapPrefix, "swap-prefix", 1,
		"search-window bound for vertical merges (1-31)")
	aggregateCmd.Flags().StringVar(&aggModes, "modes", "",
		"comma-separated aggregation modes: horizontal, vertical, max")
	aggregateCmd.Flags().StringVar(&aggCSVPath, "csv", "",
		"write the surviving networks as CSV to the given path")
	aggregateCmd.Flags().BoolVar(&aggTable, "table", false,
		"render the surviving networks as a table")
	aggregateCmd.Flags().BoolVar(&aggNoNormalize, "no-normalize", false,
		"skip input normalization, require strict CIDR input")

	for flag, key := range map[string]string{
		"permissive-prefix": "aggregation.permissive_prefix",
		"swap-prefix":       "aggregation.swap_prefix",
		"modes":             "aggregation.modes",
	} {
		if err := viper.BindPFlag(key, aggregateCmd.Flags().Lookup(flag)); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to bind %s flag: %v\n", flag, err)
		}
	}

	rootCmd.AddCommand(aggregateCmd)
}

func runAggregate(cmd *cobra.Command, args []string) {
	lines, err := readInputLines(args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading input: %v\n", err)
		os.Exit(1)
	}
	if len(lines) == 0 {
		fmt.Fprintln(os.Stderr, "Error: no networks to aggregate")
		os.Exit(1)
	}

	engine, err := buildEngine()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if verbose {
		engine.SetObserver(aggregate.NewLogObserver(logging.Default()))
	}

	if !aggNoNormalize {
		lines, err = validate.NormalizeAll(lines)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}

	networks, err := engine.Aggregate(lines)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if aggCSVPath != "" {
		if err := export.WriteCSVFile(aggCSVPath, networks); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing CSV: %v\n", err)
			os.Exit(1)
		}
		fmt.Fprintf(os.Stderr, "Wrote %d networks to %s\n", len(networks), aggCSVPath)
		return
	}

	if aggTable {
		if err := export.RenderTable(os.Stdout, networks); err != nil {
			fmt.Fprintf(os.Stderr, "Error rendering table: %v\n", err)
			os.Exit(1)
		}
		return
	}

	for _, network := range networks {
		fmt.Println(network)
	}
}

// buildEngine constructs an aggregation engine from the effective
// configuration (config file overridden by flags).
func buildEngine() (*aggregate.Engine, error) {
	engine := aggregate.New()

	if err := engine.SetPermissivePrefix(viper.GetInt("aggregation.permissive_prefix")); err != nil {
		return nil, err
	}
	if err := engine.SetSwapPrefix(viper.GetInt("aggregation.swap_prefix")); err != nil {
		return nil, err
	}
	if modes := viper.GetString("aggregation.modes"); modes != "" {
		mode, err := aggregate.ParseMode(modes)
		if err != nil {
			return nil, err
		}
		if err := engine.SetMode(mode); err != nil {
			return nil, err
		}
	}
	return engine, nil
}

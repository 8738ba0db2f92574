package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/netfold/netfold/internal/validate"
)

var checkQuiet bool

// checkCmd represents the check command.
var checkCmd = &cobra.Command{
	Use:   "check [file]",
	Short: "Validate a list of network descriptors",
	Long: `Check reads descriptors from a file or stdin and reports, per line,
whether it is a valid IPv4 host address, a valid IPv4 network, or
invalid. The exit status is non-zero when any line is invalid.`,
	Example: `  netfold check targets.txt
  cat targets.txt | netfold check --quiet`,
	Args: cobra.MaximumNArgs(1),
	Run:  runCheck,
}

func init() {
	checkCmd.Flags().BoolVarP(&checkQuiet, "quiet", "q", false,
		"suppress per-line output, only set the exit status")
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) {
	lines, err := readInputLines(args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading input: %v\n", err)
		os.Exit(1)
	}

	invalid := 0
	for i, line := range lines {
		var kind string
		switch {
		case validate.IsNetwork(line):
			kind = "network"
		case validate.IsAddr(line):
			kind = "host"
		default:
			kind = "invalid"
			invalid++
		}
		if !checkQuiet {
			normalized := ""
			if kind != "invalid" {
				normalized, _ = validate.Normalize(line)
			}
			fmt.Printf("%4d  %-8s %-20s %s\n", i+1, kind, line, normalized)
		}
	}

	if invalid > 0 {
		fmt.Fprintf(os.Stderr, "%d invalid descriptor(s)\n", invalid)
		os.Exit(1)
	}
}

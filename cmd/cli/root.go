// Package cli provides command-line interface commands for netfold.
// This package implements the Cobra-based CLI structure with commands for
// aggregating network lists, scanning aggregated targets, and checking
// input files.
package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/netfold/netfold/internal/config"
	"github.com/netfold/netfold/internal/logging"
)

var (
	cfgFile string
	verbose bool

	// Configuration loaded during initialization; commands read their
	// defaults from it and let flags override.
	cfg = config.Default()
)

// Build information - these will be set by ldflags during build.
var (
	version   = "dev"
	commit    = "none"
	buildTime = "unknown"
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "netfold",
	Short: "CIDR network aggregation tool",
	Long: `Netfold compresses lists of IPv4 addresses and networks into the
fewest possible CIDR blocks covering the same address space, and can scan
the aggregated targets with nmap.`,
	Version: getVersion(),
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./netfold.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	if err := viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose")); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to bind verbose flag: %v\n", err)
	}
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName("netfold")
	}

	viper.AutomaticEnv()
	viper.SetEnvPrefix("NETFOLD")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setConfigDefaults()

	if err := viper.ReadInConfig(); err == nil {
		if verbose {
			fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
		}
	}

	initLogging()
}

// setConfigDefaults sets default values for configuration.
func setConfigDefaults() {
	defaults := config.Default()

	viper.SetDefault("aggregation.permissive_prefix", defaults.Aggregation.PermissivePrefix)
	viper.SetDefault("aggregation.swap_prefix", defaults.Aggregation.SwapPrefix)
	viper.SetDefault("aggregation.modes", defaults.Aggregation.Modes)

	viper.SetDefault("scanning.workers", defaults.Scanning.Workers)
	viper.SetDefault("scanning.default_ports", defaults.Scanning.DefaultPorts)
	viper.SetDefault("scanning.default_scan_type", defaults.Scanning.DefaultScanType)
	viper.SetDefault("scanning.timeout_sec", defaults.Scanning.TimeoutSec)

	viper.SetDefault("logging.level", defaults.Logging.Level)
	viper.SetDefault("logging.format", defaults.Logging.Format)
	viper.SetDefault("logging.output", defaults.Logging.Output)
}

// getVersion returns the version string.
func getVersion() string {
	return fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildTime)
}

// SetVersion sets the version information (called from main).
func SetVersion(v, c, bt string) {
	version = v
	commit = c
	buildTime = bt
	rootCmd.Version = getVersion()
}

// initLogging initializes structured logging based on configuration.
func initLogging() {
	loaded, err := config.Load(viper.ConfigFileUsed())
	if err != nil {
		logging.SetDefault(logging.NewDefault())
		fmt.Fprintf(os.Stderr, "Warning: failed to load configuration: %v\n", err)
		return
	}
	cfg = loaded

	logCfg := cfg.LoggingSettings()
	if verbose {
		logCfg.Level = logging.LevelDebug
	}

	logger, err := logging.New(logCfg)
	if err != nil {
		logger = logging.NewDefault()
		fmt.Fprintf(os.Stderr, "Warning: failed to initialize logging: %v\n", err)
	}
	logging.SetDefault(logger)
}

// readInputLines reads network descriptors from the file named by args[0],
// or from stdin when args is empty or names "-". Blank lines and lines
// starting with '#' are skipped.
func readInputLines(args []string) ([]string, error) {
	var reader io.Reader = os.Stdin
	if len(args) > 0 && args[0] != "-" {
		file, err := os.Open(args[0])
		if err != nil {
			return nil, err
		}
		defer file.Close()
		reader = file
	}

	var lines []string
	scanner := bufio.NewScanner(reader)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, line)
	}
	return lines, scanner.Err()
}

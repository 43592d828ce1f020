package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"trade-ledger-service/pkg/errors"
	"trade-ledger-service/pkg/logger"
)

var (
	cfgFile string
	verbose bool
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "tradeledger",
	Short: "Marketplace trade history tool",
	Long: `Tradeledger imports marketplace trade-history exports (CSV) into a
local ledger and reports on it. It normalizes inconsistent headers, date
formats and price representations into canonical transactions.

Examples:
  tradeledger import --file trades.csv
  tradeledger import --file trades.csv --output-format json --dry-run
  tradeledger report --game CS2 --type sale
  tradeledger version`,
	Version: getVersionString(),

	// the error handler in main owns error output
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (optional)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	// Bind flags to viper
	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
}

// initConfig reads in config file and ENV variables.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)

		if err := viper.ReadInConfig(); err != nil {
			cfgErr := errors.ConfigurationError(errors.CodeMissingConfig, "config", cfgFile, err)
			fmt.Fprintf(os.Stderr, "Error: %s\n", cfgErr.Error())
			os.Exit(cfgErr.GetExitCode())
		}

		if viper.GetBool("verbose") {
			fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
		}
	}

	// Read environment variables that match
	viper.SetEnvPrefix("TRADELEDGER")
	viper.AutomaticEnv()

	if viper.GetBool("verbose") {
		if log, err := logger.NewLogger(&logger.Config{
			Level:  logger.DebugLevel,
			Format: logger.TextFormat,
		}); err == nil {
			logger.SetGlobalLogger(log)
		}
	}
}

// SetVersionInfo sets the version information for the CLI
func SetVersionInfo(v, c, d string) {
	version = v
	commit = c
	date = d
	rootCmd.Version = getVersionString()
}

func getVersionString() string {
	if version == "dev" {
		return fmt.Sprintf("%s (commit %s, built %s)", version, commit, date)
	}
	return version
}

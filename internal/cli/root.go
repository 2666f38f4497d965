package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	verbose bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "claimsight",
	Short: "ClaimSight - Retrieval-grounded auto claim coverage decisions",
	Long: `ClaimSight turns a structured auto-insurance claim into a coverage
recommendation, grounded in the policy text that actually applies.

Each claim runs through a fixed workflow: the claim record is validated,
an LLM generates policy search queries, the policy index returns matching
passages plus the declaration page, and a second LLM pass synthesizes a
recommendation. The final covered/deductible/payout decision is derived
from that recommendation by a deterministic rule, never by the model.

ClaimSight is a decision aid, not an adjuster of record.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Display the version number and build information for ClaimSight.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("claimsight v0.1.0")
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.claimsight/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	// Bind flags to viper
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in config file and ENV variables
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		// Search for config in the claimsight home directory
		viper.AddConfigPath(configDir())
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// Read in environment variables that match CLAIMSIGHT_*
	viper.SetEnvPrefix("CLAIMSIGHT")
	viper.AutomaticEnv()

	// If a config file is found, read it in
	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// configDir returns the claimsight home directory, "." when the user home
// directory is unknown.
func configDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".claimsight")
}

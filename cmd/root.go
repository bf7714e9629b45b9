package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/sealmetrics/sealcheck/pkg/config"
)

const envPrefix = "SEALCHECK"

// NewCmdRoot creates a new root command
func NewCmdRoot(version string) *cobra.Command {
	var cfgFile string

	rootCmd := &cobra.Command{
		Use:   "sealcheck",
		Short: "sealcheck, the Sealmetrics API validator",
		Long: "sealcheck validates the endpoints of the Sealmetrics reporting API.\n" +
			"It calls every endpoint with a token and reports how it answered, either served as an API or as a one-shot check.",
		Version:       version,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig(cfgFile)
		},
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "path to an optional yaml config file")
	newConfigFlag("upstream.baseUrl", "upstreamUrl").String(rootCmd, config.DefaultBaseURL, "upstream: The base url of the validated reporting API")

	return rootCmd
}

// initConfig reads the config file and the environment into viper.
// Flags take precedence over the environment, which takes precedence over the file.
func initConfig(cfgFile string) error {
	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if cfgFile == "" {
		return nil
	}
	viper.SetConfigFile(cfgFile)
	if err := viper.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config file %s: %w", cfgFile, err)
	}
	return nil
}

// Execute adds all child commands to the root command
// and executes the cmd tree
func Execute(version string) {
	cmd := NewCmdRoot(version)
	cmd.AddCommand(NewCmdRun())
	cmd.AddCommand(NewCmdCheck())
	cmd.AddCommand(NewCmdHealthz())
	cmd.AddCommand(NewCmdGenDocs(cmd))

	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

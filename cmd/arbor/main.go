package main

import (
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type rootCmdConfig struct {
	verbose    bool
	configFile string
	logger     *zap.Logger
}

func main() {
	if err := cliParser().Execute(); err != nil {
		os.Exit(1)
	}
}

func cliParser() *cobra.Command {
	config := &rootCmdConfig{}
	rootCmd := &cobra.Command{
		Use:   "arbor",
		Short: "arbor is a tool to grow decision, cluster and regression trees",
		Long:  `A tool to grow binary trees that classify, cluster or regress your data, test them, and use them to make predictions`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logger, err := newLogger(config.verbose)
			if err != nil {
				return err
			}
			config.logger = logger
			return bindConfig(cmd, config.configFile)
		},
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().BoolVarP(&(config.verbose), "verbose", "v", false, "")
	rootCmd.PersistentFlags().StringVar(&(config.configFile), "config", "", "path to a YAML, TOML or JSON file with values for the command flags")
	rootCmd.AddCommand(versionCmd(), growCmd(config), testCmd(config), predictCmd(config), treeCmd(config), setCmd(config), splitCmd(config))
	return rootCmd
}

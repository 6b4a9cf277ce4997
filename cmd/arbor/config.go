package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

/*
bindConfig sets the flags of the given command that were not set on the
command line from ARBOR_* environment variables or, failing that, from the
given config file. Dashes in flag names become underscores in environment
variable names.
*/
func bindConfig(cmd *cobra.Command, configFile string) error {
	v := viper.New()
	v.SetEnvPrefix("arbor")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("reading config file %s: %v", configFile, err)
		}
	}
	var err error
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if err != nil || f.Changed || f.Name == "config" || !v.IsSet(f.Name) {
			return
		}
		if serr := cmd.Flags().Set(f.Name, v.GetString(f.Name)); serr != nil {
			err = fmt.Errorf("setting %s from configuration: %v", f.Name, serr)
		}
	})
	return err
}

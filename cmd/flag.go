package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// configFlag is a persistent cli flag whose value backs a viper configuration key
type configFlag struct {
	key  string
	name string
}

func newConfigFlag(key, name string) configFlag {
	return configFlag{key: key, name: name}
}

func (f configFlag) String(cmd *cobra.Command, value, usage string) {
	cmd.PersistentFlags().String(f.name, value, usage)
	f.bind(cmd)
}

func (f configFlag) StringP(cmd *cobra.Command, shorthand, value, usage string) {
	cmd.PersistentFlags().StringP(f.name, shorthand, value, usage)
	f.bind(cmd)
}

func (f configFlag) StringSlice(cmd *cobra.Command, value []string, usage string) {
	cmd.PersistentFlags().StringSlice(f.name, value, usage)
	f.bind(cmd)
}

// bind panics if the flag is not defined on cmd
func (f configFlag) bind(cmd *cobra.Command) {
	if err := viper.BindPFlag(f.key, cmd.PersistentFlags().Lookup(f.name)); err != nil {
		panic(err)
	}
}

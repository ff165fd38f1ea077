// Package cmd is for command line interactions with the ScaffoQA
// application
package cmd

import (
	"log"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// stderr is for logging to Stderr (without an annoying timestamp)
var stderr = log.New(os.Stderr, "", 0)

// RootCmd represents the base command when called without any subcommands.
var RootCmd = &cobra.Command{
	Use: "scaffoqa",
	Short: `Reformulate metagenomic de-novo assembly as QUBO problems.
Build unitig overlap graphs, decompose them into solver-sized clusters,
encode path selection as QUBO matrices and decode solutions into contigs`,
	Version: "0.1.0",
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		log.Fatalf("%v", err)
	}
}

func init() {
	RootCmd.PersistentFlags().String("settings", "", "Path to a settings file (YAML)")

	cobra.OnInitialize(initSettings)
}

// initSettings loads the optional settings file into Viper before any
// command runs
func initSettings() {
	path, err := RootCmd.PersistentFlags().GetString("settings")
	if err != nil || path == "" {
		return
	}
	viper.SetConfigFile(path)
	if err := viper.ReadInConfig(); err != nil {
		stderr.Fatalf("read settings file %s: %v", path, err)
	}
}

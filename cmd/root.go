package cmd

import (
	"fmt"
	"os"

	"github.com/gitbbrid/yiiredis/cmd/kv"
	"github.com/gitbbrid/yiiredis/cmd/util"
	"github.com/spf13/cobra"
)

const (
	Version = "1.2.0"
)

var (

	// RootCmd represents the base command when called without any subcommands
	RootCmd = &cobra.Command{
		Use:   "yiiredis",
		Short: "replica-aware key-value store client",
		Long: fmt.Sprintf(`yiiredis (v%s)

A client for Redis-compatible stores that hides a primary and its read
replicas behind one logical connection. Writes go to the primary, read-only
commands are spread across the replicas.`, Version),
		SilenceUsage: true,
	}
	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of yiiredis",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("yiiredis v%s\n", Version)
		},
	}
)

func init() {
	// Add Commands
	RootCmd.AddCommand(kv.KeyValueCommands)
	RootCmd.AddCommand(versionCmd)

	// Add Flags
	key := "transport"
	RootCmd.PersistentFlags().String(key, "redis", util.WrapString("store backend to use (redis, mem)"))
	key = "log-level"
	RootCmd.PersistentFlags().String(key, "warn", util.WrapString("level at which logs will be written to stderr (debug, info, warn, error)"))
	key = "config"
	RootCmd.PersistentFlags().String(key, "", util.WrapString("optional YAML/JSON/TOML file with the same keys as the flags"))
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

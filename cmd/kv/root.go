package kv

import (
	"context"
	"os"

	"github.com/VictoriaMetrics/metrics"
	"github.com/gitbbrid/yiiredis/cmd/util"
	"github.com/gitbbrid/yiiredis/lib/command"
	"github.com/gitbbrid/yiiredis/lib/common"
	"github.com/gitbbrid/yiiredis/lib/router"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	Logger = logger.GetLogger("cli")

	clientConf *common.ClientConfig
	rtr        *router.ReplicaRouter
	executor   *command.Executor

	// KeyValueCommands represents the KV command group
	KeyValueCommands = &cobra.Command{
		Use:                "kv",
		Short:              "Perform key-value store operations through the router",
		PersistentPreRunE:  setupRouter,
		PersistentPostRunE: teardownRouter,
	}
)

func init() {
	// Initialize viper
	cobra.OnInitialize(util.InitClientConfig)

	// Add topology and routing flags to the KV command
	util.SetupRouterFlags(KeyValueCommands)

	// Add subcommands
	KeyValueCommands.AddCommand(setCmd)
	KeyValueCommands.AddCommand(getCmd)
	KeyValueCommands.AddCommand(delCmd)
	KeyValueCommands.AddCommand(hasCmd)
	KeyValueCommands.AddCommand(execCmd)
	KeyValueCommands.AddCommand(classifyCmd)
	KeyValueCommands.AddCommand(topologyCmd)
	KeyValueCommands.AddCommand(perfTestCmd)
}

// setupRouter reads the configuration and creates the router and executor.
// The router connects lazily, so commands that never touch the store open no connection.
func setupRouter(cmd *cobra.Command, _ []string) error {
	// Bind command flags to viper
	if err := util.BindCommandFlags(cmd); err != nil {
		return err
	}
	if err := util.ReadConfigFile(); err != nil {
		return err
	}

	conf, err := util.GetClientConfig()
	if err != nil {
		return err
	}
	if err := common.InitLoggers(conf.LogLevel); err != nil {
		return err
	}
	clientConf = conf

	rtr, executor, err = util.NewRouter(context.Background(), conf)
	return err
}

// teardownRouter releases all connections and optionally prints the metrics
func teardownRouter(_ *cobra.Command, _ []string) error {
	if viper.GetBool("metrics") {
		metrics.WritePrometheus(os.Stdout, false)
	}
	if rtr != nil {
		if err := rtr.Close(); err != nil {
			Logger.Warningf("Failed to close connections: %v", err)
		}
	}
	return nil
}

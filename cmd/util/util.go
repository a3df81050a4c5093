package util

import (
	"context"
	"fmt"
	"strings"

	"github.com/gitbbrid/yiiredis/lib/command"
	"github.com/gitbbrid/yiiredis/lib/common"
	"github.com/gitbbrid/yiiredis/lib/conn"
	"github.com/gitbbrid/yiiredis/lib/conn/memconn"
	"github.com/gitbbrid/yiiredis/lib/conn/redisconn"
	"github.com/gitbbrid/yiiredis/lib/router"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	// Wrap is the number of characters to Wrap the help text at
	Wrap int = 50
)

// WrapString wraps a string at Wrap characters
func WrapString(text string) string {
	var wrappedLines []string
	var currentLine strings.Builder
	lineWidth := 0

	for _, word := range strings.Fields(text) {
		if lineWidth > 0 && lineWidth+1+len(word) > Wrap {
			wrappedLines = append(wrappedLines, currentLine.String())
			currentLine.Reset()
			lineWidth = 0
		}
		if lineWidth > 0 {
			currentLine.WriteString(" ")
			lineWidth++
		}
		currentLine.WriteString(word)
		lineWidth += len(word)
	}
	if currentLine.Len() > 0 {
		wrappedLines = append(wrappedLines, currentLine.String())
	}

	return strings.Join(wrappedLines, "\n")
}

// SetupRouterFlags adds the topology and routing flags to a command
func SetupRouterFlags(cmd *cobra.Command) {
	key := "primary"
	cmd.PersistentFlags().String(key, "localhost:6379", WrapString("The primary (write) endpoint as host[:port] or a unix socket path"))

	key = "secondaries"
	cmd.PersistentFlags().StringSlice(key, nil, WrapString("Comma-separated list of read replica endpoints. Without replicas, reads are served by the primary"))

	key = "timeout"
	cmd.PersistentFlags().Int(key, 2, WrapString("Connect timeout in seconds for every endpoint"))

	key = "auto-connect"
	cmd.PersistentFlags().Bool(key, false, WrapString("Connect the whole topology before the first command instead of lazily"))

	key = "option"
	cmd.PersistentFlags().StringSlice(key, nil, WrapString("Connection options applied after connect, as key=value (e.g. database=1,clientName=app)"))

	key = "replica-commands"
	cmd.PersistentFlags().StringSlice(key, nil, WrapString("Override the list of commands that may be served by a replica (comma-separated)"))

	key = "metrics"
	cmd.PersistentFlags().Bool(key, false, WrapString("Print the routing metrics in Prometheus format after the command"))
}

// InitClientConfig initializes configuration from environment variables
func InitClientConfig() {
	// load env files
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	// initialize viper
	viper.SetEnvPrefix("yiiredis")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv() // read in environment variables that match
}

// ReadConfigFile loads the file named by the config flag, if any
func ReadConfigFile() error {
	path := viper.GetString("config")
	if path == "" {
		return nil
	}
	viper.SetConfigFile(path)
	if err := viper.ReadInConfig(); err != nil {
		return fmt.Errorf("read config file %s: %w", path, err)
	}
	return nil
}

// GetClientConfig reads the client configuration from viper
func GetClientConfig() (*common.ClientConfig, error) {
	primary, err := conn.ParseEndpoint(viper.GetString("primary"))
	if err != nil {
		return nil, fmt.Errorf("primary: %w", err)
	}

	secondaries, err := common.ParseEndpointList(joinList("secondaries"))
	if err != nil {
		return nil, fmt.Errorf("secondaries: %w", err)
	}

	options, err := common.ParseOptions(strings.Split(joinList("option"), ","))
	if err != nil {
		return nil, err
	}
	options[conn.OptTimeout] = viper.GetInt("timeout")
	options[conn.OptAutoConnect] = viper.GetBool("auto-connect")

	var replicaCommands []string
	for _, name := range strings.Split(joinList("replica-commands"), ",") {
		if name = strings.TrimSpace(name); name != "" {
			replicaCommands = append(replicaCommands, name)
		}
	}

	conf := &common.ClientConfig{
		Transport: viper.GetString("transport"),
		Topology: router.Topology{
			Primary:     primary,
			Secondaries: secondaries,
		},
		Options:         options,
		ReplicaCommands: replicaCommands,
		LogLevel:        viper.GetString("log-level"),
	}

	if err := conf.Validate(); err != nil {
		return nil, err
	}
	return conf, nil
}

// joinList returns a list setting as one comma-separated string, no matter if it
// was given as a flag, an env variable or a YAML list
func joinList(key string) string {
	return strings.Join(viper.GetStringSlice(key), ",")
}

// GetConnector creates the connector named by the transport setting
func GetConnector(name string) (conn.IConnector, error) {
	switch name {
	case "redis":
		return redisconn.NewConnector(), nil
	case "mem":
		return memconn.NewConnector(), nil
	default:
		return nil, fmt.Errorf("invalid transport %s (expected redis or mem)", name)
	}
}

// NewRouter creates the router and the command executor for the configuration
func NewRouter(ctx context.Context, conf *common.ClientConfig) (*router.ReplicaRouter, *command.Executor, error) {
	connector, err := GetConnector(conf.Transport)
	if err != nil {
		return nil, nil, err
	}

	r, err := router.New(ctx, router.Config{
		Topology:  conf.Topology,
		Options:   conf.Options,
		Connector: connector,
	})
	if err != nil {
		return nil, nil, err
	}

	table := command.DefaultTable()
	if len(conf.ReplicaCommands) > 0 {
		table = command.NewTable(conf.ReplicaCommands...)
	}

	return r, command.NewExecutor(r, table), nil
}

// BindCommandFlags binds a command's flags to viper
func BindCommandFlags(cmd *cobra.Command) error {
	return viper.BindPFlags(cmd.Flags())
}

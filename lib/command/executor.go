package command

import (
	"context"
	"fmt"

	"github.com/VictoriaMetrics/metrics"
	"github.com/gitbbrid/yiiredis/lib/conn"
	"github.com/gitbbrid/yiiredis/lib/router"
	"github.com/lni/dragonboat/v4/logger"
)

var (
	Logger = logger.GetLogger("command")

	primaryCommandsTotal     = metrics.NewCounter(`yiiredis_command_total{class="primary"}`)
	replicaCommandsTotal     = metrics.NewCounter(`yiiredis_command_total{class="replica"}`)
	unsupportedCommandsTotal = metrics.NewCounter(`yiiredis_command_unsupported_total`)
)

// IConnectionProvider hands out the connection serving a connection class.
// router.ReplicaRouter implements it.
type IConnectionProvider interface {
	GetConnection(ctx context.Context, class router.ConnectionClass) (conn.IStoreConnection, error)
}

// Executor dispatches store commands to the primary or a replica according to a Table.
type Executor struct {
	provider IConnectionProvider
	table    *Table
}

// NewExecutor creates an executor. A nil table uses DefaultTable.
func NewExecutor(provider IConnectionProvider, table *Table) *Executor {
	if table == nil {
		table = DefaultTable()
	}
	return &Executor{
		provider: provider,
		table:    table,
	}
}

// Table returns the classification table of the executor.
func (e *Executor) Table() *Table {
	return e.table
}

// Execute classifies the command, obtains the matching connection (connecting
// lazily) and forwards the command. Commands outside the connection's
// capability surface fail with an unsupported operation error.
func (e *Executor) Execute(ctx context.Context, name string, args ...any) (any, error) {
	return e.ExecuteOn(ctx, e.table.Classify(name), name, args...)
}

// ExecuteOn is Execute with an explicit connection class, e.g. to read a
// value from the primary right after writing it.
func (e *Executor) ExecuteOn(ctx context.Context, class router.ConnectionClass, name string, args ...any) (any, error) {
	if name == "" {
		return nil, conn.NewUnsupportedOperationError(name)
	}

	c, err := e.provider.GetConnection(ctx, class)
	if err != nil {
		return nil, err
	}

	if !c.Supports(name) {
		unsupportedCommandsTotal.Inc()
		return nil, conn.NewUnsupportedOperationError(name)
	}

	if class == router.ClassReplica {
		replicaCommandsTotal.Inc()
	} else {
		primaryCommandsTotal.Inc()
	}
	Logger.Debugf("%s -> %s (%s)", name, c.Endpoint(), class)

	return c.Do(ctx, name, args...)
}

// --------------------------------------------------------------------------
// Typed helpers
// --------------------------------------------------------------------------

// Get returns the value of key. The boolean reports whether the key was found.
func (e *Executor) Get(ctx context.Context, key string) (string, bool, error) {
	resp, err := e.Execute(ctx, "get", key)
	if err != nil || resp == nil {
		return "", false, err
	}
	return fmt.Sprint(resp), true, nil
}

// Set stores value under key.
func (e *Executor) Set(ctx context.Context, key string, value string) error {
	_, err := e.Execute(ctx, "set", key, value)
	return err
}

// Del deletes the keys and returns how many existed.
func (e *Executor) Del(ctx context.Context, keys ...string) (int64, error) {
	resp, err := e.Execute(ctx, "del", toArgs(keys)...)
	if err != nil {
		return 0, err
	}
	return toInt64(resp)
}

// Exists returns how many of the keys exist.
func (e *Executor) Exists(ctx context.Context, keys ...string) (int64, error) {
	resp, err := e.Execute(ctx, "exists", toArgs(keys)...)
	if err != nil {
		return 0, err
	}
	return toInt64(resp)
}

func toArgs(keys []string) []any {
	args := make([]any, len(keys))
	for i, k := range keys {
		args[i] = k
	}
	return args
}

func toInt64(resp any) (int64, error) {
	switch v := resp.(type) {
	case int64:
		return v, nil
	case int:
		return int64(v), nil
	default:
		return 0, fmt.Errorf("unexpected reply type %T", resp)
	}
}

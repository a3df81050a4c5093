package router

import (
	"context"
	"fmt"
	"strings"

	"github.com/gitbbrid/yiiredis/lib/conn"
)

// --------------------------------------------------------------------------
// Connection Classes
// --------------------------------------------------------------------------

// ConnectionClass is the routing tag of an operation.
type ConnectionClass int

const (
	// ClassPrimary routes to the single write-capable endpoint.
	ClassPrimary ConnectionClass = iota
	// ClassReplica routes to one of the secondaries (or the primary if there are none).
	ClassReplica
)

// String implements fmt.Stringer.
func (c ConnectionClass) String() string {
	switch c {
	case ClassPrimary:
		return "primary"
	case ClassReplica:
		return "replica"
	default:
		return fmt.Sprintf("ConnectionClass(%d)", int(c))
	}
}

// ParseConnectionClass parses "primary"/"master" or "replica"/"slave"/"secondary".
func ParseConnectionClass(s string) (ConnectionClass, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "primary", "master":
		return ClassPrimary, nil
	case "replica", "slave", "secondary":
		return ClassReplica, nil
	default:
		return 0, fmt.Errorf("invalid connection class %q (expected primary or replica)", s)
	}
}

// --------------------------------------------------------------------------
// Router State
// --------------------------------------------------------------------------

// State is the connect state of a router.
type State int32

const (
	StateUnconnected State = iota // No connect sequence has run yet.
	StateConnecting               // A connect sequence is running.
	StateConnected                // The whole topology is connected.
	StateFailed                   // The connect sequence failed, no retry is attempted.
)

// String implements fmt.Stringer.
func (s State) String() string {
	switch s {
	case StateUnconnected:
		return "unconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

// --------------------------------------------------------------------------
// Interface Definition
// --------------------------------------------------------------------------

// IRouter hides a primary and its replicas behind one logical connection.
type IRouter interface {
	// Connect opens the primary and then every secondary. It is a no-op once connected
	// and returns the original error after a failed connect sequence.
	Connect(ctx context.Context) error
	// GetConnection returns the connection serving the given class, connecting first if needed.
	GetConnection(ctx context.Context, class ConnectionClass) (conn.IStoreConnection, error)
	// IsConnected reports whether the whole topology is connected.
	IsConnected() bool
	// Close releases every connection opened by the router.
	Close() error
}

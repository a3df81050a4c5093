package memconn

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/gitbbrid/yiiredis/lib/conn"
	"github.com/puzpuzpuz/xsync/v3"
)

var _ conn.IConnector = (*Connector)(nil)

// Connector opens connections to in-process stores. Every distinct endpoint
// address gets its own store, shared by all connections to that address.
type Connector struct {
	servers     *xsync.MapOf[string, *server]
	unreachable *xsync.MapOf[string, struct{}]
	connects    atomic.Int64
}

// NewConnector creates a connector with no stores.
func NewConnector() *Connector {
	return &Connector{
		servers:     xsync.NewMapOf[string, *server](),
		unreachable: xsync.NewMapOf[string, struct{}](),
	}
}

// SetUnreachable makes every following connect to the endpoint fail (or succeed again if down is false).
func (c *Connector) SetUnreachable(endpoint conn.EndpointConfig, down bool) {
	if down {
		c.unreachable.Store(endpoint.Address(), struct{}{})
	} else {
		c.unreachable.Delete(endpoint.Address())
	}
}

// Connects returns the number of connect attempts seen so far.
func (c *Connector) Connects() int64 {
	return c.connects.Load()
}

// --------------------------------------------------------------------------
// Interface Methods (docu see conn.IConnector)
// --------------------------------------------------------------------------

func (c *Connector) GetName() string {
	return "mem"
}

func (c *Connector) Connect(ctx context.Context, endpoint conn.EndpointConfig) (conn.IStoreConnection, error) {
	c.connects.Add(1)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if _, down := c.unreachable.Load(endpoint.Address()); down {
		return nil, fmt.Errorf("connection refused")
	}
	srv, _ := c.servers.LoadOrCompute(endpoint.Address(), newServer)
	return &storeConnection{
		endpoint: endpoint,
		server:   srv,
	}, nil
}

// --------------------------------------------------------------------------
// Store Connection
// --------------------------------------------------------------------------

type storeConnection struct {
	endpoint   conn.EndpointConfig
	server     *server
	dbIndex    atomic.Int64
	clientName atomic.Value
	closed     atomic.Bool
}

func (s *storeConnection) Endpoint() conn.EndpointConfig {
	return s.endpoint
}

func (s *storeConnection) SetOption(_ context.Context, key string, value any) error {
	switch key {
	case "database", "db":
		var n int
		switch v := value.(type) {
		case int:
			n = v
		case string:
			parsed, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("option %s: %w", key, err)
			}
			n = parsed
		default:
			return fmt.Errorf("option %s must be an integer, got %T", key, value)
		}
		if n < 0 {
			return fmt.Errorf("option %s must not be negative", key)
		}
		s.dbIndex.Store(int64(n))
		return nil
	case "clientName":
		name, ok := value.(string)
		if !ok {
			return fmt.Errorf("option %s must be a string, got %T", key, value)
		}
		s.clientName.Store(name)
		return nil
	default:
		return fmt.Errorf("unknown option %s", key)
	}
}

// ClientName returns the name set with the clientName option.
func (s *storeConnection) ClientName() string {
	name, _ := s.clientName.Load().(string)
	return name
}

func (s *storeConnection) Supports(command string) bool {
	_, ok := handlers[strings.ToLower(command)]
	return ok
}

func (s *storeConnection) Do(_ context.Context, command string, args ...any) (any, error) {
	if s.closed.Load() {
		return nil, fmt.Errorf("connection to %s is closed", s.endpoint)
	}
	h, ok := handlers[strings.ToLower(command)]
	if !ok {
		return nil, conn.NewUnsupportedOperationError(command)
	}
	if len(args) < h.minArgs || (h.maxArgs >= 0 && len(args) > h.maxArgs) {
		return nil, fmt.Errorf("ERR wrong number of arguments for '%s' command", strings.ToLower(command))
	}
	strArgs := make([]string, len(args))
	for i, a := range args {
		strArgs[i] = toString(a)
	}
	return h.fn(s.server.db(int(s.dbIndex.Load())), strArgs)
}

func (s *storeConnection) Close() error {
	s.closed.Store(true)
	return nil
}

// toString renders an argument the way it would be sent on the wire
func toString(a any) string {
	switch v := a.(type) {
	case string:
		return v
	case []byte:
		return string(v)
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

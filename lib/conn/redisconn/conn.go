package redisconn

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/gitbbrid/yiiredis/lib/conn"
	"github.com/redis/go-redis/v9"
)

// connector implements the conn.IConnector interface using go-redis
type connector struct{}

// NewConnector creates a connector that opens one pinned go-redis connection per endpoint.
func NewConnector() conn.IConnector {
	return &connector{}
}

// --------------------------------------------------------------------------
// Interface Methods (docu see conn.IConnector)
// --------------------------------------------------------------------------

func (c *connector) GetName() string {
	return "redis"
}

func (c *connector) Connect(ctx context.Context, endpoint conn.EndpointConfig) (conn.IStoreConnection, error) {
	client := redis.NewClient(&redis.Options{
		Network:      endpoint.Network(),
		Addr:         endpoint.Address(),
		DialTimeout:  endpoint.Timeout,
		ReadTimeout:  endpoint.Timeout,
		WriteTimeout: endpoint.Timeout,
		PoolSize:     1,
		MaxRetries:   -1, // retry policy belongs to the caller
		Protocol:     2,  // RESP2 keeps replies flat (hgetall is a []any, not a map)
	})
	cn := client.Conn()

	pingCtx, cancel := context.WithTimeout(ctx, endpoint.Timeout)
	defer cancel()
	if err := cn.Ping(pingCtx).Err(); err != nil && !isServerReply(err) {
		_ = cn.Close()
		_ = client.Close()
		return nil, err
	}

	return &storeConnection{
		endpoint: endpoint,
		client:   client,
		cn:       cn,
	}, nil
}

// isServerReply reports whether the error is a reply sent by the server (e.g. NOAUTH).
// Such a reply proves that the connection itself is established.
func isServerReply(err error) bool {
	var rerr redis.Error
	return errors.As(err, &rerr)
}

// --------------------------------------------------------------------------
// Store Connection
// --------------------------------------------------------------------------

// storeConnection is a single pinned connection. go-redis connections are not
// safe for concurrent use, so every round trip holds mu.
type storeConnection struct {
	endpoint conn.EndpointConfig
	client   *redis.Client
	cn       *redis.Conn
	mu       sync.Mutex
}

func (s *storeConnection) Endpoint() conn.EndpointConfig {
	return s.endpoint
}

func (s *storeConnection) SetOption(ctx context.Context, key string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch key {
	case "database", "db":
		db, err := toInt(value)
		if err != nil {
			return fmt.Errorf("option %s: %w", key, err)
		}
		return s.cn.Select(ctx, db).Err()
	case conn.OptPassword:
		pw, err := toString(value)
		if err != nil {
			return fmt.Errorf("option %s: %w", key, err)
		}
		return s.cn.Auth(ctx, pw).Err()
	case "clientName":
		name, err := toString(value)
		if err != nil {
			return fmt.Errorf("option %s: %w", key, err)
		}
		return s.cn.ClientSetName(ctx, name).Err()
	default:
		return fmt.Errorf("unknown option %s", key)
	}
}

func (s *storeConnection) Supports(command string) bool {
	_, ok := commands[strings.ToLower(command)]
	return ok
}

func (s *storeConnection) Do(ctx context.Context, command string, args ...any) (any, error) {
	cmdArgs := make([]any, 0, len(args)+1)
	cmdArgs = append(cmdArgs, command)
	cmdArgs = append(cmdArgs, args...)
	cmd := redis.NewCmd(ctx, cmdArgs...)

	s.mu.Lock()
	_ = s.cn.Process(ctx, cmd)
	s.mu.Unlock()

	val, err := cmd.Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	return val, err
}

func (s *storeConnection) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	err := s.cn.Close()
	if cerr := s.client.Close(); err == nil {
		err = cerr
	}
	return err
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

// toInt converts an option value to an int
func toInt(value any) (int, error) {
	switch v := value.(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case uint64:
		return int(v), nil
	case string:
		return strconv.Atoi(v)
	default:
		return 0, fmt.Errorf("expected an integer, got %T", value)
	}
}

// toString converts an option value to a string. Numbers are accepted since
// parsed option values like "1234" arrive as ints.
func toString(value any) (string, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case int:
		return strconv.Itoa(v), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	default:
		return "", fmt.Errorf("expected a string, got %T", value)
	}
}

package conn

import "context"

// --------------------------------------------------------------------------
// Interface Definitions
// --------------------------------------------------------------------------

// IStoreConnection is a single live connection to one store endpoint.
// The wire protocol is owned by the implementation; callers only see the
// generic command surface.
type IStoreConnection interface {
	// Endpoint returns the endpoint the connection was opened against.
	Endpoint() EndpointConfig
	// SetOption applies a post-connect option to the connection.
	// Implementations return an error for options they do not understand.
	SetOption(ctx context.Context, key string, value any) error
	// Supports reports whether the command name is part of the connection's capability surface.
	Supports(command string) bool
	// Do sends a command and returns the decoded reply: string, int64, nil or
	// []any for arrays (field/value pairs for hgetall).
	// A missing key is reported as a nil value and a nil error.
	Do(ctx context.Context, command string, args ...any) (any, error)
	// Close releases the connection.
	Close() error
}

// IConnector opens connections for one kind of backend (e.g. "redis", "mem").
type IConnector interface {
	// GetName returns the name of the backend.
	GetName() string
	// Connect establishes a single connection to the endpoint, bounded by endpoint.Timeout.
	Connect(ctx context.Context, endpoint EndpointConfig) (IStoreConnection, error)
}

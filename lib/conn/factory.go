package conn

import (
	"context"
	"fmt"

	"github.com/lni/dragonboat/v4/logger"
)

var (
	Logger = logger.GetLogger("conn")
)

// Open opens a single connection to the endpoint with the given connector and
// applies every option to it. The endpoint must already carry its defaults
// (see EndpointConfig.WithDefaults).
//
// A failed connect is returned as a connection error naming the endpoint. No retry is performed.
// An option the connection rejects closes the connection and is returned as a configuration error.
func Open(ctx context.Context, connector IConnector, endpoint EndpointConfig, options Options) (IStoreConnection, error) {
	if connector == nil {
		return nil, NewConfigurationError("no connector configured")
	}
	if err := endpoint.Validate(); err != nil {
		return nil, err
	}

	c, err := connector.Connect(ctx, endpoint)
	if err != nil {
		Logger.Errorf("Failed to connect to %s using %s: %v", endpoint, connector.GetName(), err)
		return nil, NewConnectionError(endpoint, err)
	}

	for _, key := range options.Keys() {
		if err := c.SetOption(ctx, key, options[key]); err != nil {
			_ = c.Close()
			return nil, &Error{
				Code:     RetCConfigurationError,
				Endpoint: endpoint.Address(),
				Msg:      fmt.Sprintf("failed to set option %s", key),
				Err:      err,
			}
		}
	}

	Logger.Debugf("Connected to %s using %s (%d options)", endpoint, connector.GetName(), len(options))
	return c, nil
}

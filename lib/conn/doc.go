// Package conn defines the connection capability the router is built on and
// the factory that opens single connections.
//
// Key Components:
//
//   - IStoreConnection / IConnector: A live connection to one endpoint and the
//     backend that opens it. See the redisconn and memconn packages.
//
//   - Open: Connects one endpoint and applies every connection option to it.
//
//   - EndpointConfig / Options: Endpoint identity with defaults (port 6379,
//     2 second timeout) and the option map with its reserved keys
//     (autoConnect, timeout).
//
//   - Error: Typed errors with return codes. Use errors.Is with
//     ErrConfiguration, ErrConnection or ErrUnsupportedOperation.
package conn

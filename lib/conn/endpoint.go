package conn

import (
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"
)

const (
	// DefaultPort is the standard port of the store.
	DefaultPort = 6379
	// DefaultTimeout is used when neither the endpoint nor the options carry a timeout.
	DefaultTimeout = 2 * time.Second
)

// EndpointConfig identifies one store endpoint.
// A Host starting with "/" is a unix socket path, the port is ignored in that case.
type EndpointConfig struct {
	Host    string        `yaml:"host" json:"host" mapstructure:"host"`
	Port    int           `yaml:"port" json:"port" mapstructure:"port"`
	Timeout time.Duration `yaml:"timeout" json:"timeout" mapstructure:"timeout"`
}

// WithDefaults returns a copy with the default port and the given timeout applied
// where the endpoint does not define them. A non-positive timeout falls back to DefaultTimeout.
func (e EndpointConfig) WithDefaults(timeout time.Duration) EndpointConfig {
	if e.Port <= 0 {
		e.Port = DefaultPort
	}
	if e.Timeout <= 0 {
		e.Timeout = timeout
	}
	if e.Timeout <= 0 {
		e.Timeout = DefaultTimeout
	}
	return e
}

// IsUnixSocket reports whether the endpoint refers to a unix socket.
func (e EndpointConfig) IsUnixSocket() bool {
	return strings.HasPrefix(e.Host, "/")
}

// Network returns the network name to dial ("tcp" or "unix").
func (e EndpointConfig) Network() string {
	if e.IsUnixSocket() {
		return "unix"
	}
	return "tcp"
}

// Address returns the dial address of the endpoint.
func (e EndpointConfig) Address() string {
	if e.IsUnixSocket() {
		return e.Host
	}
	return net.JoinHostPort(e.Host, strconv.Itoa(e.Port))
}

// Validate checks the constraints the connection factory relies on.
func (e EndpointConfig) Validate() error {
	if e.Host == "" {
		return NewConfigurationError("endpoint host is required")
	}
	if e.Port <= 0 {
		return NewConfigurationError(fmt.Sprintf("endpoint %s: port must be positive", e.Host))
	}
	if e.Timeout <= 0 {
		return NewConfigurationError(fmt.Sprintf("endpoint %s: timeout must be positive", e.Host))
	}
	return nil
}

// String implements fmt.Stringer.
func (e EndpointConfig) String() string {
	return e.Address()
}

// ParseEndpoint parses "host", "host:port", "[ipv6]:port" or "/path/to.sock".
// Missing ports are left at zero so that WithDefaults can fill them in.
func ParseEndpoint(s string) (EndpointConfig, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return EndpointConfig{}, NewConfigurationError("empty endpoint")
	}
	if strings.HasPrefix(s, "/") {
		return EndpointConfig{Host: s}, nil
	}

	host, portStr, err := net.SplitHostPort(s)
	if err != nil {
		// no port given
		if strings.HasPrefix(s, "[") && strings.HasSuffix(s, "]") {
			return EndpointConfig{Host: s[1 : len(s)-1]}, nil
		}
		if strings.Count(s, ":") > 1 && !strings.HasPrefix(s, "[") {
			// bare ipv6 address
			return EndpointConfig{Host: s}, nil
		}
		if strings.Contains(s, ":") {
			return EndpointConfig{}, NewConfigurationError(fmt.Sprintf("invalid endpoint %q: %v", s, err))
		}
		return EndpointConfig{Host: s}, nil
	}

	port, err := strconv.Atoi(portStr)
	if err != nil {
		return EndpointConfig{}, NewConfigurationError(fmt.Sprintf("invalid port in endpoint %q", s))
	}
	return EndpointConfig{Host: host, Port: port}, nil
}

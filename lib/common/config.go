package common

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/gitbbrid/yiiredis/lib/conn"
	"github.com/gitbbrid/yiiredis/lib/router"
)

// --------------------------------------------------------------------------
// Client configuration struct
// --------------------------------------------------------------------------

// ClientConfig is the configuration surface of a router client as read from
// flags, environment variables and config files.
type ClientConfig struct {
	// Transport names the connector backend ("redis" or "mem")
	Transport string
	// Topology with unparsed defaults (zero ports are filled in by the router)
	Topology router.Topology
	// Options including the reserved keys autoConnect and timeout
	Options conn.Options
	// ReplicaCommands overrides the default classification table if not empty
	ReplicaCommands []string
	// LogLevel is one of debug, info, warn, error
	LogLevel string
}

// Validate checks that the configuration can be turned into a router.
func (c *ClientConfig) Validate() error {
	if c.Topology.Primary.Host == "" {
		return errors.New("primary is required")
	}
	if c.Transport == "" {
		return errors.New("transport is required")
	}
	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		return err
	}
	if _, _, err := conn.ExtractReserved(c.Options); err != nil {
		return err
	}
	return nil
}

// String returns a formatted string representation of the client configuration
func (c *ClientConfig) String() string {
	var sb strings.Builder

	// Create helper functions for consistent formatting
	addSection := func(title string) {
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("%s\n", strings.ToUpper(title)))
	}

	addField := func(name, value string) {
		sb.WriteString(fmt.Sprintf("  %-22s: %s\n", name, value))
	}

	// General Client Settings
	addSection("Client Configuration")
	addField("Transport", c.Transport)
	addField("Log Level", c.LogLevel)

	// Endpoints
	addSection("Endpoints")
	addField("Primary", describeEndpoint(c.Topology.Primary))
	for i, s := range c.Topology.Secondaries {
		addField("Secondary "+strconv.Itoa(i), describeEndpoint(s))
	}

	// Options
	addSection("Options")
	if len(c.Options) == 0 {
		addField("(none)", "")
	}
	for _, k := range c.Options.Keys() {
		addField(k, c.Options.Display(k))
	}

	// Classification
	addSection("Replica Commands")
	if len(c.ReplicaCommands) == 0 {
		addField("Table", "default")
	} else {
		addField("Table", strings.Join(c.ReplicaCommands, ","))
	}

	return sb.String()
}

// describeEndpoint prints an endpoint with an explicit default port marker
func describeEndpoint(e conn.EndpointConfig) string {
	if e.Port <= 0 && !e.IsUnixSocket() {
		return fmt.Sprintf("%s (port %d)", e.Host, conn.DefaultPort)
	}
	return e.String()
}

// --------------------------------------------------------------------------
// Parsers
// --------------------------------------------------------------------------

// ParseEndpointList parses a comma-separated list of endpoints. Empty entries are skipped.
func ParseEndpointList(s string) ([]conn.EndpointConfig, error) {
	var out []conn.EndpointConfig
	for _, part := range strings.Split(s, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		e, err := conn.ParseEndpoint(part)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

// ParseOptions parses "key=value" pairs. Values "true"/"false" become booleans,
// integers become ints and everything else stays a string.
func ParseOptions(pairs []string) (conn.Options, error) {
	opts := conn.Options{}
	for _, pair := range pairs {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		parts := strings.SplitN(pair, "=", 2)
		if len(parts) != 2 || strings.TrimSpace(parts[0]) == "" {
			return nil, fmt.Errorf("invalid option format: %s (expected key=value)", pair)
		}
		opts[strings.TrimSpace(parts[0])] = parseOptionValue(strings.TrimSpace(parts[1]))
	}
	return opts, nil
}

func parseOptionValue(v string) any {
	if b, err := strconv.ParseBool(v); err == nil && (v == "true" || v == "false") {
		return b
	}
	if n, err := strconv.Atoi(v); err == nil {
		return n
	}
	return v
}

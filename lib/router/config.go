package router

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/gitbbrid/yiiredis/lib/conn"
)

// Topology is the set of endpoints served by a router.
type Topology struct {
	Primary     conn.EndpointConfig   `yaml:"primary" json:"primary" mapstructure:"primary"`
	Secondaries []conn.EndpointConfig `yaml:"secondaries" json:"secondaries" mapstructure:"secondaries"`
}

// Config holds everything a router needs at construction time.
type Config struct {
	// Topology is the primary and the (optional) secondaries.
	Topology Topology
	// Options are applied to every connection. The reserved keys autoConnect and
	// timeout configure the router and are not forwarded.
	Options conn.Options
	// Connector opens the physical connections.
	Connector conn.IConnector
	// Draw returns the random value used for replica selection.
	// Defaults to math/rand; set it for reproducible selection.
	Draw func() int64
}

// String returns a formatted string representation of the configuration
func (c *Config) String() string {
	var sb strings.Builder

	addSection := func(title string) {
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("%s\n", strings.ToUpper(title)))
	}

	addField := func(name, value string) {
		sb.WriteString(fmt.Sprintf("  %-22s: %s\n", name, value))
	}

	addSection("Topology")
	addField("Primary", c.Topology.Primary.String())
	if len(c.Topology.Secondaries) == 0 {
		addField("Secondaries", "none (replica reads use the primary)")
	}
	for i, s := range c.Topology.Secondaries {
		addField(fmt.Sprintf("Secondary %d", i), s.String())
	}

	addSection("Options")
	if c.Connector != nil {
		addField("Connector", c.Connector.GetName())
	}
	for _, k := range c.Options.Keys() {
		addField(k, c.Options.Display(k))
	}

	return sb.String()
}

// defaultDraw mirrors a process-random integer draw
func defaultDraw() int64 {
	return rand.Int63()
}

package router

import (
	"fmt"

	"github.com/VictoriaMetrics/metrics"
)

var (
	connectOKTotal         = metrics.NewCounter(`yiiredis_router_connect_total{result="ok"}`)
	connectErrorTotal      = metrics.NewCounter(`yiiredis_router_connect_total{result="error"}`)
	getPrimaryTotal        = metrics.NewCounter(`yiiredis_router_get_connection_total{class="primary"}`)
	getReplicaTotal        = metrics.NewCounter(`yiiredis_router_get_connection_total{class="replica"}`)
	openedConnectionsTotal = metrics.NewCounter(`yiiredis_router_opened_connections_total`)
)

// replicaSelectedTotal returns the counter of replica selections for one endpoint.
// It is looked up once per slot when the topology is connected.
func replicaSelectedTotal(endpoint string) *metrics.Counter {
	return metrics.GetOrCreateCounter(fmt.Sprintf(`yiiredis_router_replica_selected_total{endpoint=%q}`, endpoint))
}

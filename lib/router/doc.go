// Package router hides a primary store endpoint and its read replicas behind
// one logical connection.
//
// A ReplicaRouter is created from a Topology (one primary, zero or more
// secondaries), a set of connection options and a conn.IConnector. Nothing is
// opened at construction unless the autoConnect option is set; the first
// Connect or GetConnection runs the connect sequence:
//
//  1. open the primary
//  2. open every secondary in the configured order
//  3. mark the router connected
//
// The first failing endpoint aborts the sequence and leaves the router in the
// failed state. The failure is final: later calls return the same error.
//
// Routing:
//
//   - ClassPrimary always returns the primary connection.
//
//   - ClassReplica returns one secondary chosen by SelectReplicaSlot. Without
//     secondaries the primary serves replica reads; with one secondary it is
//     always that secondary.
//
// Once connected, GetConnection never opens a connection and takes no lock.
//
// The router exports VictoriaMetrics counters for connect results, requested
// connection classes and selected replicas (yiiredis_router_*).
package router

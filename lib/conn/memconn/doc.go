// Package memconn implements conn.IConnector with in-process stores.
//
// Each endpoint address owns one store that is shared by every connection to
// it, so a value written through one connection is visible through the others.
// Only a small subset of the string and hash commands is supported. Endpoints
// can be marked unreachable to simulate connect failures.
//
// The connector is meant for tests and for trying out the CLI without a server.
package memconn

// Package command classifies store commands and dispatches them through a router.
//
// A Table lists the commands that may be served by a replica; everything else
// goes to the primary. Tables are plain values, so routers with different
// policies can coexist. The Executor combines a table with a connection
// provider (usually a router.ReplicaRouter) and offers a generic Execute
// entry point plus a few typed helpers.
package command

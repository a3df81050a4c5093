// Package redisconn implements conn.IConnector with go-redis. Every connection
// is a single pinned go-redis connection over tcp or a unix socket.
package redisconn

package command

import (
	"sort"
	"strings"

	"github.com/gitbbrid/yiiredis/lib/router"
)

// DefaultReplicaCommands lists the read-only commands that are safe to serve from a replica.
var DefaultReplicaCommands = []string{
	// keys
	"dump", "exists", "keys", "pttl", "randomkey", "ttl", "type", "scan",
	// strings
	"bitcount", "get", "getbit", "getrange", "mget", "strlen",
	// hashes
	"hexists", "hget", "hgetall", "hkeys", "hlen", "hmget", "hvals", "hscan",
	// lists
	"lindex", "llen", "lrange",
	// sets
	"scard", "sdiff", "sismember", "smembers", "srandmember", "sunion", "sscan",
	// sorted sets
	"zcard", "zcount", "zrange", "zrangebyscore", "zrank", "zrevrange", "zrevrangebyscore",
	"zrevrank", "zscore", "zscan",
}

// Table classifies command names as primary-only or replica-eligible.
// Names are case-insensitive. A Table is immutable after creation and safe for concurrent use.
type Table struct {
	replica map[string]struct{}
}

// NewTable creates a table in which exactly the given commands are replica-eligible.
func NewTable(replicaCommands ...string) *Table {
	t := &Table{replica: make(map[string]struct{}, len(replicaCommands))}
	for _, name := range replicaCommands {
		name = normalize(name)
		if name == "" {
			continue
		}
		t.replica[name] = struct{}{}
	}
	return t
}

// DefaultTable creates a table from DefaultReplicaCommands.
func DefaultTable() *Table {
	return NewTable(DefaultReplicaCommands...)
}

// Classify returns the connection class that serves the command.
// Every command not listed as replica-eligible goes to the primary.
func (t *Table) Classify(name string) router.ConnectionClass {
	if _, ok := t.replica[normalize(name)]; ok {
		return router.ClassReplica
	}
	return router.ClassPrimary
}

// ReplicaCommands returns the replica-eligible commands in sorted order.
func (t *Table) ReplicaCommands() []string {
	out := make([]string, 0, len(t.replica))
	for name := range t.replica {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

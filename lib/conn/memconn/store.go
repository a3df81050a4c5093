package memconn

import (
	"github.com/puzpuzpuz/xsync/v3"
)

// value is either a string or a hash (map[string]string). Hash values are
// copied on write, so a loaded value is never mutated afterwards.
type value struct {
	str  string
	hash map[string]string
}

func (v value) isHash() bool {
	return v.hash != nil
}

// database is a single keyspace
type database struct {
	data *xsync.MapOf[string, value]
}

func newDatabase() *database {
	return &database{data: xsync.NewMapOf[string, value]()}
}

// server holds all databases of one endpoint address
type server struct {
	databases *xsync.MapOf[int, *database]
}

func newServer() *server {
	return &server{databases: xsync.NewMapOf[int, *database]()}
}

// db returns the database with the given number, creating it on first use
func (s *server) db(n int) *database {
	d, _ := s.databases.LoadOrCompute(n, newDatabase)
	return d
}

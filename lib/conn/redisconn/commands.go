package redisconn

// commands is the capability surface of the go-redis connection. Commands
// outside this table are rejected before they reach the wire.
var commands = toSet(
	// connection
	"ping", "echo", "select", "auth", "client", "hello", "quit",
	// keys
	"del", "dump", "exists", "expire", "expireat", "expiretime", "keys", "move", "object",
	"persist", "pexpire", "pexpireat", "pttl", "randomkey", "rename", "renamenx",
	"restore", "scan", "sort", "touch", "ttl", "type", "unlink", "copy",
	// strings
	"append", "bitcount", "bitop", "bitpos", "decr", "decrby", "get", "getbit", "getdel",
	"getex", "getrange", "getset", "incr", "incrby", "incrbyfloat", "mget", "mset",
	"msetnx", "psetex", "set", "setbit", "setex", "setnx", "setrange", "strlen",
	// hashes
	"hdel", "hexists", "hget", "hgetall", "hincrby", "hincrbyfloat", "hkeys", "hlen",
	"hmget", "hmset", "hrandfield", "hscan", "hset", "hsetnx", "hstrlen", "hvals",
	// lists
	"blpop", "brpop", "brpoplpush", "lindex", "linsert", "llen", "lmove", "lpop", "lpos",
	"lpush", "lpushx", "lrange", "lrem", "lset", "ltrim", "rpop", "rpoplpush", "rpush", "rpushx",
	// sets
	"sadd", "scard", "sdiff", "sdiffstore", "sinter", "sinterstore", "sismember",
	"smembers", "smismember", "smove", "spop", "srandmember", "srem", "sscan",
	"sunion", "sunionstore",
	// sorted sets
	"zadd", "zcard", "zcount", "zincrby", "zinterstore", "zlexcount", "zpopmax",
	"zpopmin", "zrange", "zrangebylex", "zrangebyscore", "zrank", "zrem",
	"zremrangebylex", "zremrangebyrank", "zremrangebyscore", "zrevrange",
	"zrevrangebylex", "zrevrangebyscore", "zrevrank", "zscan", "zscore", "zunionstore",
	"zmscore",
	// hyperloglog
	"pfadd", "pfcount", "pfmerge",
	// geo
	"geoadd", "geodist", "geohash", "geopos", "geosearch",
	// pub/sub and scripting
	"publish", "eval", "evalsha", "script",
	// server
	"dbsize", "flushdb", "info", "time", "lastsave", "role", "config",
)

func toSet(names ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	return set
}

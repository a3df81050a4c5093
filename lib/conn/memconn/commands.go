package memconn

import (
	"errors"
	"sort"
	"strconv"
)

var errWrongType = errors.New("WRONGTYPE Operation against a key holding the wrong kind of value")

// handler executes one command against a database. maxArgs < 0 means unbounded.
type handler struct {
	minArgs int
	maxArgs int
	fn      func(db *database, args []string) (any, error)
}

var handlers = map[string]handler{
	"ping":    {0, 1, cmdPing},
	"echo":    {1, 1, func(_ *database, args []string) (any, error) { return args[0], nil }},
	"get":     {1, 1, cmdGet},
	"set":     {2, 2, cmdSet},
	"setnx":   {2, 2, cmdSetNX},
	"del":     {1, -1, cmdDel},
	"exists":  {1, -1, cmdExists},
	"strlen":  {1, 1, cmdStrlen},
	"incr":    {1, 1, func(db *database, args []string) (any, error) { return incrBy(db, args[0], 1) }},
	"decr":    {1, 1, func(db *database, args []string) (any, error) { return incrBy(db, args[0], -1) }},
	"incrby":  {2, 2, cmdIncrBy},
	"mget":    {1, -1, cmdMGet},
	"append":  {2, 2, cmdAppend},
	"hset":    {3, -1, cmdHSet},
	"hget":    {2, 2, cmdHGet},
	"hgetall": {1, 1, cmdHGetAll},
	"hlen":    {1, 1, cmdHLen},
	"hexists": {2, 2, cmdHExists},
	"hdel":    {2, -1, cmdHDel},
	"hkeys":   {1, 1, cmdHKeys},
	"hvals":   {1, 1, cmdHVals},
}

// --------------------------------------------------------------------------
// Strings
// --------------------------------------------------------------------------

func cmdPing(_ *database, args []string) (any, error) {
	if len(args) == 1 {
		return args[0], nil
	}
	return "PONG", nil
}

func cmdGet(db *database, args []string) (any, error) {
	v, ok := db.data.Load(args[0])
	if !ok {
		return nil, nil
	}
	if v.isHash() {
		return nil, errWrongType
	}
	return v.str, nil
}

func cmdSet(db *database, args []string) (any, error) {
	db.data.Store(args[0], value{str: args[1]})
	return "OK", nil
}

func cmdSetNX(db *database, args []string) (any, error) {
	_, loaded := db.data.LoadOrStore(args[0], value{str: args[1]})
	if loaded {
		return int64(0), nil
	}
	return int64(1), nil
}

func cmdDel(db *database, args []string) (any, error) {
	var n int64
	for _, k := range args {
		if _, ok := db.data.LoadAndDelete(k); ok {
			n++
		}
	}
	return n, nil
}

func cmdExists(db *database, args []string) (any, error) {
	var n int64
	for _, k := range args {
		if _, ok := db.data.Load(k); ok {
			n++
		}
	}
	return n, nil
}

func cmdStrlen(db *database, args []string) (any, error) {
	v, ok := db.data.Load(args[0])
	if !ok {
		return int64(0), nil
	}
	if v.isHash() {
		return nil, errWrongType
	}
	return int64(len(v.str)), nil
}

func cmdIncrBy(db *database, args []string) (any, error) {
	delta, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil {
		return nil, errors.New("ERR value is not an integer or out of range")
	}
	return incrBy(db, args[0], delta)
}

func incrBy(db *database, key string, delta int64) (any, error) {
	var result int64
	var opErr error
	db.data.Compute(key, func(old value, loaded bool) (value, bool) {
		if !loaded {
			result = delta
			return value{str: strconv.FormatInt(result, 10)}, false
		}
		if old.isHash() {
			opErr = errWrongType
			return old, false
		}
		n, err := strconv.ParseInt(old.str, 10, 64)
		if err != nil {
			opErr = errors.New("ERR value is not an integer or out of range")
			return old, false
		}
		result = n + delta
		return value{str: strconv.FormatInt(result, 10)}, false
	})
	if opErr != nil {
		return nil, opErr
	}
	return result, nil
}

func cmdMGet(db *database, args []string) (any, error) {
	out := make([]any, len(args))
	for i, k := range args {
		if v, ok := db.data.Load(k); ok && !v.isHash() {
			out[i] = v.str
		}
	}
	return out, nil
}

func cmdAppend(db *database, args []string) (any, error) {
	var length int64
	var opErr error
	db.data.Compute(args[0], func(old value, loaded bool) (value, bool) {
		if loaded && old.isHash() {
			opErr = errWrongType
			return old, false
		}
		next := value{str: old.str + args[1]}
		length = int64(len(next.str))
		return next, false
	})
	if opErr != nil {
		return nil, opErr
	}
	return length, nil
}

// --------------------------------------------------------------------------
// Hashes
// --------------------------------------------------------------------------

func cmdHSet(db *database, args []string) (any, error) {
	if len(args)%2 != 1 {
		return nil, errors.New("ERR wrong number of arguments for 'hset' command")
	}
	var added int64
	var opErr error
	db.data.Compute(args[0], func(old value, loaded bool) (value, bool) {
		if loaded && !old.isHash() {
			opErr = errWrongType
			return old, false
		}
		next := make(map[string]string, len(old.hash)+len(args)/2)
		for k, v := range old.hash {
			next[k] = v
		}
		for i := 1; i < len(args); i += 2 {
			if _, exists := next[args[i]]; !exists {
				added++
			}
			next[args[i]] = args[i+1]
		}
		return value{hash: next}, false
	})
	if opErr != nil {
		return nil, opErr
	}
	return added, nil
}

// loadHash returns the hash stored at key, nil if the key does not exist
func loadHash(db *database, key string) (map[string]string, error) {
	v, ok := db.data.Load(key)
	if !ok {
		return nil, nil
	}
	if !v.isHash() {
		return nil, errWrongType
	}
	return v.hash, nil
}

func cmdHGet(db *database, args []string) (any, error) {
	h, err := loadHash(db, args[0])
	if err != nil {
		return nil, err
	}
	v, ok := h[args[1]]
	if !ok {
		return nil, nil
	}
	return v, nil
}

func cmdHGetAll(db *database, args []string) (any, error) {
	h, err := loadHash(db, args[0])
	if err != nil {
		return nil, err
	}
	out := make([]any, 0, len(h)*2)
	for _, k := range sortedKeys(h) {
		out = append(out, k, h[k])
	}
	return out, nil
}

func cmdHLen(db *database, args []string) (any, error) {
	h, err := loadHash(db, args[0])
	if err != nil {
		return nil, err
	}
	return int64(len(h)), nil
}

func cmdHExists(db *database, args []string) (any, error) {
	h, err := loadHash(db, args[0])
	if err != nil {
		return nil, err
	}
	if _, ok := h[args[1]]; ok {
		return int64(1), nil
	}
	return int64(0), nil
}

func cmdHDel(db *database, args []string) (any, error) {
	var removed int64
	var opErr error
	db.data.Compute(args[0], func(old value, loaded bool) (value, bool) {
		if !loaded {
			return old, true
		}
		if !old.isHash() {
			opErr = errWrongType
			return old, false
		}
		next := make(map[string]string, len(old.hash))
		for k, v := range old.hash {
			next[k] = v
		}
		for _, f := range args[1:] {
			if _, ok := next[f]; ok {
				delete(next, f)
				removed++
			}
		}
		return value{hash: next}, len(next) == 0
	})
	if opErr != nil {
		return nil, opErr
	}
	return removed, nil
}

func cmdHKeys(db *database, args []string) (any, error) {
	h, err := loadHash(db, args[0])
	if err != nil {
		return nil, err
	}
	out := make([]any, 0, len(h))
	for _, k := range sortedKeys(h) {
		out = append(out, k)
	}
	return out, nil
}

func cmdHVals(db *database, args []string) (any, error) {
	h, err := loadHash(db, args[0])
	if err != nil {
		return nil, err
	}
	out := make([]any, 0, len(h))
	for _, k := range sortedKeys(h) {
		out = append(out, h[k])
	}
	return out, nil
}

func sortedKeys(h map[string]string) []string {
	keys := make([]string, 0, len(h))
	for k := range h {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

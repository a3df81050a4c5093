package conn

import (
	"fmt"
	"sort"
	"time"
)

// Reserved option keys. They configure the router itself and are never
// forwarded to a connection's SetOption.
const (
	OptAutoConnect = "autoConnect"
	OptTimeout     = "timeout"
)

// OptPassword authenticates a connection. It is applied before every other
// option, since servers reject most commands until the client authenticated.
const OptPassword = "password"

// sensitiveOptions are masked when options are printed
var sensitiveOptions = map[string]struct{}{
	OptPassword: {},
}

// Options maps option names to values. Every entry is applied to every
// connection (primary and secondaries) right after it is opened.
type Options map[string]any

// Keys returns the option names in the order they are applied: the password
// first, then all other names sorted.
func (o Options) Keys() []string {
	keys := make([]string, 0, len(o))
	for k := range o {
		if k != OptPassword {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	if _, ok := o[OptPassword]; ok {
		keys = append([]string{OptPassword}, keys...)
	}
	return keys
}

// Display returns the printable value of an option. Credentials are masked.
func (o Options) Display(key string) string {
	v, ok := o[key]
	if !ok {
		return ""
	}
	if _, secret := sensitiveOptions[key]; secret {
		return "********"
	}
	return fmt.Sprintf("%v", v)
}

// ReservedOptions holds the values extracted from the reserved keys.
type ReservedOptions struct {
	AutoConnect bool
	Timeout     time.Duration // zero if not configured
}

// ExtractReserved splits the raw options into the reserved settings and the
// options that are passed through to the connections. The input map is not modified.
// autoConnect must be a bool, timeout a positive integer (seconds) or a positive time.Duration.
func ExtractReserved(raw Options) (ReservedOptions, Options, error) {
	reserved := ReservedOptions{}
	rest := make(Options, len(raw))

	for k, v := range raw {
		switch k {
		case OptAutoConnect:
			b, ok := v.(bool)
			if !ok {
				return ReservedOptions{}, nil, NewConfigurationError(fmt.Sprintf("option %s must be a boolean, got %T", k, v))
			}
			reserved.AutoConnect = b
		case OptTimeout:
			d, err := toTimeout(v)
			if err != nil {
				return ReservedOptions{}, nil, err
			}
			reserved.Timeout = d
		default:
			rest[k] = v
		}
	}

	return reserved, rest, nil
}

// toTimeout converts a timeout option value to a duration
func toTimeout(v any) (time.Duration, error) {
	var d time.Duration
	switch t := v.(type) {
	case time.Duration:
		d = t
	case int:
		d = time.Duration(t) * time.Second
	case int32:
		d = time.Duration(t) * time.Second
	case int64:
		d = time.Duration(t) * time.Second
	case uint:
		d = time.Duration(t) * time.Second
	case uint32:
		d = time.Duration(t) * time.Second
	case uint64:
		d = time.Duration(t) * time.Second
	default:
		return 0, NewConfigurationError(fmt.Sprintf("option %s must be an integer, got %T", OptTimeout, v))
	}
	if d <= 0 {
		return 0, NewConfigurationError(fmt.Sprintf("option %s must be positive", OptTimeout))
	}
	return d, nil
}

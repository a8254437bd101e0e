package cache

import (
	"strconv"
	"strings"
)

// Key identifies a cached query, e.g. {"posts", "42"}.
type Key []string

// K builds a key from strings and integer ids.
func K(parts ...any) Key {
	k := make(Key, 0, len(parts))
	for _, p := range parts {
		switch v := p.(type) {
		case string:
			k = append(k, v)
		case int:
			k = append(k, strconv.Itoa(v))
		case int64:
			k = append(k, strconv.FormatInt(v, 10))
		default:
			panic("cache: unsupported key part")
		}
	}
	return k
}

func (k Key) String() string {
	return strings.Join(k, "/")
}

// HasPrefix reports whether prefix matches k element-wise.
func (k Key) HasPrefix(prefix Key) bool {
	if len(prefix) > len(k) {
		return false
	}
	for i := range prefix {
		if k[i] != prefix[i] {
			return false
		}
	}
	return true
}

// Equal reports whether both keys have the same elements.
func (k Key) Equal(o Key) bool {
	return len(k) == len(o) && k.HasPrefix(o)
}

func matchesAny(k Key, prefixes []Key) bool {
	for _, p := range prefixes {
		if k.HasPrefix(p) {
			return true
		}
	}
	return false
}

func parseKey(s string) Key {
	if s == "" {
		return Key{}
	}
	return Key(strings.Split(s, "/"))
}

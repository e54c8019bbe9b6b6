package config

import (
	"errors"
	"strconv"
	"strings"
	"time"
)

// ErrNotConfigured is returned when merging into a Config that has no base
// configuration.
var ErrNotConfigured = errors.New("configuration has to be initialized")

// Config wraps a map[string]any tree for type-safe value extraction.
// All accessor methods return default values if the key is missing
// or the value cannot be converted to the requested type.
//
// Keys are looked up literally first. A key that is not present literally
// is treated as a dotted path through nested maps and slices, so
// "database.replicas.0.host" reaches into both.
//
// The zero Config has no base configuration: accessors return defaults and
// Merge fails with ErrNotConfigured.
type Config struct {
	data map[string]any
}

// New creates a Config from the given map.
// If data is nil, an empty Config is returned.
func New(data map[string]any) Config {
	if data == nil {
		data = make(map[string]any)
	}
	return Config{data: data}
}

// Configured reports whether the Config has a base configuration.
func (c Config) Configured() bool {
	return c.data != nil
}

// Lookup returns the value at key and whether it exists.
func (c Config) Lookup(key string) (any, bool) {
	if c.data == nil {
		return nil, false
	}
	if v, ok := c.data[key]; ok {
		return v, true
	}
	if !strings.Contains(key, ".") {
		return nil, false
	}

	var cur any = c.data
	for _, part := range strings.Split(key, ".") {
		switch node := cur.(type) {
		case map[string]any:
			v, ok := node[part]
			if !ok {
				return nil, false
			}
			cur = v
		case []any:
			i, err := strconv.Atoi(part)
			if err != nil || i < 0 || i >= len(node) {
				return nil, false
			}
			cur = node[i]
		default:
			return nil, false
		}
	}
	return cur, true
}

// Sub returns the nested map at key as a Config sharing the same storage.
// A missing key or a non-map value yields an empty Config.
func (c Config) Sub(key string) Config {
	v, ok := c.Lookup(key)
	if !ok {
		return New(nil)
	}
	m, ok := v.(map[string]any)
	if !ok {
		return New(nil)
	}
	return Config{data: m}
}

// Merge deep-merges patch into the configuration in place. Nested maps are
// merged per key and slices per index; every other value in patch replaces
// the one it lands on.
func (c *Config) Merge(patch map[string]any) error {
	if c.data == nil {
		return ErrNotConfigured
	}
	Merge(c.data, patch)
	return nil
}

// String returns the string value for key, or defaultVal if missing or not a string.
func (c Config) String(key, defaultVal string) string {
	v, ok := c.Lookup(key)
	if !ok {
		return defaultVal
	}
	if s, ok := v.(string); ok {
		return s
	}
	return defaultVal
}

// Duration returns the duration value for key, or defaultVal if missing or invalid.
//
// Accepts:
//   - string: parsed with time.ParseDuration
//   - int: interpreted as seconds
//   - int64: interpreted as seconds
//   - float64: interpreted as seconds
//   - time.Duration: used directly
func (c Config) Duration(key string, defaultVal time.Duration) time.Duration {
	v, ok := c.Lookup(key)
	if !ok {
		return defaultVal
	}
	switch val := v.(type) {
	case string:
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	case float64:
		return time.Duration(val * float64(time.Second))
	case int:
		return time.Duration(val) * time.Second
	case int64:
		return time.Duration(val) * time.Second
	case time.Duration:
		return val
	}
	return defaultVal
}

// Bool returns the boolean value for key, or defaultVal if missing or not a bool.
func (c Config) Bool(key string, defaultVal bool) bool {
	v, ok := c.Lookup(key)
	if !ok {
		return defaultVal
	}
	if b, ok := v.(bool); ok {
		return b
	}
	return defaultVal
}

// Int returns the integer value for key, or defaultVal if missing or not convertible.
//
// Accepts:
//   - int: used directly
//   - int64: converted to int
//   - float64: converted to int only if it has no fractional part
func (c Config) Int(key string, defaultVal int) int {
	v, ok := c.Lookup(key)
	if !ok {
		return defaultVal
	}
	switch val := v.(type) {
	case int:
		return val
	case int64:
		return int(val)
	case float64:
		if val == float64(int(val)) {
			return int(val)
		}
	}
	return defaultVal
}

// Float returns the float64 value for key, or defaultVal if missing or not convertible.
func (c Config) Float(key string, defaultVal float64) float64 {
	v, ok := c.Lookup(key)
	if !ok {
		return defaultVal
	}
	switch val := v.(type) {
	case float64:
		return val
	case int:
		return float64(val)
	case int64:
		return float64(val)
	}
	return defaultVal
}

// StringSlice returns the string slice for key, or defaultVal if missing or not convertible.
//
// Accepts:
//   - []string: used directly
//   - []any: only if every element is a string
func (c Config) StringSlice(key string, defaultVal []string) []string {
	v, ok := c.Lookup(key)
	if !ok {
		return defaultVal
	}
	switch val := v.(type) {
	case []string:
		return val
	case []any:
		result := make([]string, 0, len(val))
		for _, item := range val {
			s, ok := item.(string)
			if !ok {
				return defaultVal
			}
			result = append(result, s)
		}
		return result
	}
	return defaultVal
}

// Any returns the raw value for key, or defaultVal if missing.
func (c Config) Any(key string, defaultVal any) any {
	v, ok := c.Lookup(key)
	if !ok {
		return defaultVal
	}
	return v
}

// Has returns true if the key exists in the config.
func (c Config) Has(key string) bool {
	_, ok := c.Lookup(key)
	return ok
}

// Raw returns the underlying map.
// Changes to the returned map are visible through the Config.
func (c Config) Raw() map[string]any {
	return c.data
}

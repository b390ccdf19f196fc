package config

import (
	"fmt"
	"time"
)

// Stored values arrive as whatever the decoder produced: float64 from JSON,
// int from YAML, strings for durations.

func toString(key string, value interface{}) (string, error) {
	s, ok := value.(string)
	if !ok {
		return "", fmt.Errorf("invalid value type for %s: expected string, got %T", key, value)
	}
	return s, nil
}

func toBool(key string, value interface{}) (bool, error) {
	b, ok := value.(bool)
	if !ok {
		return false, fmt.Errorf("invalid value type for %s: expected bool, got %T", key, value)
	}
	return b, nil
}

func toInt(key string, value interface{}) (int64, error) {
	switch v := value.(type) {
	case int:
		return int64(v), nil
	case int64:
		return v, nil
	case float64:
		return int64(v), nil
	default:
		return 0, fmt.Errorf("invalid value type for %s: expected number, got %T", key, value)
	}
}

// toDuration accepts "500ms" style strings or a number of nanoseconds.
func toDuration(key string, value interface{}) (time.Duration, error) {
	if s, ok := value.(string); ok {
		d, err := time.ParseDuration(s)
		if err != nil {
			return 0, fmt.Errorf("invalid duration string for %s: %w", key, err)
		}
		return d, nil
	}
	n, err := toInt(key, value)
	if err != nil {
		return 0, fmt.Errorf("invalid value type for %s: expected string or number, got %T", key, value)
	}
	return time.Duration(n), nil
}

func toStringSlice(key string, value interface{}) ([]string, error) {
	switch v := value.(type) {
	case []string:
		return append(make([]string, 0, len(v)), v...), nil
	case []interface{}:
		out := make([]string, 0, len(v))
		for i, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("invalid value type for %s[%d]: expected string, got %T", key, i, item)
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("invalid value type for %s: expected list of strings, got %T", key, value)
	}
}

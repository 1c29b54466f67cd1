package tools

import "fmt"

// Argument extraction helpers. Schemas are validated before handlers run,
// so these mostly guard against type drift in optional fields.

func stringArg(args map[string]any, key string) (string, error) {
	v, ok := args[key]
	if !ok {
		return "", fmt.Errorf("missing argument: %s", key)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("argument %s: expected string, got %T", key, v)
	}
	return s, nil
}

func optStringArg(args map[string]any, key string) string {
	s, _ := args[key].(string)
	return s
}

func floatArg(args map[string]any, key string) (float64, error) {
	v, ok := args[key]
	if !ok {
		return 0, fmt.Errorf("missing argument: %s", key)
	}
	switch n := v.(type) {
	case float64:
		return n, nil
	case int:
		return float64(n), nil
	default:
		return 0, fmt.Errorf("argument %s: expected number, got %T", key, v)
	}
}

func optIntArg(args map[string]any, key string, fallback int) int {
	v, ok := args[key]
	if !ok {
		return fallback
	}
	switch n := v.(type) {
	case float64:
		return int(n)
	case int:
		return n
	default:
		return fallback
	}
}

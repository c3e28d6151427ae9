package collectors

import (
	"context"
	"fmt"
	"sort"
)

// ProxyParam is injected into every collector's params when network.proxy_url is set.
const ProxyParam = "_proxy_url"

// Collector fetches raw lines from one source. Lines are returned as found;
// classification happens later in the engine.
type Collector interface {
	Collect(ctx context.Context, params map[string]interface{}) ([]string, error)
}

type Factory func() Collector

var registry = make(map[string]Factory)

func Register(name string, factory Factory) {
	registry[name] = factory
}

func Get(name string) (Collector, error) {
	factory, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("collector plugin '%s' not found", name)
	}
	return factory(), nil
}

// Names lists the registered collector types.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// StringParam returns params[key] when it is a string.
func StringParam(params map[string]interface{}, key string) string {
	s, _ := params[key].(string)
	return s
}

// StringsParam accepts either a single string or a yaml list of strings.
func StringsParam(params map[string]interface{}, key string) []string {
	switch v := params[key].(type) {
	case string:
		return []string{v}
	case []string:
		return v
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// IntParam accepts yaml ints, int64s and floats.
func IntParam(params map[string]interface{}, key string) int {
	switch v := params[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return 0
}

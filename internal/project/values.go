package project

import "fmt"

// jsonValue rewrites maps decoded with non-string keys, which encoding/json
// rejects, into maps keyed by the keys' text.
func jsonValue(value any) any {
	switch v := value.(type) {
	case map[any]any:
		out := make(map[string]any, len(v))
		for key, item := range v {
			out[fmt.Sprint(key)] = jsonValue(item)
		}
		return out
	case map[string]any:
		for key, item := range v {
			v[key] = jsonValue(item)
		}
		return v
	case []any:
		for i, item := range v {
			v[i] = jsonValue(item)
		}
		return v
	}
	return value
}

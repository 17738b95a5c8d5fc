package discovery

import (
	"fmt"
	"sort"
	"strconv"
)

// Annotation gives access to annotation parameter values, including nested
// ones. The zero value has no values.
type Annotation struct {
	raw map[string]any
}

// NewAnnotation wraps raw parameter values as decoded from TOML or YAML.
func NewAnnotation(raw map[string]any) Annotation {
	return Annotation{raw: raw}
}

// IsZero returns true if the annotation has no parameters.
func (a Annotation) IsZero() bool { return len(a.raw) == 0 }

// Keys returns the top-level parameter names in sorted order.
func (a Annotation) Keys() []string {
	keys := make([]string, 0, len(a.raw))
	for k := range a.raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Values flattens the parameters into path -> values. Scalars in a list
// share the list's path; nested tables extend the path with their key, and
// tables in a list with their index:
//
//	traits = ["a.T1", "a.T2"]        traits: [a.T1 a.T2]
//	prefer = [{method = "m"}]        prefer.0.method: [m]
func (a Annotation) Values() map[string][]string {
	out := make(map[string][]string)
	for k, v := range a.raw {
		flatten(out, k, v)
	}
	return out
}

// Value returns the flattened values at path.
func (a Annotation) Value(path string) ([]string, bool) {
	v, ok := a.Values()[path]
	return v, ok
}

func flatten(out map[string][]string, path string, v any) {
	switch x := v.(type) {
	case nil:
	case map[string]any:
		for k, child := range x {
			flatten(out, path+"."+k, child)
		}
	case []map[string]any:
		for i, child := range x {
			flatten(out, path+"."+strconv.Itoa(i), child)
		}
	case []any:
		// Keep the key even for an empty list so that "traits = []" is
		// reported as empty rather than missing.
		if _, ok := out[path]; !ok && len(x) == 0 {
			out[path] = []string{}
		}
		for i, child := range x {
			switch child.(type) {
			case map[string]any, []any, []map[string]any:
				flatten(out, path+"."+strconv.Itoa(i), child)
			default:
				out[path] = append(out[path], scalar(child))
			}
		}
	case []string:
		out[path] = append(out[path], x...)
	default:
		out[path] = append(out[path], scalar(x))
	}
}

func scalar(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}

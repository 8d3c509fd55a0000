package interview

import "strings"

// Assessment is the structured record built up over an interview. Values live
// in a nested map addressed by dotted paths such as "pain.cost_estimate".
type Assessment map[string]any

// Get resolves a dotted path against the record. The second return is false
// when any segment is missing or a intermediate value is not a nested map.
func (a Assessment) Get(path string) (any, bool) {
	if len(a) == 0 || path == "" {
		return nil, false
	}
	segments := strings.Split(path, ".")
	var cur any = map[string]any(a)
	for _, seg := range segments {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = m[seg]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// Has reports whether a path resolves to a usable value. Nil values, empty
// strings, and empty slices do not count as collected.
func (a Assessment) Has(path string) bool {
	v, ok := a.Get(path)
	if !ok || v == nil {
		return false
	}
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t) != ""
	case []string:
		return len(t) > 0
	case []any:
		return len(t) > 0
	default:
		return true
	}
}

// Set writes a value at a dotted path, creating intermediate maps as needed.
// An intermediate segment that holds a non-map value is replaced.
func (a Assessment) Set(path string, value any) {
	if path == "" {
		return
	}
	segments := strings.Split(path, ".")
	m := map[string]any(a)
	for _, seg := range segments[:len(segments)-1] {
		next, ok := m[seg].(map[string]any)
		if !ok {
			next = make(map[string]any)
			m[seg] = next
		}
		m = next
	}
	m[segments[len(segments)-1]] = value
}

// Merge copies every field from ext into the record, overwriting earlier
// values for the same path.
func (a Assessment) Merge(fields map[string]any) {
	for path, value := range fields {
		a.Set(path, value)
	}
}

// Clone returns a deep copy of the record.
func (a Assessment) Clone() Assessment {
	if a == nil {
		return nil
	}
	return Assessment(cloneMap(a))
}

func cloneMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		switch t := v.(type) {
		case map[string]any:
			out[k] = cloneMap(t)
		case []string:
			out[k] = append([]string(nil), t...)
		case []any:
			out[k] = append([]any(nil), t...)
		default:
			out[k] = v
		}
	}
	return out
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package score

// meta reads source metadata whether it came straight from a source
// client (int, []string) or back through a JSON cache (float64, []any).
type meta map[string]any

func metadata(m map[string]any) meta { return meta(m) }

func (m meta) str(key string) string {
	s, _ := m[key].(string)
	return s
}

func (m meta) num(key string) (int, bool) {
	switch v := m[key].(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	}
	return 0, false
}

func (m meta) strs(key string) []string {
	switch v := m[key].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, x := range v {
			if s, ok := x.(string); ok {
				out = append(out, s)
			}
		}
		return out
	case string:
		return []string{v}
	}
	return nil
}

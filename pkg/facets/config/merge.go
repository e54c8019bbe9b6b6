package config

// Merge deep-merges patch into target and returns the merged value.
//
// When both are map[string]any, every key of patch is merged into target in
// place. When both are []any, overlapping indices are merged element by
// element and target is extended by the remaining elements of a longer
// patch; the returned slice must be used since extension may reallocate.
// In every other case patch replaces target and is returned as is.
func Merge(target, patch any) any {
	switch p := patch.(type) {
	case map[string]any:
		t, ok := target.(map[string]any)
		if !ok || t == nil {
			return patch
		}
		for k, pv := range p {
			if tv, exists := t[k]; exists && mergeable(tv, pv) {
				t[k] = Merge(tv, pv)
			} else {
				t[k] = pv
			}
		}
		return t
	case []any:
		t, ok := target.([]any)
		if !ok {
			return patch
		}
		for i, pv := range p {
			if i < len(t) {
				t[i] = Merge(t[i], pv)
			} else {
				t = append(t, pv)
			}
		}
		return t
	default:
		return patch
	}
}

func mergeable(target, patch any) bool {
	switch patch.(type) {
	case map[string]any:
		_, ok := target.(map[string]any)
		return ok
	case []any:
		_, ok := target.([]any)
		return ok
	}
	return false
}

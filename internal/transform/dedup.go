package transform

// Dedup keeps the first row seen for each key, preserving input order.
func Dedup[T any, K comparable](rows []T, key func(T) K) []T {
	seen := make(map[K]struct{}, len(rows))
	out := make([]T, 0, len(rows))
	for _, row := range rows {
		k := key(row)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, row)
	}
	return out
}

// nullableKey groups rows by a nullable key. All null keys fall in one group, apart from the empty string.
type nullableKey struct {
	valid bool
	value string
}

func keyOf(s *string) nullableKey {
	if s == nil {
		return nullableKey{}
	}
	return nullableKey{valid: true, value: *s}
}

package matching

import "strings"

// Normalize returns the equivalence class of a raw term: the term itself
// lowercased and trimmed plus, when it matches a synonym-table key or any of
// that key's synonyms, the full class (key and all synonyms, lowercased).
// Deterministic, no I/O. An empty term yields the singleton of its trimmed
// lowercase form.
func Normalize(term string, table map[string][]string) map[string]struct{} {
	canonical := strings.ToLower(strings.TrimSpace(term))
	out := map[string]struct{}{canonical: {}}

	for key, synonyms := range table {
		lkey := strings.ToLower(strings.TrimSpace(key))
		hit := lkey == canonical
		if !hit {
			for _, s := range synonyms {
				if strings.ToLower(strings.TrimSpace(s)) == canonical {
					hit = true
					break
				}
			}
		}
		if hit {
			out[lkey] = struct{}{}
			for _, s := range synonyms {
				out[strings.ToLower(strings.TrimSpace(s))] = struct{}{}
			}
		}
	}

	return out
}

// NormalizeAll folds the equivalence classes of every term into one set.
func NormalizeAll(terms []string, table map[string][]string) map[string]struct{} {
	out := make(map[string]struct{}, len(terms))
	for _, t := range terms {
		for k := range Normalize(t, table) {
			out[k] = struct{}{}
		}
	}
	return out
}

func intersects(a, b map[string]struct{}) bool {
	if len(a) > len(b) {
		a, b = b, a
	}
	for k := range a {
		if _, ok := b[k]; ok {
			return true
		}
	}
	return false
}

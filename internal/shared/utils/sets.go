package utils

// Difference returns the elements of want that are not present in have.
// Order of the result is unspecified.
func Difference(want []string, have []string) []string {
	seen := make(map[string]struct{}, len(have))
	for _, v := range have {
		seen[v] = struct{}{}
	}

	var missing []string
	for _, v := range want {
		if _, ok := seen[v]; !ok {
			missing = append(missing, v)
		}
	}
	return missing
}

// Dedupe removes duplicates from names, preserving first-seen order.
func Dedupe(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, v := range names {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

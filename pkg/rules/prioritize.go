package rules

import "sort"

// Prioritize ranks rules by confidence (descending), then by category
// priority (descending), and drops any rule whose (Name, PackageName) pair
// was already emitted. The sort is stable, so ties keep their input order,
// and the result is idempotent: Prioritize(Prioritize(x)) equals
// Prioritize(x). The input slice is not modified.
func Prioritize(in []Rule) []Rule {
	sorted := make([]Rule, len(in))
	copy(sorted, in)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.Confidence != b.Confidence {
			return a.Confidence > b.Confidence
		}
		return a.Category.Priority() > b.Category.Priority()
	})

	type key struct{ name, pkg string }
	seen := make(map[key]bool, len(sorted))
	out := sorted[:0]
	for _, r := range sorted {
		k := key{r.Name, r.PackageName}
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, r)
	}
	return out
}

// FilterMinConfidence returns the rules with Confidence >= min, preserving order.
func FilterMinConfidence(in []Rule, min float64) []Rule {
	if min <= 0 {
		return in
	}
	out := make([]Rule, 0, len(in))
	for _, r := range in {
		if r.Confidence >= min {
			out = append(out, r)
		}
	}
	return out
}

// ByPackage groups rules by PackageName, preserving order within each group.
func ByPackage(in []Rule) map[string][]Rule {
	out := make(map[string][]Rule)
	for _, r := range in {
		out[r.PackageName] = append(out[r.PackageName], r)
	}
	return out
}

package visibility

// Filter returns a copy of items restricted to those whose owner is visible.
func Filter[T any](items []T, visible Set, owner func(T) string) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		if visible.Contains(owner(item)) {
			out = append(out, item)
		}
	}
	return out
}

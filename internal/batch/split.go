// Package batch splits work into fixed-size groups. It bounds the size of a
// single regex alternation and the parameter count of a single SQL statement.
package batch

// Split returns consecutive sub-slices of items holding at most size
// elements each. The sub-slices share the backing array of items.
// A size below one yields a single batch with every item.
func Split[T any](items []T, size int) [][]T {
	if len(items) == 0 {
		return nil
	}
	if size < 1 || size >= len(items) {
		return [][]T{items}
	}

	out := make([][]T, 0, (len(items)+size-1)/size)
	for start := 0; start < len(items); start += size {
		end := start + size
		if end > len(items) {
			end = len(items)
		}
		out = append(out, items[start:end:end])
	}
	return out
}

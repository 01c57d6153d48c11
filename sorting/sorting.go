// Package sorting provides the insertion sort and merge sort primitives
// timed by the benchmark harness. Both return a new ascending slice and
// never modify their input. Elements are compared with < only.
package sorting

import "cmp"

// Insertion returns an ascending copy of s using insertion sort.
// O(n^2) on average, O(n) when s is already sorted.
func Insertion[T cmp.Ordered](s []T) []T {
	out := clone(s)

	for i := 1; i < len(out); i++ {
		key := out[i]
		j := i - 1

		for j >= 0 && key < out[j] {
			out[j+1] = out[j]
			j--
		}

		out[j+1] = key
	}

	return out
}

// Merge returns an ascending copy of s using merge sort.
//
// Runs of width 1, 2, 4, ... are merged back and forth between two
// buffers, so stack usage does not grow with len(s). When the heads of
// both runs are equal the right one is taken first; the result is not
// guaranteed to be stable.
func Merge[T cmp.Ordered](s []T) []T {
	n := len(s)
	src := clone(s)

	if n < 2 {
		return src
	}

	dst := make([]T, n)

	for width := 1; width < n; width *= 2 {
		for lo := 0; lo < n; lo += 2 * width {
			mid := min(lo+width, n)
			hi := min(lo+2*width, n)
			merge(dst[lo:hi], src[lo:mid], src[mid:hi])
		}

		src, dst = dst, src
	}

	return src
}

// merge writes the union of the sorted runs left and right into dst,
// which must have len(left)+len(right) elements.
func merge[T cmp.Ordered](dst, left, right []T) {
	i, j, k := 0, 0, 0

	for i < len(left) && j < len(right) {
		if left[i] < right[j] {
			dst[k] = left[i]
			i++
		} else {
			dst[k] = right[j]
			j++
		}
		k++
	}

	k += copy(dst[k:], left[i:])
	copy(dst[k:], right[j:])
}

// clone always returns a non-nil slice, even for a nil input.
func clone[T any](s []T) []T {
	out := make([]T, len(s))
	copy(out, s)

	return out
}

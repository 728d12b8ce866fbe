package slicex

import "slices"

// Filter returns a new slice containing all elements of s for which f returns true.
func Filter[S ~[]E, E any](s S, fn func(E) bool) S {
	if s == nil {
		return nil
	}

	out := make(S, 0, len(s))
	for _, v := range s {
		if fn(v) {
			out = append(out, v)
		}
	}

	return out
}

// ContainsFunc returns true if s contains an element for which f returns true.
func ContainsFunc[E any](s []E, fn func(E) bool) bool {
	return slices.IndexFunc(s, fn) > -1
}

// Map returns a new slice containing the results of applying f to each element of s.
func Map[E, R any](s []E, fn func(E) R) []R {
	out := make([]R, len(s))
	for i, v := range s {
		out[i] = fn(v)
	}
	return out
}

// Move removes the element at `from` and reinserts it at `to`, returning a new
// slice. Out-of-range indices leave the slice unchanged.
func Move[S ~[]E, E any](s S, from, to int) S {
	if from < 0 || from >= len(s) || to < 0 || to >= len(s) || from == to {
		return s
	}

	out := make(S, 0, len(s))
	out = append(out, s[:from]...)
	out = append(out, s[from+1:]...)

	rest := make(S, len(out[to:]))
	copy(rest, out[to:])

	out = append(out[:to], s[from])
	out = append(out, rest...)

	return out
}

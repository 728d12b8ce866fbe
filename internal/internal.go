package internal

// Zero returns the zero value of T.
func Zero[T any]() (zero T) {
	return zero
}

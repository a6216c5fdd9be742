// Package stdx holds small generic helpers missing from the standard library.
package stdx

// Must returns v, or panics with err when err is not nil. Use it on
// construction paths where a failure is a programming error.
func Must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}

// Zero returns the zero value of T.
func Zero[T any]() (zero T) {
	return zero
}

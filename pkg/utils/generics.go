package utils

import (
	"strings"
)

func Pointer[T any](t T) *T {
	return &t
}

type Stringable interface {
	String() string
}

// Join joins the string representations of list elements.
// The default separator is ", ".
func Join[S Stringable](list []S, seps ...string) string {
	return strings.Join(TransformSlice(list, func(s S) string { return s.String() }), OptionalDefaulted(", ", seps...))
}

func TransformSlice[E any, A ~[]E, T any](in A, m func(E) T) []T {
	r := make([]T, len(in))
	for i, v := range in {
		r[i] = m(v)
	}
	return r
}

// FilterSlice returns the elements of a slice matching a predicate.
func FilterSlice[E any, A ~[]E](in A, f func(E) bool) A {
	var r A
	for _, v := range in {
		if f(v) {
			r = append(r, v)
		}
	}
	return r
}

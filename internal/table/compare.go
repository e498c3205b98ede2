package table

import (
	"cmp"
	"strings"

	"github.com/shopspring/decimal"

	"baketrack/internal/core"
)

// Comparator returns a negative number when a sorts before b, zero when
// they are equal and a positive number otherwise.
type Comparator[T any] func(a, b T) int

// Reverse flips a comparator. Equal elements stay equal, so a stable sort
// keeps their relative order in both directions.
func Reverse[T any](c Comparator[T]) Comparator[T] {
	return func(a, b T) int { return c(b, a) }
}

func ByString[T any](get func(T) string) Comparator[T] {
	return func(a, b T) int { return strings.Compare(get(a), get(b)) }
}

// ByFold compares strings case-insensitively.
func ByFold[T any](get func(T) string) Comparator[T] {
	return func(a, b T) int {
		return strings.Compare(strings.ToLower(get(a)), strings.ToLower(get(b)))
	}
}

func ByNumber[T any, N cmp.Ordered](get func(T) N) Comparator[T] {
	return func(a, b T) int { return cmp.Compare(get(a), get(b)) }
}

func ByDecimal[T any](get func(T) decimal.Decimal) Comparator[T] {
	return func(a, b T) int { return get(a).Cmp(get(b)) }
}

// ByDate orders parseable dates chronologically before unparseable ones,
// which fall back to string order among themselves.
func ByDate[T any](get func(T) string) Comparator[T] {
	return func(a, b T) int {
		sa, sb := get(a), get(b)
		ta, oka := core.ParseDate(sa)
		tb, okb := core.ParseDate(sb)
		switch {
		case oka && okb:
			return ta.Compare(tb)
		case oka:
			return -1
		case okb:
			return 1
		}
		return strings.Compare(sa, sb)
	}
}

// Contains is a Filter matching a case-insensitive substring of one field.
func Contains[T any](get func(T) string) func(T, string) bool {
	return func(r T, q string) bool {
		return strings.Contains(strings.ToLower(get(r)), strings.ToLower(q))
	}
}

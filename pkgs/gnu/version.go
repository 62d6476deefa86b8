// Package gnu orders version strings the way GNU sort -V and dpkg do.
package gnu

import (
	"slices"
	"strings"
)

// Compare returns a negative number if a sorts before b, zero if they are
// equal and a positive number otherwise. Digit runs compare by value, other
// runs compare by character with letters before punctuation and '~' before
// everything, including the end of the string.
func Compare(a, b string) int {
	for a != "" || b != "" {
		var ta, tb string
		ta, a = cut(a, false)
		tb, b = cut(b, false)
		if c := compareText(ta, tb); c != 0 {
			return c
		}
		ta, a = cut(a, true)
		tb, b = cut(b, true)
		if c := compareNumber(ta, tb); c != 0 {
			return c
		}
	}
	return 0
}

// Sort sorts versions in ascending order.
func Sort(versions []string) {
	slices.SortStableFunc(versions, Compare)
}

// HasPrefix reports whether version starts with the dot separated
// components of prefix, so "7" matches "7.3.0" but not "70.1".
func HasPrefix(version, prefix string) bool {
	if prefix == "" {
		return true
	}
	if !strings.HasPrefix(version, prefix) {
		return false
	}
	rest := version[len(prefix):]
	return rest == "" || !isDigit(rest[0])
}

// cut splits the leading run of digits (or non-digits) off s.
func cut(s string, digits bool) (run, rest string) {
	i := 0
	for i < len(s) && isDigit(s[i]) == digits {
		i++
	}
	return s[:i], s[i:]
}

func compareText(a, b string) int {
	for i := 0; i < len(a) || i < len(b); i++ {
		var ca, cb byte
		if i < len(a) {
			ca = a[i]
		}
		if i < len(b) {
			cb = b[i]
		}
		if oa, ob := order(ca), order(cb); oa != ob {
			return oa - ob
		}
	}
	return 0
}

func compareNumber(a, b string) int {
	a = strings.TrimLeft(a, "0")
	b = strings.TrimLeft(b, "0")
	if len(a) != len(b) {
		return len(a) - len(b)
	}
	return strings.Compare(a, b)
}

func order(c byte) int {
	switch {
	case c == 0:
		return 0
	case c == '~':
		return -1
	case isAlpha(c):
		return int(c)
	}
	return int(c) + 256
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isAlpha(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

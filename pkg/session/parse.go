package session

import (
	"math"
	"strings"
)

// ParseRegisterIndex parses a decimal register number the way C's atoi does: leading whitespace and a sign are
// accepted, parsing stops at the first non digit and text without any digits parses as zero.
func ParseRegisterIndex(s string) int64 {
	s = strings.TrimLeft(s, " \t\n\v\f\r")

	neg := false
	if s != "" && (s[0] == '+' || s[0] == '-') {
		neg = s[0] == '-'
		s = s[1:]
	}

	var n int64
	for i := 0; i < len(s); i++ {
		d := s[i]
		if d < '0' || d > '9' {
			break
		}

		if n > (math.MaxInt64-int64(d-'0'))/10 {
			n = math.MaxInt64
			break
		}
		n = n*10 + int64(d-'0')
	}

	if neg {
		return -n
	}
	return n
}

// ParseValue parses an unsigned integer the way C's strtoull does with base 0: a 0x prefix selects hexadecimal, a
// leading 0 octal and anything else decimal. The longest valid prefix is used, text without one parses as zero.
// Values which overflow saturate and a leading minus negates modulo 2^64.
func ParseValue(s string) uint64 {
	s = strings.TrimLeft(s, " \t\n\v\f\r")

	neg := false
	if s != "" && (s[0] == '+' || s[0] == '-') {
		neg = s[0] == '-'
		s = s[1:]
	}

	base := uint64(10)
	switch {
	case len(s) >= 3 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') && digitValue(s[2]) < 16:
		base = 16
		s = s[2:]
	case len(s) >= 1 && s[0] == '0':
		base = 8
	}

	var (
		n        uint64
		overflow bool
	)
	for i := 0; i < len(s); i++ {
		d := digitValue(s[i])
		if d >= base {
			break
		}

		if n > (math.MaxUint64-d)/base {
			overflow = true
			continue
		}
		n = n*base + d
	}

	if overflow {
		return math.MaxUint64
	}
	if neg {
		return -n
	}
	return n
}

func digitValue(c byte) uint64 {
	switch {
	case c >= '0' && c <= '9':
		return uint64(c - '0')
	case c >= 'a' && c <= 'z':
		return uint64(c-'a') + 10
	case c >= 'A' && c <= 'Z':
		return uint64(c-'A') + 10
	}

	return math.MaxUint64
}

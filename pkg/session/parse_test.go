package session

import (
	"math"
	"testing"
)

func TestParseRegisterIndex(t *testing.T) {
	tests := []struct {
		in   string
		want int64
	}{
		{"5", 5},
		{" 12", 12},
		{"+7", 7},
		{"-3", -3},
		{"32abc", 32},
		{"x5", 0},
		{"", 0},
		{"0x10", 0},
		{"007", 7},
		{"999999999999999999999", math.MaxInt64},
	}

	for _, test := range tests {
		if got := ParseRegisterIndex(test.in); got != test.want {
			t.Errorf("ParseRegisterIndex(%q): expected %d, got %d", test.in, test.want, got)
		}
	}
}

func TestParseValue(t *testing.T) {
	tests := []struct {
		in   string
		want uint64
	}{
		{"0x10", 0x10},
		{"0XfF", 0xFF},
		{"010", 8},
		{"0", 0},
		{"42", 42},
		{"  42", 42},
		{"12abc", 12},
		{"0x", 0},
		{"0xg", 0},
		{"09", 0},
		{"zz", 0},
		{"-1", math.MaxUint64},
		{"0xFFFFFFFFFFFFFFFF", math.MaxUint64},
		{"0x1FFFFFFFFFFFFFFFF", math.MaxUint64},
		{"18446744073709551616", math.MaxUint64},
	}

	for _, test := range tests {
		if got := ParseValue(test.in); got != test.want {
			t.Errorf("ParseValue(%q): expected 0x%x, got 0x%x", test.in, test.want, got)
		}
	}
}

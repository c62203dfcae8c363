package display

import (
	"strings"
	"testing"
)

func TestCurrency(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{65000, "65 000,00 zł"},
		{1005.06, "1005,06 zł"},
		{43612.658934684376, "43 612,66 zł"},
		{0, "0,00 zł"},
		{0.005, "0,01 zł"},
		{1234567.891, "1 234 567,89 zł"},
		{-12500.5, "-12 500,50 zł"},
		{-0.001, "0,00 zł"},
		{100000, "100 000,00 zł"},
	}
	for _, tt := range tests {
		want := strings.ReplaceAll(tt.want, " ", "\u00a0")
		if got := Currency(tt.in); got != want {
			t.Errorf("Currency(%v) = %q, want %q", tt.in, got, want)
		}
	}
}

func TestDate(t *testing.T) {
	tests := map[string]string{
		"2025-04-21": "21.04.2025",
		"2033-08-21": "21.08.2033",
		"":           "",
		"21/04/2025": "21/04/2025",
		"2025-02-30": "2025-02-30",
	}
	for in, want := range tests {
		if got := Date(in); got != want {
			t.Errorf("Date(%q) = %q, want %q", in, got, want)
		}
	}
}

package rentab

import (
	"math"
	"testing"
)

func FuzzParseDecimalStaysFiniteNonNegative(f *testing.F) {
	f.Add("250000")
	f.Add("250 000,50")
	f.Add("")
	f.Add("-1e308")
	f.Add("1e309")
	f.Add("NaN")
	f.Add(",,.,")

	f.Fuzz(func(t *testing.T, raw string) {
		v := ParseDecimal(raw)
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			t.Fatalf("ParseDecimal(%q) = %v, want finite non-negative", raw, v)
		}
	})
}

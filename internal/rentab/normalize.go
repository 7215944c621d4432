package rentab

import (
	"math"
	"strconv"
	"strings"
)

// ParseDecimal parses a user-entered amount. It tolerates comma or dot
// decimal separators and space/non-breaking-space thousands grouping
// ("1 250 000,50"). Empty or unparsable input yields 0 -- the form silently
// degrades instead of rejecting, which is the intended product behavior and
// is pinned by tests. Negative and non-finite values also collapse to 0.
func ParseDecimal(raw string) float64 {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0
	}
	s = strings.Map(func(r rune) rune {
		switch r {
		case ' ', ' ', ' ':
			return -1
		case ',':
			return '.'
		}
		return r
	}, s)
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}

// NormalizeForm converts the raw questionnaire into a validated Input.
// It never fails: every numeric field goes through ParseDecimal and the
// strategy defaults to resale when unrecognized.
func NormalizeForm(f Form) Input {
	strategy := StrategyResale
	if Strategy(strings.TrimSpace(f.Strategy)) == StrategyRental {
		strategy = StrategyRental
	}
	return Input{
		Strategy:             strategy,
		PurchasePrice:        ParseDecimal(f.PurchasePrice),
		NotaryFeeRatePct:     ParseDecimal(f.NotaryFeeRatePct),
		WorksBudget:          ParseDecimal(f.WorksBudget),
		MiscFees:             ParseDecimal(f.MiscFees),
		DurationMonths:       ParseDecimal(f.DurationMonths),
		Surface:              ParseDecimal(f.Surface),
		TargetResalePrice:    ParseDecimal(f.TargetResalePrice),
		MonthlyRent:          ParseDecimal(f.MonthlyRent),
		MonthlyCharges:       ParseDecimal(f.MonthlyCharges),
		AnnualPropertyTax:    ParseDecimal(f.AnnualPropertyTax),
		MarginalTaxRatePct:   ParseDecimal(f.MarginalTaxRatePct),
		FlatTaxRatePct:       ParseDecimal(f.FlatTaxRatePct),
		UseFlatTax:           f.UseFlatTax,
		PersonalContribution: ParseDecimal(f.PersonalContribution),
	}
}

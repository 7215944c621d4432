package rentab

import "math"

// SmartScore component weights: 40% profitability, 30% return quality,
// 30% stress resilience.
const (
	weightProfitability = 0.40
	weightReturn        = 0.30
	weightResilience    = 0.30
)

// SmartScore condenses the base result and the stress tests into a 0-100
// composite. Sub-scores are normalized against the configured targets so a
// deal exactly at target lands at 0.5 on that component and double the
// target saturates it.
func SmartScore(in Input, base Result, stress StressTests, t Thresholds) Score {
	var profitability, ret float64
	if in.Strategy == StrategyRental {
		profitability = normalizeAgainstTarget(base.GrossYieldPct, t.GrossYieldPctTarget)
		ret = cashflowScore(base.MonthlyCashflow, in.MonthlyRent)
	} else {
		profitability = normalizeAgainstTarget(base.MarginPct, t.MarginPctTarget)
		ret = normalizeAgainstTarget(base.IrrPct, t.IrrPctTarget)
	}
	resilience := (decisionScore(stress.ResaleMinus5.Decision) + decisionScore(stress.WorksPlus10.Decision)) / 2

	total := profitability*weightProfitability + ret*weightReturn + resilience*weightResilience
	return Score{
		Score: math.Round(clamp01(total) * 100),
		Components: map[string]float64{
			"profitability": round3(profitability),
			"return":        round3(ret),
			"resilience":    round3(resilience),
		},
	}
}

// normalizeAgainstTarget maps a percentage metric to [0,1] with the target
// at 0.5 and 2x target at 1.0.
func normalizeAgainstTarget(value, target float64) float64 {
	if target <= 0 {
		return 0.5
	}
	return clamp01(value / (2 * target))
}

// cashflowScore rates monthly cashflow against the rent it derives from:
// break-even sits at 0.5, keeping half the rent as cashflow saturates at 1.
func cashflowScore(cashflow, monthlyRent float64) float64 {
	if monthlyRent <= 0 {
		return 0.5
	}
	if cashflow < 0 {
		return 0
	}
	return clamp01(0.5 + cashflow/monthlyRent)
}

func decisionScore(d Decision) float64 {
	switch d {
	case DecisionGo:
		return 1
	case DecisionGoWithReserves:
		return 0.5
	default:
		return 0
	}
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}

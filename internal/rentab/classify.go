package rentab

import "fmt"

// Classify maps a computed result to GO / GO_WITH_RESERVES / NO_GO against
// the configured thresholds and returns the result with decision and
// reasons filled. Whenever the decision is not GO at least one reason
// explains which threshold failed.
func Classify(res Result, strategy Strategy, t Thresholds) Result {
	var decision Decision
	var reasons []string
	switch strategy {
	case StrategyRental:
		decision, reasons = classifyRental(res, t)
	default:
		decision, reasons = classifyResale(res, t)
	}
	res.Decision = decision
	res.Reasons = reasons
	return res
}

func classifyResale(res Result, t Thresholds) (Decision, []string) {
	if res.MarginPct < t.MarginPctNoGo {
		return DecisionNoGo, []string{
			fmt.Sprintf("Margin %.1f%% is below the %.1f%% viability floor.", res.MarginPct, t.MarginPctNoGo),
		}
	}
	var reasons []string
	if res.MarginPct < t.MarginPctTarget {
		reasons = append(reasons, fmt.Sprintf("Margin %.1f%% is below the %.1f%% target.", res.MarginPct, t.MarginPctTarget))
	}
	if res.IrrPct < t.IrrPctTarget {
		reasons = append(reasons, fmt.Sprintf("Annualized return %.1f%% is below the %.1f%% target.", res.IrrPct, t.IrrPctTarget))
	}
	if len(reasons) > 0 {
		return DecisionGoWithReserves, reasons
	}
	return DecisionGo, nil
}

func classifyRental(res Result, t Thresholds) (Decision, []string) {
	if res.MonthlyCashflow < 0 {
		return DecisionNoGo, []string{
			fmt.Sprintf("Monthly cashflow is negative (%.2f).", res.MonthlyCashflow),
		}
	}
	if res.GrossYieldPct < t.GrossYieldPctFloor {
		return DecisionNoGo, []string{
			fmt.Sprintf("Gross yield %.1f%% is below the %.1f%% floor.", res.GrossYieldPct, t.GrossYieldPctFloor),
		}
	}
	if res.GrossYieldPct < t.GrossYieldPctTarget {
		return DecisionGoWithReserves, []string{
			fmt.Sprintf("Gross yield %.1f%% is below the %.1f%% target.", res.GrossYieldPct, t.GrossYieldPctTarget),
		}
	}
	return DecisionGo, nil
}

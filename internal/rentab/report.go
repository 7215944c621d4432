package rentab

import (
	"fmt"
	"strings"
)

// BuildReport renders a snapshot as a markdown analysis report: decision,
// inputs, scenario table, stress table, SmartScore. Deterministic given the
// snapshot, so a saved snapshot can be re-rendered at any time.
func BuildReport(dealTitle string, snap Snapshot) string {
	base := snap.Scenarios.Base
	var b strings.Builder

	fmt.Fprintf(&b, "# Deal Profitability Report\n\n")
	if strings.TrimSpace(dealTitle) != "" {
		fmt.Fprintf(&b, "- Deal: %s\n", sanitize(dealTitle))
	}
	fmt.Fprintf(&b, "- Strategy: `%s`\n", snap.Input.Strategy)
	if !snap.UpdatedAt.IsZero() {
		fmt.Fprintf(&b, "- Computed: %s\n", snap.UpdatedAt.Format("2006-01-02 15:04 MST"))
	}
	fmt.Fprintf(&b, "\n%s\n\n", Disclaimer)

	fmt.Fprintf(&b, "## Decision\n\n")
	fmt.Fprintf(&b, "- Tier: `%s`\n", base.Decision)
	if snap.SmartScore != nil {
		fmt.Fprintf(&b, "- SmartScore: **%.0f / 100**\n", snap.SmartScore.Score)
	}
	for _, r := range base.Reasons {
		fmt.Fprintf(&b, "- [!] %s\n", sanitize(r))
	}
	fmt.Fprintf(&b, "\n---\n\n")

	fmt.Fprintf(&b, "## Inputs\n\n")
	fmt.Fprintf(&b, "| Field | Value |\n|-------|-------|\n")
	fmt.Fprintf(&b, "| Purchase price | %s |\n", euro(snap.Input.PurchasePrice))
	fmt.Fprintf(&b, "| Notary fee rate | %.2f%% |\n", snap.Input.NotaryFeeRatePct)
	fmt.Fprintf(&b, "| Works budget | %s |\n", euro(snap.Input.WorksBudget))
	fmt.Fprintf(&b, "| Misc fees | %s |\n", euro(snap.Input.MiscFees))
	fmt.Fprintf(&b, "| Duration | %.0f months |\n", snap.Input.DurationMonths)
	if snap.Input.Surface > 0 {
		fmt.Fprintf(&b, "| Surface | %.0f m² |\n", snap.Input.Surface)
	}
	if snap.Input.Strategy == StrategyRental {
		fmt.Fprintf(&b, "| Monthly rent | %s |\n", euro(snap.Input.MonthlyRent))
		fmt.Fprintf(&b, "| Monthly charges | %s |\n", euro(snap.Input.MonthlyCharges))
		fmt.Fprintf(&b, "| Annual property tax | %s |\n", euro(snap.Input.AnnualPropertyTax))
	} else {
		fmt.Fprintf(&b, "| Target resale price | %s |\n", euro(snap.Input.TargetResalePrice))
		fmt.Fprintf(&b, "| Personal contribution | %s |\n", euro(snap.Input.PersonalContribution))
	}
	fmt.Fprintf(&b, "\n")

	fmt.Fprintf(&b, "## Scenarios\n\n")
	writeScenarioTable(&b, snap.Input.Strategy, snap.Scenarios)

	fmt.Fprintf(&b, "## Stress Tests\n\n")
	fmt.Fprintf(&b, "Each shock is applied to the base case in isolation.\n\n")
	writeResultRows(&b, snap.Input.Strategy, []namedResult{
		{"Resale price −5%", snap.StressTests.ResaleMinus5},
		{"Works budget +10%", snap.StressTests.WorksPlus10},
	})

	if snap.SmartScore != nil {
		fmt.Fprintf(&b, "## SmartScore\n\n")
		fmt.Fprintf(&b, "| Component | Sub-score |\n|-----------|-----------|\n")
		for _, name := range []string{"profitability", "return", "resilience"} {
			if v, ok := snap.SmartScore.Components[name]; ok {
				fmt.Fprintf(&b, "| %s | %.3f |\n", name, v)
			}
		}
		fmt.Fprintf(&b, "\nComposite: **%.0f / 100**\n\n", snap.SmartScore.Score)
	}

	return b.String()
}

type namedResult struct {
	label string
	res   Result
}

func writeScenarioTable(b *strings.Builder, strategy Strategy, sc Scenarios) {
	writeResultRows(b, strategy, []namedResult{
		{"Base", sc.Base},
		{"Optimistic", sc.Optimistic},
		{"Pessimistic", sc.Pessimistic},
	})
}

func writeResultRows(b *strings.Builder, strategy Strategy, rows []namedResult) {
	if strategy == StrategyRental {
		fmt.Fprintf(b, "| Scenario | Total cost | Monthly cashflow | Gross yield | Decision |\n")
		fmt.Fprintf(b, "|----------|-----------|------------------|-------------|----------|\n")
		for _, r := range rows {
			fmt.Fprintf(b, "| %s | %s | %s | %.2f%% | `%s` |\n",
				r.label, euro(r.res.TotalCost), euro(r.res.MonthlyCashflow), r.res.GrossYieldPct, r.res.Decision)
		}
	} else {
		fmt.Fprintf(b, "| Scenario | Total cost | Gross margin | Margin | ROI | IRR | Decision |\n")
		fmt.Fprintf(b, "|----------|-----------|--------------|--------|-----|-----|----------|\n")
		for _, r := range rows {
			fmt.Fprintf(b, "| %s | %s | %s | %.2f%% | %.2f%% | %.2f%% | `%s` |\n",
				r.label, euro(r.res.TotalCost), euro(r.res.GrossMargin), r.res.MarginPct, r.res.RoiPct, r.res.IrrPct, r.res.Decision)
		}
	}
	fmt.Fprintf(b, "\n")
	for _, r := range rows {
		for _, reason := range r.res.Reasons {
			fmt.Fprintf(b, "- **%s**: %s\n", r.label, sanitize(reason))
		}
	}
	fmt.Fprintf(b, "\n")
}

func euro(v float64) string {
	return fmt.Sprintf("%.2f €", v)
}

// sanitize strips characters that would break markdown table cells.
func sanitize(s string) string {
	s = strings.ReplaceAll(s, "|", "/")
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.TrimSpace(s)
}

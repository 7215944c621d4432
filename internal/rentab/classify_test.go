package rentab

import "testing"

func TestClassifyResaleFixtureIsGo(t *testing.T) {
	// With the default thresholds (margin target 10%, IRR target 12%) the
	// reference deal clears both: margin ~19.5%, IRR ~19.5%.
	res := Classify(Compute(resaleFixture()), StrategyResale, DefaultConfig().Thresholds)
	if res.Decision != DecisionGo {
		t.Fatalf("decision: got %s want GO (reasons: %v)", res.Decision, res.Reasons)
	}
	if len(res.Reasons) != 0 {
		t.Fatalf("GO must carry no reasons, got %v", res.Reasons)
	}
}

func TestClassifyResaleTiers(t *testing.T) {
	th := DefaultConfig().Thresholds
	cases := []struct {
		name string
		res  Result
		want Decision
	}{
		{"margin below floor", Result{MarginPct: 1.5, IrrPct: 20}, DecisionNoGo},
		{"negative margin", Result{MarginPct: -4, IrrPct: -4}, DecisionNoGo},
		{"margin below target", Result{MarginPct: 6, IrrPct: 15}, DecisionGoWithReserves},
		{"irr below target", Result{MarginPct: 14, IrrPct: 8}, DecisionGoWithReserves},
		{"both at target", Result{MarginPct: 10, IrrPct: 12}, DecisionGo},
	}
	for _, tc := range cases {
		got := Classify(tc.res, StrategyResale, th)
		if got.Decision != tc.want {
			t.Fatalf("%s: got %s want %s", tc.name, got.Decision, tc.want)
		}
		if got.Decision != DecisionGo && len(got.Reasons) == 0 {
			t.Fatalf("%s: non-GO decision must carry at least one reason", tc.name)
		}
	}
}

func TestClassifyRentalTiers(t *testing.T) {
	th := DefaultConfig().Thresholds
	cases := []struct {
		name string
		res  Result
		want Decision
	}{
		{"negative cashflow", Result{MonthlyCashflow: -50, GrossYieldPct: 8}, DecisionNoGo},
		{"yield below floor", Result{MonthlyCashflow: 100, GrossYieldPct: 3}, DecisionNoGo},
		{"yield below target", Result{MonthlyCashflow: 100, GrossYieldPct: 5}, DecisionGoWithReserves},
		{"yield at target", Result{MonthlyCashflow: 100, GrossYieldPct: 6}, DecisionGo},
		{"break-even cashflow", Result{MonthlyCashflow: 0, GrossYieldPct: 7}, DecisionGo},
	}
	for _, tc := range cases {
		got := Classify(tc.res, StrategyRental, th)
		if got.Decision != tc.want {
			t.Fatalf("%s: got %s want %s (reasons: %v)", tc.name, got.Decision, tc.want, got.Reasons)
		}
		if got.Decision != DecisionGo && len(got.Reasons) == 0 {
			t.Fatalf("%s: non-GO decision must carry at least one reason", tc.name)
		}
	}
}

func TestClassifyThresholdOverride(t *testing.T) {
	strict := Thresholds{MarginPctNoGo: 2, MarginPctTarget: 25, IrrPctTarget: 25}
	res := Classify(Compute(resaleFixture()), StrategyResale, strict)
	if res.Decision != DecisionGoWithReserves {
		t.Fatalf("stricter targets should demote the fixture to GO_WITH_RESERVES, got %s", res.Decision)
	}
	if len(res.Reasons) != 2 {
		t.Fatalf("expected margin and IRR reasons, got %v", res.Reasons)
	}
}

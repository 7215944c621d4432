package rentab

// applyMultipliers returns a copy of the input with the strategy-relevant
// fields scaled. Fields the multiplier set does not touch are carried over
// unchanged, which is what keeps stress tests independent of each other.
func applyMultipliers(in Input, m MultiplierSet) Input {
	out := in
	out.TargetResalePrice = in.TargetResalePrice * m.ResalePrice
	out.WorksBudget = in.WorksBudget * m.WorksBudget
	out.MonthlyRent = in.MonthlyRent * m.MonthlyRent
	out.DurationMonths = in.DurationMonths * m.Duration
	return out
}

// BuildScenarios recomputes the full result set under the base, optimistic
// and pessimistic multiplier sets, classifying each. The multiplier
// directions enforced by Config.Validate guarantee
// optimistic.GrossMargin >= base.GrossMargin >= pessimistic.GrossMargin for
// any valid input.
func BuildScenarios(in Input, cfg Config) Scenarios {
	classify := func(variant Input) Result {
		return Classify(Compute(variant), in.Strategy, cfg.Thresholds)
	}
	return Scenarios{
		Base:        classify(in),
		Optimistic:  classify(applyMultipliers(in, cfg.Multipliers.Optimistic)),
		Pessimistic: classify(applyMultipliers(in, cfg.Multipliers.Pessimistic)),
	}
}

// BuildStressTests applies each named shock to the base input in isolation
// and reruns the formulas. Neither shock sees the other, and neither shares
// state with the scenario generator.
func BuildStressTests(in Input, cfg Config) StressTests {
	resaleShock := in
	resaleShock.TargetResalePrice = in.TargetResalePrice * (1 - cfg.Shocks.ResaleDrop)

	worksShock := in
	worksShock.WorksBudget = in.WorksBudget * (1 + cfg.Shocks.WorksOverrun)

	return StressTests{
		ResaleMinus5: Classify(Compute(resaleShock), in.Strategy, cfg.Thresholds),
		WorksPlus10:  Classify(Compute(worksShock), in.Strategy, cfg.Thresholds),
	}
}

// Analyze runs the whole engine for one input: scenario set, stress tests
// and SmartScore. UpdatedAt is left zero; the store stamps it on write.
func Analyze(in Input, cfg Config) Snapshot {
	scenarios := BuildScenarios(in, cfg)
	stress := BuildStressTests(in, cfg)
	score := SmartScore(in, scenarios.Base, stress, cfg.Thresholds)
	return Snapshot{
		Input:       in,
		Scenarios:   scenarios,
		StressTests: stress,
		SmartScore:  &score,
	}
}

package rentab

import "math"

const monthsPerYear = 12

// NotaryFee is the acquisition tax charged on the purchase price.
func NotaryFee(purchasePrice, ratePct float64) float64 {
	return purchasePrice * ratePct / 100
}

// TotalCost is strategy-independent: purchase price plus notary fee, works
// budget and misc fees.
func TotalCost(in Input) float64 {
	return in.PurchasePrice + NotaryFee(in.PurchasePrice, in.NotaryFeeRatePct) + in.WorksBudget + in.MiscFees
}

// GrossMargin is the resale profit before tax.
func GrossMargin(resalePrice, totalCost float64) float64 {
	return resalePrice - totalCost
}

// MarginPct relates the gross margin to the total cost. Zero total cost
// yields 0, never NaN.
func MarginPct(grossMargin, totalCost float64) float64 {
	return safeRatio(grossMargin, totalCost) * 100
}

// RoiPct relates the gross margin to the investor's personal contribution.
func RoiPct(grossMargin, personalContribution float64) float64 {
	return safeRatio(grossMargin, personalContribution) * 100
}

// IrrPct is a compound-interest inversion annualizing the resale return
// over the project duration: ((resale/totalCost)^(12/months) - 1) * 100.
// Zero duration, zero cost or zero resale price all yield 0.
func IrrPct(resalePrice, totalCost, durationMonths float64) float64 {
	if durationMonths <= 0 || totalCost <= 0 || resalePrice <= 0 {
		return 0
	}
	v := (math.Pow(resalePrice/totalCost, monthsPerYear/durationMonths) - 1) * 100
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// MonthlyCashflow is rent minus charges, the monthly share of the property
// tax, and any monthly debt service.
func MonthlyCashflow(monthlyRent, monthlyCharges, annualPropertyTax, monthlyDebtService float64) float64 {
	return monthlyRent - monthlyCharges - annualPropertyTax/monthsPerYear - monthlyDebtService
}

// GrossYieldPct is the annual rent over the total cost.
func GrossYieldPct(monthlyRent, totalCost float64) float64 {
	return safeRatio(monthlyRent*monthsPerYear, totalCost) * 100
}

// Compute runs the formula set for one input. Margin fields are only filled
// for the resale strategy, cashflow/yield fields only for rental. The
// decision and reasons are left empty; Classify fills them.
func Compute(in Input) Result {
	total := TotalCost(in)
	res := Result{
		NotaryFee: NotaryFee(in.PurchasePrice, in.NotaryFeeRatePct),
		TotalCost: total,
	}
	switch in.Strategy {
	case StrategyRental:
		res.MonthlyCashflow = MonthlyCashflow(in.MonthlyRent, in.MonthlyCharges, in.AnnualPropertyTax, 0)
		res.GrossYieldPct = GrossYieldPct(in.MonthlyRent, total)
	default:
		margin := GrossMargin(in.TargetResalePrice, total)
		res.GrossMargin = margin
		res.MarginPct = MarginPct(margin, total)
		res.RoiPct = RoiPct(margin, in.PersonalContribution)
		res.IrrPct = IrrPct(in.TargetResalePrice, total, in.DurationMonths)
	}
	return res
}

func safeRatio(num, den float64) float64 {
	if den <= 0 {
		return 0
	}
	v := num / den
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

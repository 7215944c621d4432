package rentab

import "time"

const Disclaimer = "Automated profitability triage based on the figures you entered. " +
	"Not a valuation, a financing offer, or investment advice."

type Strategy string

const (
	StrategyResale Strategy = "resale"
	StrategyRental Strategy = "rental"
)

type Decision string

const (
	DecisionGo             Decision = "GO"
	DecisionGoWithReserves Decision = "GO_WITH_RESERVES"
	DecisionNoGo           Decision = "NO_GO"
)

// Form is the raw user-entered questionnaire for one deal. Every numeric
// field arrives as a string exactly as typed ("250 000", "7,5", "") and is
// only interpreted by NormalizeForm.
type Form struct {
	Strategy             string `json:"strategy"`
	PurchasePrice        string `json:"purchasePrice"`
	NotaryFeeRatePct     string `json:"notaryFeeRatePct"`
	WorksBudget          string `json:"worksBudget"`
	MiscFees             string `json:"miscFees"`
	DurationMonths       string `json:"durationMonths"`
	Surface              string `json:"surface"`
	TargetResalePrice    string `json:"targetResalePrice"`
	MonthlyRent          string `json:"monthlyRent"`
	MonthlyCharges       string `json:"monthlyCharges"`
	AnnualPropertyTax    string `json:"annualPropertyTax"`
	MarginalTaxRatePct   string `json:"marginalTaxRatePct"`
	FlatTaxRatePct       string `json:"flatTaxRatePct"`
	UseFlatTax           bool   `json:"useFlatTax"`
	PersonalContribution string `json:"personalContribution"`
}

// Input is the validated numeric record the engine computes from. All
// monetary/duration/surface fields are non-negative finite numbers; absent
// form fields are zero.
type Input struct {
	Strategy             Strategy `json:"strategy"`
	PurchasePrice        float64  `json:"purchasePrice"`
	NotaryFeeRatePct     float64  `json:"notaryFeeRatePct"`
	WorksBudget          float64  `json:"worksBudget"`
	MiscFees             float64  `json:"miscFees"`
	DurationMonths       float64  `json:"durationMonths"`
	Surface              float64  `json:"surface"`
	TargetResalePrice    float64  `json:"targetResalePrice"`
	MonthlyRent          float64  `json:"monthlyRent"`
	MonthlyCharges       float64  `json:"monthlyCharges"`
	AnnualPropertyTax    float64  `json:"annualPropertyTax"`
	MarginalTaxRatePct   float64  `json:"marginalTaxRatePct"`
	FlatTaxRatePct       float64  `json:"flatTaxRatePct"`
	UseFlatTax           bool     `json:"useFlatTax"`
	PersonalContribution float64  `json:"personalContribution"`
}

// Result is one full metric set for one input variant. Margin fields carry
// meaning for the resale strategy, cashflow/yield fields for rental; the
// others are computed anyway (they are cheap and the report shows both).
type Result struct {
	NotaryFee       float64  `json:"notaryFee"`
	TotalCost       float64  `json:"totalCost"`
	GrossMargin     float64  `json:"grossMargin"`
	MarginPct       float64  `json:"marginPct"`
	RoiPct          float64  `json:"roiPct"`
	IrrPct          float64  `json:"irrPct"`
	MonthlyCashflow float64  `json:"monthlyCashflow"`
	GrossYieldPct   float64  `json:"grossYieldPct"`
	Decision        Decision `json:"decision"`
	Reasons         []string `json:"reasons"`
}

type Scenarios struct {
	Base        Result `json:"base"`
	Optimistic  Result `json:"optimistic"`
	Pessimistic Result `json:"pessimistic"`
}

type StressTests struct {
	ResaleMinus5 Result `json:"resaleMinus5"`
	WorksPlus10  Result `json:"worksPlus10"`
}

// Score is the investor SmartScore: a weighted composite on a 0-100 scale
// with its named sub-scores.
type Score struct {
	Score      float64            `json:"score"`
	Components map[string]float64 `json:"components"`
}

// Snapshot is the persisted computed state for one deal. UpdatedAt is
// stamped by the store on every write.
type Snapshot struct {
	Input       Input       `json:"input"`
	Scenarios   Scenarios   `json:"scenarios"`
	StressTests StressTests `json:"stressTests"`
	SmartScore  *Score      `json:"smartScore,omitempty"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

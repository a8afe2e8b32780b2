package model

// Benefit types reported alongside each ProductBenefit.
const (
	BenefitCashbackAndSavings = "cashback_and_savings"
	BenefitCashbackAndCredit  = "cashback_and_credit"
	BenefitFXSavings          = "fx_savings"
	BenefitInterestSavings    = "interest_savings"
	BenefitInterestIncome     = "interest_income"
	BenefitCommissionSavings  = "commission_savings"
	BenefitInflationHedge     = "inflation_hedge"
)

// CalculationDetails is the audit breakdown behind a benefit figure.
// Reason templates read these exact keys.
type CalculationDetails struct {
	Values     map[string]float64 `json:"values"`
	Labels     map[string]string  `json:"labels,omitempty"`
	Categories []string           `json:"categories,omitempty"`
}

// Value returns the numeric detail for key, or 0 when absent.
func (d CalculationDetails) Value(key string) float64 {
	return d.Values[key]
}

// Label returns the textual detail for key, or fallback when absent.
func (d CalculationDetails) Label(key, fallback string) string {
	if v, ok := d.Labels[key]; ok {
		return v
	}
	return fallback
}

// ProductBenefit is the projected annual benefit of one product for one client.
type ProductBenefit struct {
	ClientCode       int
	ProductID        int
	ProductName      string
	Kind             ProductKind
	PotentialBenefit float64 // annualized KZT
	BenefitType      string
	Details          CalculationDetails
	Confidence       float64 // 0..1
}

// Recommendation is one ranked entry of a client's shortlist.
type Recommendation struct {
	ClientCode       int
	CurrentProduct   string
	Rank             int
	ProductID        int
	ProductName      string
	Kind             ProductKind
	PotentialBenefit float64
	BenefitType      string
	Reason           string
	Confidence       float64
}

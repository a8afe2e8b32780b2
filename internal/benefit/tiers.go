package benefit

// PremiumTier is a cashback bracket of the premium card.
type PremiumTier struct {
	Label string
	Rate  float64
}

// PremiumTiers maps effective deposit to the base cashback rate, highest first.
var PremiumTiers = []struct {
	MinDeposit float64
	Tier       PremiumTier
}{
	{6000000, PremiumTier{Label: "депозит 6М+", Rate: 0.04}},
	{1000000, PremiumTier{Label: "депозит 1-6М", Rate: 0.03}},
}

// BasePremiumTier applies below the lowest bracket.
var BasePremiumTier = PremiumTier{Label: "базовый", Rate: 0.02}

func mapPremiumTier(effectiveDeposit float64) PremiumTier {
	for _, t := range PremiumTiers {
		if effectiveDeposit >= t.MinDeposit {
			return t.Tier
		}
	}
	return BasePremiumTier
}

// CapProportionally scales a and b down so that their sum equals limit,
// preserving their ratio. Sums within the limit are returned unchanged.
func CapProportionally(a, b, limit float64) (float64, float64, bool) {
	total := a + b
	if total <= limit {
		return a, b, false
	}
	if total <= 0 {
		return 0, 0, true
	}
	return limit * (a / total), limit * (b / total), true
}

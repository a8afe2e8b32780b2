// Package ranker turns computed benefits into a client's top-N shortlist.
package ranker

import (
	"sort"

	"ProductAdvisor/internal/model"
)

// TopN is the maximum shortlist length.
const TopN = 4

// Rank orders benefits by potential benefit, drops the product the client
// already holds and returns at most TopN recommendations ranked densely from 1.
// The output depends only on its arguments.
func Rank(clientCode int, currentProduct string, benefits []model.ProductBenefit) []model.Recommendation {
	sorted := make([]model.ProductBenefit, len(benefits))
	copy(sorted, benefits)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].PotentialBenefit > sorted[j].PotentialBenefit
	})

	used := make(map[string]bool, len(sorted)+1)
	if currentProduct != "" {
		used[currentProduct] = true
	}
	var picked []model.ProductBenefit
	for _, b := range sorted {
		if len(picked) >= TopN {
			break
		}
		if used[b.ProductName] {
			continue
		}
		picked = append(picked, b)
		used[b.ProductName] = true
	}

	out := make([]model.Recommendation, 0, len(picked))
	for i, b := range picked {
		out = append(out, model.Recommendation{
			ClientCode:       clientCode,
			CurrentProduct:   currentProduct,
			Rank:             i + 1,
			ProductID:        b.ProductID,
			ProductName:      b.ProductName,
			Kind:             b.Kind,
			PotentialBenefit: b.PotentialBenefit,
			BenefitType:      b.BenefitType,
			Reason:           Reason(b),
			Confidence:       b.Confidence,
		})
	}
	return out
}

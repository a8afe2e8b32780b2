package report

import (
	"sort"

	"ProductAdvisor/internal/storage"
)

// TopProductsLimit bounds Summary.TopProducts.
const TopProductsLimit = 5

// ProductCount is how often a product appears in any shortlist slot.
type ProductCount struct {
	Name  string
	Count int
}

// Summary aggregates the recommendation table.
type Summary struct {
	TotalClients               int
	ClientsWithRecommendations int
	RecommendationRate         float64
	TopProducts                []ProductCount
	AverageTopBenefit          float64
	TotalTopBenefit            float64
}

// Summarize computes statistics over the pivoted table. Top-1 benefits of
// zero are left out of the average.
func Summarize(table []storage.RecommendationRow) *Summary {
	s := &Summary{TotalClients: len(table)}
	freq := map[string]int{}
	var benefits int

	for _, row := range table {
		if row.Products[0] != "" {
			s.ClientsWithRecommendations++
		}
		for _, p := range row.Products {
			if p != "" {
				freq[p]++
			}
		}
		if row.Products[0] != "" && row.Benefits[0] != 0 {
			s.TotalTopBenefit += row.Benefits[0]
			benefits++
		}
	}

	if s.TotalClients > 0 {
		s.RecommendationRate = float64(s.ClientsWithRecommendations) / float64(s.TotalClients)
	}
	if benefits > 0 {
		s.AverageTopBenefit = s.TotalTopBenefit / float64(benefits)
	}

	for name, n := range freq {
		s.TopProducts = append(s.TopProducts, ProductCount{Name: name, Count: n})
	}
	sort.Slice(s.TopProducts, func(i, j int) bool {
		a, b := s.TopProducts[i], s.TopProducts[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return a.Name < b.Name
	})
	if len(s.TopProducts) > TopProductsLimit {
		s.TopProducts = s.TopProducts[:TopProductsLimit]
	}
	return s
}

package services

import (
	"sort"

	"cluster-pricing/models"
)

// SummarizeClusters counts products per cluster key. Rows are ordered by
// product count descending, then by cluster key ascending.
func SummarizeClusters(clustered []models.ClusteredProduct) []models.ClusterSummary {
	counts := make(map[models.ClusterKey]int)
	for _, cp := range clustered {
		counts[cp.ClusterKey]++
	}

	summary := make([]models.ClusterSummary, 0, len(counts))
	for key, n := range counts {
		summary = append(summary, models.ClusterSummary{ClusterKey: key, ProductCount: n})
	}
	sort.Slice(summary, func(i, j int) bool {
		if summary[i].ProductCount != summary[j].ProductCount {
			return summary[i].ProductCount > summary[j].ProductCount
		}
		return summary[i].ClusterKey < summary[j].ClusterKey
	})
	return summary
}

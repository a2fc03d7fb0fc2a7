package portfolio

import (
	"github.com/declanharris/portfolio-tracker/internal/models"
)

// Aggregate groups a snapshot's current values by category label. Labels are
// used verbatim: case-sensitive, untrimmed, and the empty string is a valid
// category. Output order is first-seen holding order so downstream rendering
// is deterministic. An empty snapshot yields an empty slice.
func Aggregate(snapshot models.PortfolioSnapshot) []models.CategoryAllocation {
	index := make(map[string]int)
	allocations := make([]models.CategoryAllocation, 0, len(snapshot.Holdings))

	for _, h := range snapshot.Holdings {
		if i, ok := index[h.Category]; ok {
			allocations[i].Value = allocations[i].Value.Add(h.CurrentValue)
			continue
		}
		index[h.Category] = len(allocations)
		allocations = append(allocations, models.CategoryAllocation{
			Category: h.Category,
			Value:    h.CurrentValue,
		})
	}

	return allocations
}

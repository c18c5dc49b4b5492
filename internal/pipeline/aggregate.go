package pipeline

import (
	"github.com/shopspring/decimal"

	"github.com/sells-group/autodoc/internal/model"
)

// Aggregate computes the summary for one run's rows: component count, exact
// decimal total cost, and breakdowns by status and category. It is pure; an
// empty input yields a zero-count aggregate with empty breakdowns.
func Aggregate(rows []model.Component) model.Aggregate {
	agg := model.Aggregate{
		ComponentCount:    len(rows),
		TotalCost:         decimal.Zero,
		StatusBreakdown:   make(map[model.ComponentStatus]int, 4),
		CategoryBreakdown: make(map[string]int),
	}

	for _, row := range rows {
		agg.TotalCost = agg.TotalCost.Add(row.LineCost())
		agg.StatusBreakdown[row.Status]++
		if row.Category != "" {
			agg.CategoryBreakdown[row.Category]++
		}
	}

	return agg
}

package pipeline

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/autodoc/internal/model"
)

func comp(name string, qty int, cost string, status model.ComponentStatus) model.Component {
	return model.Component{
		Name:     name,
		Quantity: qty,
		UnitCost: decimal.RequireFromString(cost),
		Status:   status,
	}
}

func TestAggregate(t *testing.T) {
	rows := []model.Component{
		comp("Resistor", 10, "0.05", model.StatusApproved),
		comp("Capacitor", 5, "0.20", model.StatusPending),
	}

	agg := Aggregate(rows)

	assert.Equal(t, 2, agg.ComponentCount)
	assert.True(t, agg.TotalCost.Equal(decimal.RequireFromString("1.50")), "total = %s", agg.TotalCost)
	assert.Equal(t, map[model.ComponentStatus]int{
		model.StatusApproved: 1,
		model.StatusPending:  1,
	}, agg.StatusBreakdown)
	assert.Empty(t, agg.CategoryBreakdown)
}

func TestAggregate_CountMatchesRows(t *testing.T) {
	rows := []model.Component{
		comp("A", 1, "1", model.StatusApproved),
		comp("B", 2, "2", model.StatusUnknown),
		comp("C", 3, "3", model.StatusRejected),
		comp("D", 0, "4", model.StatusApproved),
	}
	assert.Equal(t, len(rows), Aggregate(rows).ComponentCount)
}

func TestAggregate_ExactDecimal(t *testing.T) {
	// 0.1 + 0.2 style sums drift under float64; they must not here.
	rows := []model.Component{
		comp("A", 1, "0.1", model.StatusApproved),
		comp("B", 1, "0.2", model.StatusApproved),
		comp("C", 3, "0.1", model.StatusApproved),
	}

	agg := Aggregate(rows)
	assert.Equal(t, "0.6", agg.TotalCost.String())
}

func TestAggregate_OrderIndependent(t *testing.T) {
	rows := []model.Component{
		comp("A", 7, "1.13", model.StatusApproved),
		comp("B", 3, "0.07", model.StatusPending),
		comp("C", 11, "2.99", model.StatusRejected),
	}
	reversed := []model.Component{rows[2], rows[1], rows[0]}

	assert.True(t, Aggregate(rows).TotalCost.Equal(Aggregate(reversed).TotalCost))
}

func TestAggregate_Idempotent(t *testing.T) {
	rows := []model.Component{
		comp("A", 2, "1.25", model.StatusApproved),
		comp("B", 4, "0.50", model.StatusUnknown),
	}

	first := Aggregate(rows)
	second := Aggregate(rows)

	assert.Equal(t, first.ComponentCount, second.ComponentCount)
	assert.True(t, first.TotalCost.Equal(second.TotalCost))
	assert.Equal(t, first.StatusBreakdown, second.StatusBreakdown)
}

func TestAggregate_Empty(t *testing.T) {
	agg := Aggregate(nil)

	assert.Equal(t, 0, agg.ComponentCount)
	assert.True(t, agg.TotalCost.IsZero())
	assert.Empty(t, agg.StatusBreakdown)
	assert.Empty(t, agg.CategoryBreakdown)
}

func TestAggregate_Categories(t *testing.T) {
	rows := []model.Component{
		comp("Main Breaker", 1, "412.50", model.StatusApproved),
		comp("Spare Breaker", 1, "412.50", model.StatusPending),
		comp("Bus Bar", 3, "86.00", model.StatusApproved),
	}
	rows[0].Category = "Breaker"
	rows[1].Category = "Breaker"
	rows[2].Category = "Bus Bar"

	agg := Aggregate(rows)

	require.Equal(t, map[string]int{"Breaker": 2, "Bus Bar": 1}, agg.CategoryBreakdown)
	assert.True(t, agg.TotalCost.Equal(decimal.RequireFromString("1083.00")), "total = %s", agg.TotalCost)
}

package model

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// ComponentStatus is the normalized review state of a component row.
type ComponentStatus string

const (
	StatusApproved    ComponentStatus = "approved"
	StatusPending     ComponentStatus = "pending"
	StatusUnderReview ComponentStatus = "under_review"
	StatusRejected    ComponentStatus = "rejected"
	StatusUnknown     ComponentStatus = "unknown"
)

// knownStatuses maps folded status spellings to their canonical value.
var knownStatuses = map[string]ComponentStatus{
	"approved":     StatusApproved,
	"pending":      StatusPending,
	"under_review": StatusUnderReview,
	"rejected":     StatusRejected,
}

// NormalizeStatus folds case, spaces, and hyphens, then matches against the
// known status set. Unrecognized or empty values normalize to StatusUnknown
// rather than failing; status is informational, not structural.
func NormalizeStatus(raw string) ComponentStatus {
	folded := strings.ToLower(strings.TrimSpace(raw))
	folded = strings.ReplaceAll(folded, " ", "_")
	folded = strings.ReplaceAll(folded, "-", "_")
	if s, ok := knownStatuses[folded]; ok {
		return s
	}
	return StatusUnknown
}

// Component is one validated component specification row.
type Component struct {
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	UnitCost  decimal.Decimal `json:"unit_cost"`
	Status    ComponentStatus `json:"status"`
	Reference string          `json:"reference,omitempty"`
	Category  string          `json:"category,omitempty"`
	Notes     string          `json:"notes,omitempty"`
}

// LineCost is quantity x unit cost for this row.
func (c Component) LineCost() decimal.Decimal {
	return c.UnitCost.Mul(decimal.NewFromInt(int64(c.Quantity)))
}

// RawComponent holds the untyped cell values for one data row, keyed by
// canonical column. Readers populate it; ParseComponent validates it.
type RawComponent struct {
	Name      string
	Quantity  string
	UnitCost  string
	Status    string
	Reference string
	Category  string
	Notes     string
}

// RowError reports a validation failure for a single data row. Row is the
// 1-based data row number (header row excluded).
type RowError struct {
	Row    int    `json:"row"`
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

func (e *RowError) Error() string {
	return fmt.Sprintf("row %d: %s: %s", e.Row, e.Field, e.Reason)
}

// ParseComponent validates one raw row and produces a Component.
// Name must be non-blank. Quantity must be a non-negative integer and
// defaults to 1 when blank. Unit cost must be a non-negative decimal and
// defaults to 0 when blank. Status is normalized, never rejected.
func ParseComponent(raw RawComponent, row int) (Component, *RowError) {
	name := strings.TrimSpace(raw.Name)
	if name == "" {
		return Component{}, &RowError{Row: row, Field: "name", Reason: "name is required"}
	}

	qty := 1
	if q := strings.TrimSpace(raw.Quantity); q != "" {
		n, err := strconv.Atoi(q)
		if err != nil {
			// Spreadsheets often store integers as "10.0"; accept a
			// fractionless float before giving up.
			f, ferr := strconv.ParseFloat(q, 64)
			if ferr != nil || f != float64(int64(f)) {
				return Component{}, &RowError{Row: row, Field: "quantity", Reason: fmt.Sprintf("not an integer: %q", q)}
			}
			n = int(f)
		}
		if n < 0 {
			return Component{}, &RowError{Row: row, Field: "quantity", Reason: fmt.Sprintf("negative quantity: %d", n)}
		}
		qty = n
	}

	cost := decimal.Zero
	if c := strings.TrimSpace(raw.UnitCost); c != "" {
		c = strings.TrimPrefix(c, "$")
		c = strings.ReplaceAll(c, ",", "")
		d, err := decimal.NewFromString(c)
		if err != nil {
			return Component{}, &RowError{Row: row, Field: "unit_cost", Reason: fmt.Sprintf("not a number: %q", strings.TrimSpace(raw.UnitCost))}
		}
		if d.IsNegative() {
			return Component{}, &RowError{Row: row, Field: "unit_cost", Reason: fmt.Sprintf("negative unit cost: %s", d)}
		}
		cost = d
	}

	return Component{
		Name:      name,
		Quantity:  qty,
		UnitCost:  cost,
		Status:    NormalizeStatus(raw.Status),
		Reference: strings.TrimSpace(raw.Reference),
		Category:  strings.TrimSpace(raw.Category),
		Notes:     strings.TrimSpace(raw.Notes),
	}, nil
}

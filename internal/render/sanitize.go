package render

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"

	"github.com/sells-group/autodoc/internal/model"
)

var (
	slugUnsafe   = regexp.MustCompile(`[^A-Za-z0-9._-]+`)
	slugCollapse = regexp.MustCompile(`_{2,}`)
)

// fileName builds the unique output name: report id plus a filesystem-safe
// project slug.
func fileName(reportID, project string) string {
	return fmt.Sprintf("%s_%s.pdf", reportID, projectSlug(project))
}

// projectSlug makes a project name safe to embed in a file name. Spaces
// become underscores, anything outside [A-Za-z0-9._-] is folded away, and
// an empty result falls back to "project".
func projectSlug(project string) string {
	s := strings.TrimSpace(project)
	s = strings.ReplaceAll(s, " ", "_")
	s = slugUnsafe.ReplaceAllString(s, "_")
	s = slugCollapse.ReplaceAllString(s, "_")
	s = strings.Trim(s, "._-")
	if s == "" {
		return "project"
	}
	return s
}

// sanitizeCell makes a value safe to embed in the document: newlines and
// tabs fold to spaces, other control characters are dropped. Values are
// cleaned rather than rejected; a messy cell is cosmetic, not fatal.
func sanitizeCell(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r == '\n' || r == '\r' || r == '\t':
			b.WriteRune(' ')
		case unicode.IsControl(r):
		default:
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}

// formatMoney renders a decimal as "$1,234.50".
func formatMoney(d decimal.Decimal) string {
	fixed := d.StringFixed(2)

	neg := strings.HasPrefix(fixed, "-")
	fixed = strings.TrimPrefix(fixed, "-")

	intPart, fracPart, _ := strings.Cut(fixed, ".")
	var grouped []byte
	for i, c := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			grouped = append(grouped, ',')
		}
		grouped = append(grouped, byte(c))
	}

	prefix := "$"
	if neg {
		prefix = "-$"
	}
	return prefix + string(grouped) + "." + fracPart
}

var statusLabels = map[model.ComponentStatus]string{
	model.StatusApproved:    "Approved",
	model.StatusPending:     "Pending",
	model.StatusUnderReview: "Under Review",
	model.StatusRejected:    "Rejected",
	model.StatusUnknown:     "Unknown",
}

func statusLabel(s model.ComponentStatus) string {
	if label, ok := statusLabels[s]; ok {
		return label
	}
	return string(s)
}

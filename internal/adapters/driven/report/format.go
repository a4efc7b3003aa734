package report

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/custodia-labs/conciliar/internal/core/domain"
)

// FormatAmount renders n with thousands separators and every stored
// decimal digit, e.g. "$4,123,617.55". Invalid amounts render as "$0".
func FormatAmount(n decimal.NullDecimal) string {
	d := domain.DisplayAmount(n)

	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Neg()
	}

	whole, frac, _ := strings.Cut(d.String(), ".")
	out := sign + "$" + groupThousands(whole)
	if frac != "" {
		out += "." + frac
	}
	return out
}

func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

// FormatRate renders a match rate percentage with one decimal.
func FormatRate(rate float64) string {
	return fmt.Sprintf("%.1f%%", rate)
}

// Criteria explains which keys led to each bucket.
func Criteria(b domain.Bucket) string {
	switch b {
	case domain.BucketUnpaid:
		return "Policy, receipt and start date match in both systems"
	case domain.BucketMissingReceipt:
		return "Policy and start date match; the primary source has no receipt"
	case domain.BucketUpdateSystem:
		return "Policy and start date match; receipts differ"
	case domain.BucketOnlyExternal:
		return "Policy and start date not found in internal data"
	case domain.BucketOnlyInternal:
		return "Policy and start date not found in insurer data"
	default:
		return ""
	}
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

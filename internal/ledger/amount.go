package ledger

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Tolerance is the smallest imbalance that is no longer treated as zero.
var Tolerance = decimal.New(1, -2)

// ParseAmount parses a split amount. Blank input is zero.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	return d, nil
}

// FormatAmount renders an amount with two decimal places.
func FormatAmount(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// Sum adds amounts.
func Sum(amounts []decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}

// IsBalanced reports whether sum is within Tolerance of zero.
func IsBalanced(sum decimal.Decimal) bool {
	return sum.Abs().LessThan(Tolerance)
}

// CheckBalanced returns an *UnbalancedError when amounts do not net to zero.
func CheckBalanced(amounts []decimal.Decimal) error {
	sum := Sum(amounts)
	if !IsBalanced(sum) {
		return &UnbalancedError{Sum: sum}
	}
	return nil
}

// Balancing returns the amount that brings others to zero.
func Balancing(others []decimal.Decimal) decimal.Decimal {
	return Sum(others).Neg()
}

// RunningBalance returns the cumulative sum at each position of amounts.
func RunningBalance(amounts []decimal.Decimal) []decimal.Decimal {
	out := make([]decimal.Decimal, len(amounts))
	total := decimal.Zero
	for i, a := range amounts {
		total = total.Add(a)
		out[i] = total
	}
	return out
}

package currency

import (
	"fmt"
	"math"
)

// FormatINR renders an amount with Indian digit grouping, e.g.
// FormatINR(1234567) == "₹12,34,567". The last group is three digits, every
// group above it two.
func FormatINR(amount float64) string {
	rounded := math.Round(amount)

	negative := rounded < 0
	if negative {
		rounded = -rounded
	}

	intStr := fmt.Sprintf("%.0f", rounded)
	result := "₹" + groupIndian(intStr)
	if negative {
		result = "-" + result
	}

	return result
}

func groupIndian(s string) string {
	n := len(s)
	if n <= 3 {
		return s
	}

	head := s[:n-3]
	tail := s[n-3:]

	grouped := ""
	for len(head) > 2 {
		grouped = "," + head[len(head)-2:] + grouped
		head = head[:len(head)-2]
	}

	return head + grouped + "," + tail
}

package budget

import (
	"math"
	"strconv"
	"strings"
)

// round2 rounds to two decimal places, half away from zero.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// formatMoney renders an amount with thousands separators; the fractional
// part is shown only when non-zero (1000 -> "1,000", 1234.5 -> "1,234.50").
func formatMoney(v float64) string {
	neg := v < 0
	if neg {
		v = -v
	}
	v = round2(v)

	whole := math.Trunc(v)
	frac := round2(v - whole)

	digits := strconv.FormatFloat(whole, 'f', 0, 64)
	var b strings.Builder
	for i, d := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(d)
	}
	out := b.String()
	if frac > 0 {
		cents := strconv.FormatFloat(frac, 'f', 2, 64)
		out += cents[1:] // drop the leading zero, keep ".NN"
	}
	if neg {
		out = "-" + out
	}
	return out
}

// formatScore renders a relative score without trailing zeros (150 -> "150",
// 62.5 -> "62.5").
func formatScore(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// parseDollar extracts the leading dollar figure from a formatted string such
// as "$123.45 (150% ROI)". Returns 0 when no figure is present.
func parseDollar(s string) float64 {
	i := strings.IndexByte(s, '$')
	if i < 0 {
		return 0
	}
	j := i + 1
	for j < len(s) && (s[j] == '.' || (s[j] >= '0' && s[j] <= '9')) {
		j++
	}
	if j == i+1 {
		return 0
	}
	v, err := strconv.ParseFloat(s[i+1:j], 64)
	if err != nil {
		return 0
	}
	return v
}

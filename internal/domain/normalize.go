package domain

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

var (
	// currencyRateRe matches a number carrying a peso marker, e.g. "₱50" or
	// "PHP 25.50". In cells like "First 3 hours, ₱50" the marked number is
	// the rate; the bare "3" is a duration.
	currencyRateRe = regexp.MustCompile(`(?:₱|(?i:PHP)\s*)(\d+(?:\.\d+)?)`)

	// numericRe extracts the first integer-or-decimal substring from free
	// text. Commas are stripped before matching so "1,500.00" stays one number.
	numericRe = regexp.MustCompile(`\d+(?:\.\d+)?`)

	// discountRe matches any wording the sheets use for a fee concession.
	discountRe = regexp.MustCompile(`(?i)EXEMPT|DISCOUNT|YES`)
)

// YesNoToInt converts a yes/no cell to 1 or 0. Text starting with "Y"
// (case-insensitive, trimmed) is 1, starting with "N" is 0, numeric text is
// 1 when nonzero. Anything else, including blanks, is 0.
func YesNoToInt(value string) int {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0
	}
	switch value[0] {
	case 'Y', 'y':
		return 1
	case 'N', 'n':
		return 0
	}
	if v, err := strconv.ParseFloat(value, 64); err == nil {
		if v != 0 && !math.IsNaN(v) {
			return 1
		}
		return 0
	}
	return 0
}

// DiscountToInt converts a discount cell to 1 when it mentions an
// exemption, discount, or plain "yes" anywhere, else 0.
func DiscountToInt(value string) int {
	if discountRe.MatchString(value) {
		return 1
	}
	return 0
}

// RateToFloat extracts a parking rate from a cell. Plain numbers pass
// through. In free text a peso-marked number wins over the first bare
// number ("First 3 hours, ₱50" -> 50, not 3). Unparseable input and
// non-finite values collapse to 0.
func RateToFloat(value string) float64 {
	value = strings.ReplaceAll(strings.TrimSpace(value), ",", "")
	if value == "" {
		return 0
	}

	if v, err := strconv.ParseFloat(value, 64); err == nil {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0
		}
		return v
	}

	match := ""
	if m := currencyRateRe.FindStringSubmatch(value); m != nil {
		match = m[1]
	} else {
		match = numericRe.FindString(value)
	}
	if match == "" {
		return 0
	}
	v, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return 0
	}
	return v
}

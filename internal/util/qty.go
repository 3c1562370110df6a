package util

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	groupedPattern = regexp.MustCompile(`^[+-]?\d{1,3}(?:,\d{3})+(?:\.\d+)?$`)
	plainPattern   = regexp.MustCompile(`^[+-]?(?:\d+(?:\.\d*)?|\.\d+)(?:[eE]([+-]?\d+))?$`)
)

// maxQuantityExponent bounds scientific notation in stock cells. Larger
// exponents are not stock counts and would make decimal rescaling unbounded.
const maxQuantityExponent = 18

// ParseQuantity coerces a stock cell into a decimal. Blank cells are zero and
// valid; anything that is not a plain number is zero and not valid.
func ParseQuantity(input string) (decimal.Decimal, bool) {
	token := compactNumeric(input)
	if token == "" {
		return decimal.Zero, true
	}
	token = normalizeNumericToken(token)
	m := plainPattern.FindStringSubmatch(token)
	if m == nil {
		return decimal.Zero, false
	}
	if m[1] != "" && !exponentWithin(m[1], maxQuantityExponent) {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(token)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

func compactNumeric(input string) string {
	s := strings.ReplaceAll(input, "\u00A0", "")
	s = strings.ReplaceAll(s, " ", "")
	return strings.TrimSpace(s)
}

// normalizeNumericToken only drops comma digit grouping ("1,250" → "1250").
// Decimal commas are not interpreted.
func normalizeNumericToken(token string) string {
	if groupedPattern.MatchString(token) {
		return strings.ReplaceAll(token, ",", "")
	}
	return token
}

// exponentWithin reports whether a signed exponent literal lies in [-limit, limit].
func exponentWithin(exp string, limit int) bool {
	n, err := strconv.Atoi(strings.TrimPrefix(exp, "+"))
	if err != nil {
		return false
	}
	return n >= -limit && n <= limit
}

package util

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

var (
	reSpaces       = regexp.MustCompile(`\s+`)
	reFloatInteger = regexp.MustCompile(`^([+-]?\d+)\.0+$`)
	reExponent     = regexp.MustCompile(`^[+-]?\d+(?:\.\d+)?[eE](\+?\d+)$`)

	lower = cases.Lower(language.Und)
)

// maxKeyExponent covers every barcode length; larger exponents stay as text.
const maxKeyExponent = 20

// NormalizeHeader folds a column name for keyword matching: NFKC, lower case,
// no BOM, single spaces.
func NormalizeHeader(input string) string {
	s := strings.TrimPrefix(input, "\ufeff")
	s = norm.NFKC.String(s)
	s = strings.ReplaceAll(s, "\u00A0", " ")
	s = lower.String(s)
	s = reSpaces.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// NormalizeKey turns an identifier cell into a join key. Float artifacts such
// as "1234567890.0" and integral exponent forms such as "5.0123E+12" collapse
// to their integer text. Exponents above maxKeyExponent and everything else
// are only trimmed, so leading zeros of textual barcodes survive.
func NormalizeKey(input string) string {
	s := strings.TrimSpace(strings.ReplaceAll(input, "\u00A0", " "))
	if m := reFloatInteger.FindStringSubmatch(s); m != nil {
		return m[1]
	}
	if m := reExponent.FindStringSubmatch(s); m != nil && exponentWithin(m[1], maxKeyExponent) {
		if d, err := decimal.NewFromString(s); err == nil && d.IsInteger() {
			return d.String()
		}
	}
	return s
}

// NormalizeSpaces collapses runs of whitespace and trims the result.
func NormalizeSpaces(input string) string {
	return strings.TrimSpace(reSpaces.ReplaceAllString(input, " "))
}

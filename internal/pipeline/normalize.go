package pipeline

import (
	"strings"

	"stockdiff/internal"
	"stockdiff/internal/util"
)

// ItemFilter reports whether a row with the given item code is left out of
// the comparison (packaging, containers and other non-sellable units).
type ItemFilter func(itemCode string) bool

// PrefixFilter excludes item codes starting with any of prefixes. Matching is
// case-sensitive, as item codes are.
func PrefixFilter(prefixes ...string) ItemFilter {
	clean := make([]string, 0, len(prefixes))
	for _, p := range prefixes {
		if p = strings.TrimSpace(p); p != "" {
			clean = append(clean, p)
		}
	}
	return func(itemCode string) bool {
		code := strings.TrimSpace(itemCode)
		for _, p := range clean {
			if strings.HasPrefix(code, p) {
				return true
			}
		}
		return false
	}
}

type Projection struct {
	Rows              []internal.NormalizedRow
	MissingKeys       int
	Excluded          int
	InvalidQuantities int
}

// NormalizeRows projects a raw table onto its resolved columns. Rows without
// a key are dropped, as are rows whose item code the exclude filter rejects.
// Unparseable quantities count as zero.
func NormalizeRows(table internal.RawTable, cols internal.TableColumns, exclude ItemFilter) Projection {
	out := Projection{Rows: make([]internal.NormalizedRow, 0, len(table.Rows))}
	for r := range table.Rows {
		key := util.NormalizeKey(table.Cell(r, cols.Key.Index))
		if key == "" {
			out.MissingKeys++
			continue
		}

		var itemCode *string
		if cols.ItemCode.Found {
			itemCode = util.OptionalString(table.Cell(r, cols.ItemCode.Index))
		}
		if exclude != nil && itemCode != nil && exclude(*itemCode) {
			out.Excluded++
			continue
		}

		qty, ok := util.ParseQuantity(table.Cell(r, cols.Quantity.Index))
		if !ok {
			out.InvalidQuantities++
		}

		row := internal.NormalizedRow{Key: key, Quantity: qty, ItemCode: itemCode}
		if cols.Description.Found {
			row.Description = util.OptionalString(table.Cell(r, cols.Description.Index))
		}
		out.Rows = append(out.Rows, row)
	}
	return out
}

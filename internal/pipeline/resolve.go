package pipeline

import (
	"strings"

	"stockdiff/internal"
	"stockdiff/internal/util"
)

// Rules is the ranked keyword table for each column role. Keywords are listed
// in priority order and matched as case-insensitive substrings.
type Rules struct {
	Identifier     []string
	Item           []string
	SourceQuantity []string
	TargetQuantity []string
	Description    []string
}

func DefaultRules() Rules {
	return Rules{
		Identifier:     []string{"ean"},
		Item:           []string{"item", "number"},
		SourceQuantity: []string{"on hand", "stock", "qty"},
		TargetQuantity: []string{"atp qty", "stock", "qty"},
		Description:    []string{"description"},
	}
}

// Keywords returns the keyword list for a role as seen from one side.
func (r Rules) Keywords(side internal.Side, role internal.ColumnRole) []string {
	switch role {
	case internal.RoleIdentifier:
		return r.Identifier
	case internal.RoleSecondaryIdentifier:
		return r.Item
	case internal.RoleDescription:
		return r.Description
	case internal.RoleQuantity:
		if side == internal.SideTarget {
			return r.TargetQuantity
		}
		return r.SourceQuantity
	default:
		return nil
	}
}

// DedupeColumns drops repeated header names, keeping the first occurrence.
func DedupeColumns(columns []string) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, len(columns))
	for _, c := range columns {
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out
}

// Resolve finds the column a keyword list points at. Keywords are tried in
// priority order and, for each keyword, columns in their original order; the
// first hit wins. A miss is reported through ok, never as an error.
func Resolve(columns []string, keywords []string) (name string, ok bool) {
	cols := DedupeColumns(columns)
	idx := findHeaderIndex(normalizeHeaders(cols), normalizeKeywords(keywords), nil)
	if idx < 0 {
		return "", false
	}
	return cols[idx], true
}

// ResolveColumn binds a role to a column of header. Indexes in skip are
// treated as already taken by another role.
func ResolveColumn(header []string, role internal.ColumnRole, keywords []string, skip map[int]bool) internal.ResolvedColumn {
	blocked := copySkip(skip)
	for i := range header {
		if firstIndexOf(header, header[i]) != i {
			blocked[i] = true
		}
	}
	idx := findHeaderIndex(normalizeHeaders(header), normalizeKeywords(keywords), blocked)
	if idx < 0 {
		return internal.ResolvedColumn{Role: role, Index: -1}
	}
	return internal.ResolvedColumn{Role: role, Name: header[idx], Index: idx, Found: true}
}

// ResolveTables resolves every role on both headers and picks the join key.
// The EAN key is used only when both sides expose one; otherwise both sides
// must expose an item number. Missing keys or quantities are fatal and
// reported together as a *internal.ResolutionError.
func ResolveTables(source, target []string, rules Rules) (internal.KeyKind, internal.TableColumns, internal.TableColumns, error) {
	srcEAN, srcCols := ResolveSide(source, internal.SideSource, rules)
	tgtEAN, tgtCols := ResolveSide(target, internal.SideTarget, rules)

	var kind internal.KeyKind
	switch {
	case srcEAN.Found && tgtEAN.Found:
		kind = internal.KeyEAN
		srcCols.Key, tgtCols.Key = srcEAN, tgtEAN
	case srcCols.ItemCode.Found && tgtCols.ItemCode.Found:
		kind = internal.KeyItem
		srcCols.Key, tgtCols.Key = srcCols.ItemCode, tgtCols.ItemCode
		srcCols.Key.Role, tgtCols.Key.Role = internal.RoleIdentifier, internal.RoleIdentifier
	}

	var missing []internal.MissingColumn
	if kind == "" {
		missing = append(missing, missingKeys(srcEAN, srcCols, internal.SideSource)...)
		missing = append(missing, missingKeys(tgtEAN, tgtCols, internal.SideTarget)...)
		if len(missing) == 0 {
			// each side has some key, but not the same kind
			missing = append(missing,
				internal.MissingColumn{Side: sideWithout(srcEAN, internal.SideSource, internal.SideTarget), Role: internal.RoleIdentifier},
				internal.MissingColumn{Side: sideWithout(srcCols.ItemCode, internal.SideSource, internal.SideTarget), Role: internal.RoleSecondaryIdentifier},
			)
		}
	}
	if !srcCols.Quantity.Found {
		missing = append(missing, internal.MissingColumn{Side: internal.SideSource, Role: internal.RoleQuantity})
	}
	if !tgtCols.Quantity.Found {
		missing = append(missing, internal.MissingColumn{Side: internal.SideTarget, Role: internal.RoleQuantity})
	}

	if len(missing) > 0 {
		return "", srcCols, tgtCols, &internal.ResolutionError{
			Missing:       missing,
			SourceColumns: append([]string(nil), source...),
			TargetColumns: append([]string(nil), target...),
		}
	}
	return kind, srcCols, tgtCols, nil
}

// ResolveSide binds every role on one header without choosing a join key. It
// returns the EAN column separately from the other roles. Columns are claimed
// in a fixed order so that one header never serves two roles: EAN,
// description, quantity, item number.
func ResolveSide(header []string, side internal.Side, rules Rules) (internal.ResolvedColumn, internal.TableColumns) {
	claimed := map[int]bool{}
	claim := func(role internal.ColumnRole) internal.ResolvedColumn {
		col := ResolveColumn(header, role, rules.Keywords(side, role), claimed)
		if col.Found {
			claimed[col.Index] = true
		}
		return col
	}

	ean := claim(internal.RoleIdentifier)
	cols := internal.TableColumns{}
	cols.Description = claim(internal.RoleDescription)
	cols.Quantity = claim(internal.RoleQuantity)
	cols.ItemCode = claim(internal.RoleSecondaryIdentifier)
	cols.Key = internal.ResolvedColumn{Role: internal.RoleIdentifier, Index: -1}
	return ean, cols
}

func missingKeys(ean internal.ResolvedColumn, cols internal.TableColumns, side internal.Side) []internal.MissingColumn {
	if ean.Found || cols.ItemCode.Found {
		return nil
	}
	return []internal.MissingColumn{
		{Side: side, Role: internal.RoleIdentifier},
		{Side: side, Role: internal.RoleSecondaryIdentifier},
	}
}

func sideWithout(col internal.ResolvedColumn, self, other internal.Side) internal.Side {
	if col.Found {
		return other
	}
	return self
}

func findHeaderIndex(headers []string, probes []string, skip map[int]bool) int {
	for _, probe := range probes {
		if probe == "" {
			continue
		}
		for i, h := range headers {
			if skip[i] {
				continue
			}
			if strings.Contains(h, probe) {
				return i
			}
		}
	}
	return -1
}

func normalizeHeaders(headers []string) []string {
	out := make([]string, 0, len(headers))
	for _, h := range headers {
		out = append(out, util.NormalizeHeader(h))
	}
	return out
}

func normalizeKeywords(keywords []string) []string {
	out := make([]string, 0, len(keywords))
	for _, k := range keywords {
		out = append(out, util.NormalizeHeader(k))
	}
	return out
}

func firstIndexOf(header []string, name string) int {
	for i, h := range header {
		if h == name {
			return i
		}
	}
	return -1
}

func copySkip(in map[int]bool) map[int]bool {
	out := make(map[int]bool, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

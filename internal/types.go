package internal

import (
	"strings"

	"github.com/shopspring/decimal"
)

type InputFormat string

const (
	FormatXLSX InputFormat = "xlsx"
	FormatCSV  InputFormat = "csv"
	FormatHTML InputFormat = "html"
	FormatEML  InputFormat = "eml"
)

// RawTable is one spreadsheet as loaded: a header row followed by data rows.
// Cells keep the loader's textual rendering; empty cells are "".
type RawTable struct {
	Name   string
	Format InputFormat
	Header []string
	Rows   [][]string
}

// Cell returns the value at row r, column c, or "" for ragged rows.
func (t RawTable) Cell(r, c int) string {
	if r < 0 || r >= len(t.Rows) || c < 0 || c >= len(t.Rows[r]) {
		return ""
	}
	return t.Rows[r][c]
}

type Side string

const (
	SideSource Side = "source"
	SideTarget Side = "target"
)

type ColumnRole string

const (
	RoleIdentifier          ColumnRole = "identifier"
	RoleQuantity            ColumnRole = "quantity"
	RoleSecondaryIdentifier ColumnRole = "secondary_identifier"
	RoleDescription         ColumnRole = "description"
)

type KeyKind string

const (
	KeyEAN  KeyKind = "ean"
	KeyItem KeyKind = "item"
)

type ResolvedColumn struct {
	Role  ColumnRole `json:"role" yaml:"role"`
	Name  string     `json:"name" yaml:"name"`
	Index int        `json:"index" yaml:"index"`
	Found bool       `json:"found" yaml:"found"`
}

type TableColumns struct {
	Key         ResolvedColumn `json:"key" yaml:"key"`
	Quantity    ResolvedColumn `json:"quantity" yaml:"quantity"`
	ItemCode    ResolvedColumn `json:"itemCode" yaml:"itemCode"`
	Description ResolvedColumn `json:"description" yaml:"description"`
}

type NormalizedRow struct {
	Key         string
	Quantity    decimal.Decimal
	Description *string
	ItemCode    *string
}

type Presence string

const (
	OnlyInSource Presence = "only_in_source"
	OnlyInTarget Presence = "only_in_target"
	Both         Presence = "both"
)

type ReconciliationRecord struct {
	Key            string          `json:"key" yaml:"key"`
	QuantitySource decimal.Decimal `json:"quantitySource" yaml:"quantitySource"`
	QuantityTarget decimal.Decimal `json:"quantityTarget" yaml:"quantityTarget"`
	Difference     decimal.Decimal `json:"difference" yaml:"difference"`
	Presence       Presence        `json:"presence" yaml:"presence"`
	Description    *string         `json:"description,omitempty" yaml:"description,omitempty"`
	ItemCode       *string         `json:"itemCode,omitempty" yaml:"itemCode,omitempty"`
}

type Summary struct {
	SourceRows        int `json:"sourceRows" yaml:"sourceRows"`
	TargetRows        int `json:"targetRows" yaml:"targetRows"`
	MissingKeys       int `json:"missingKeys" yaml:"missingKeys"`
	Excluded          int `json:"excluded" yaml:"excluded"`
	InvalidQuantities int `json:"invalidQuantities" yaml:"invalidQuantities"`
	DuplicateKeys     int `json:"duplicateKeys" yaml:"duplicateKeys"`
	Matched           int `json:"matched" yaml:"matched"`
	Mismatched        int `json:"mismatched" yaml:"mismatched"`
	OnlyInSource      int `json:"onlyInSource" yaml:"onlyInSource"`
	OnlyInTarget      int `json:"onlyInTarget" yaml:"onlyInTarget"`
}

// Discrepancies is the number of records a report carries.
func (s Summary) Discrepancies() int {
	return s.Mismatched + s.OnlyInSource + s.OnlyInTarget
}

// MissingColumn names one role that could not be resolved on one side.
type MissingColumn struct {
	Side Side       `json:"side" yaml:"side"`
	Role ColumnRole `json:"role" yaml:"role"`
}

// ResolutionError reports required roles that no column matched. It carries
// the available headers of both tables so a header mismatch can be diagnosed.
type ResolutionError struct {
	Missing       []MissingColumn
	SourceColumns []string
	TargetColumns []string
}

func (e *ResolutionError) Error() string {
	parts := make([]string, 0, len(e.Missing))
	for _, m := range e.Missing {
		parts = append(parts, string(m.Side)+" "+string(m.Role))
	}
	return "could not resolve columns: " + strings.Join(parts, ", ") +
		" (source columns: [" + strings.Join(e.SourceColumns, ", ") + "]" +
		"; target columns: [" + strings.Join(e.TargetColumns, ", ") + "])"
}

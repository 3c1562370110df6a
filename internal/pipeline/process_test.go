package pipeline

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockdiff/internal"
	"stockdiff/internal/util"
)

func TestCompare(t *testing.T) {
	source := internal.RawTable{
		Name:   "ns.xlsx",
		Header: []string{"Number", "Description", "EANs", "On Hand"},
		Rows: [][]string{
			{"ITEM-1", "Widget", "5012345678900", "10"},
			{"ITEM-2", "Gadget", "1234567890.0", "5"},
			{"ITEM-3", "Spare", "999", "10"},
			{"ITEM-4", "Blank key", "", "1"},
		},
	}
	target := internal.RawTable{
		Name:   "wms.csv",
		Header: []string{"Item", "EAN", "ATP Qty API", "Qty Reserved"},
		Rows: [][]string{
			{"ITEM-1", "5012345678900", "8", "0"},
			{"ITEM-2", "1234567890", "5", "1"},
			{"Box-20", "5000000000001", "40", "0"},
			{"ITEM-9", "777", "3", "0"},
		},
	}

	svc := NewComparisonService(Options{
		ExcludeTarget: PrefixFilter("Box", "Bag"),
		SourceLabel:   "NS",
		TargetLabel:   "WMS",
	}, zerolog.Nop())

	report, err := svc.Compare(source, target)
	require.NoError(t, err)

	assert.NotEmpty(t, report.RunID)
	assert.Equal(t, internal.KeyEAN, report.KeyKind)
	assert.Equal(t, "EANs", report.SourceColumns.Key.Name)
	assert.Equal(t, "ATP Qty API", report.TargetColumns.Quantity.Name)

	got := map[string]internal.ReconciliationRecord{}
	for _, rec := range report.Records {
		got[rec.Key] = rec
	}
	require.Len(t, got, 3)

	assert.Equal(t, internal.Both, got["5012345678900"].Presence)
	assert.Equal(t, "2", got["5012345678900"].Difference.String())
	assert.Equal(t, "Widget", util.DerefString(got["5012345678900"].Description))

	assert.Equal(t, internal.OnlyInSource, got["999"].Presence)
	assert.Equal(t, "10", got["999"].QuantitySource.String())

	assert.Equal(t, internal.OnlyInTarget, got["777"].Presence)

	s := report.Summary
	assert.Equal(t, 3, s.SourceRows)
	assert.Equal(t, 3, s.TargetRows)
	assert.Equal(t, 1, s.MissingKeys)
	assert.Equal(t, 1, s.Excluded)
	assert.Equal(t, 1, s.Matched)
	assert.Equal(t, 3, s.Discrepancies())
}

func TestCompareExcludesPackagingOnTargetOnly(t *testing.T) {
	source := internal.RawTable{
		Header: []string{"Item", "EAN", "On Hand"},
		Rows: [][]string{
			{"Bag-1", "5000000000009", "4"},
			{"ITEM-1", "5012345678900", "2"},
		},
	}
	target := internal.RawTable{
		Header: []string{"Item", "EAN", "ATP Qty"},
		Rows: [][]string{
			{"ITEM-1", "5012345678900", "2"},
			{"Box-20", "5000000000001", "40"},
		},
	}

	svc := NewComparisonService(Options{ExcludeTarget: PrefixFilter("Box", "Bag")}, zerolog.Nop())
	report, err := svc.Compare(source, target)
	require.NoError(t, err)

	require.Len(t, report.Records, 1)
	rec := report.Records[0]
	assert.Equal(t, "5000000000009", rec.Key)
	assert.Equal(t, internal.OnlyInSource, rec.Presence)
	assert.Equal(t, "4", rec.QuantitySource.String())
	assert.Equal(t, "Bag-1", util.DerefString(rec.ItemCode))

	assert.Equal(t, 2, report.Summary.SourceRows)
	assert.Equal(t, 1, report.Summary.TargetRows)
	assert.Equal(t, 1, report.Summary.Excluded)
}

func TestCompareResolutionFailure(t *testing.T) {
	var buf bytes.Buffer
	svc := NewComparisonService(Options{}, zerolog.New(&buf))

	source := internal.RawTable{Header: []string{"EAN", "Location"}, Rows: [][]string{{"1", "A"}}}
	target := internal.RawTable{Header: []string{"EAN", "Stock"}, Rows: [][]string{{"1", "2"}}}

	_, err := svc.Compare(source, target)
	require.Error(t, err)

	var resErr *internal.ResolutionError
	require.True(t, errors.As(err, &resErr))
	assert.Equal(t, []internal.MissingColumn{{Side: internal.SideSource, Role: internal.RoleQuantity}}, resErr.Missing)
	assert.Contains(t, buf.String(), "column resolution failed")
}

func TestCompareEmptyTargetReportsEverySourceKey(t *testing.T) {
	var buf bytes.Buffer
	svc := NewComparisonService(Options{}, zerolog.New(&buf))

	source := internal.RawTable{Header: []string{"EAN", "Stock"}, Rows: [][]string{{"1", "2"}, {"2", "0"}}}
	target := internal.RawTable{Header: []string{"EAN", "Stock"}}

	report, err := svc.Compare(source, target)
	require.NoError(t, err)
	require.Len(t, report.Records, 2)
	for _, rec := range report.Records {
		assert.Equal(t, internal.OnlyInSource, rec.Presence)
	}
	assert.Equal(t, "Source", report.SourceLabel)
	assert.Contains(t, buf.String(), "no usable rows")
}

func TestCompareFiles(t *testing.T) {
	dir := t.TempDir()
	srcPath := filepath.Join(dir, "ns.xlsx")
	tgtPath := filepath.Join(dir, "wms.csv")

	require.NoError(t, os.WriteFile(srcPath, mkXLSX([][]any{
		{"Item Number", "EAN Code", "On Hand"},
		{"ITEM-1", "5012345678900", 4},
		{"ITEM-2", "5012345678901", 1},
	}), 0o644))
	require.NoError(t, os.WriteFile(tgtPath, []byte("Item;EAN;ATP Qty\nITEM-1;5012345678900;4\nITEM-2;5012345678901;3\n"), 0o644))

	report, err := NewComparisonService(Options{}, zerolog.Nop()).CompareFiles(srcPath, tgtPath)
	require.NoError(t, err)

	assert.Equal(t, "ns.xlsx", report.SourceName)
	assert.Equal(t, "wms.csv", report.TargetName)
	require.Len(t, report.Records, 1)
	assert.Equal(t, "5012345678901", report.Records[0].Key)
	assert.Equal(t, "-2", report.Records[0].Difference.String())
	assert.Equal(t, "ITEM-2", util.DerefString(report.Records[0].ItemCode))
}

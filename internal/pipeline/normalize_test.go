package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockdiff/internal"
	"stockdiff/internal/util"
)

func col(role internal.ColumnRole, idx int) internal.ResolvedColumn {
	return internal.ResolvedColumn{Role: role, Index: idx, Found: idx >= 0}
}

func TestNormalizeRows(t *testing.T) {
	table := internal.RawTable{
		Header: []string{"Item", "EAN", "Description", "ATP Qty"},
		Rows: [][]string{
			{"ITEM-1", "5012345678900.0", "Widget", "12"},
			{"ITEM-2", "", "No barcode", "3"},
			{"Box-20", "5000000000001", "Shipping box", "40"},
			{"ITEM-3", " 0012345 ", "  Spaced   name ", "n/a"},
			{"", "5000000000002", "", "1,250"},
			{"ITEM-5", "5000000000003"},
		},
	}
	cols := internal.TableColumns{
		Key:         col(internal.RoleIdentifier, 1),
		Quantity:    col(internal.RoleQuantity, 3),
		ItemCode:    col(internal.RoleSecondaryIdentifier, 0),
		Description: col(internal.RoleDescription, 2),
	}

	p := NormalizeRows(table, cols, PrefixFilter("Box", "Bag"))

	assert.Equal(t, 1, p.MissingKeys)
	assert.Equal(t, 1, p.Excluded)
	assert.Equal(t, 1, p.InvalidQuantities)
	require.Len(t, p.Rows, 4)

	first := p.Rows[0]
	assert.Equal(t, "5012345678900", first.Key)
	assert.Equal(t, "12", first.Quantity.String())
	assert.Equal(t, "Widget", util.DerefString(first.Description))
	assert.Equal(t, "ITEM-1", util.DerefString(first.ItemCode))

	spaced := p.Rows[1]
	assert.Equal(t, "0012345", spaced.Key)
	assert.True(t, spaced.Quantity.IsZero())
	assert.Equal(t, "Spaced name", util.DerefString(spaced.Description))

	noItem := p.Rows[2]
	assert.Nil(t, noItem.ItemCode)
	assert.Nil(t, noItem.Description)
	assert.Equal(t, "1250", noItem.Quantity.String())

	ragged := p.Rows[3]
	assert.Equal(t, "5000000000003", ragged.Key)
	assert.True(t, ragged.Quantity.IsZero())
}

func TestNormalizeRowsWithoutFilterKeepsPackaging(t *testing.T) {
	table := internal.RawTable{
		Header: []string{"Item", "Stock"},
		Rows: [][]string{
			{"Bag-1", "2"},
			{"ITEM-1", "1"},
		},
	}
	cols := internal.TableColumns{
		Key:      col(internal.RoleIdentifier, 0),
		Quantity: col(internal.RoleQuantity, 1),
		ItemCode: col(internal.RoleSecondaryIdentifier, 0),
	}

	p := NormalizeRows(table, cols, nil)
	assert.Len(t, p.Rows, 2)
	assert.Zero(t, p.Excluded)
}

func TestPrefixFilter(t *testing.T) {
	exclude := PrefixFilter("Box", " Bag ", "")

	tests := []struct {
		code string
		want bool
	}{
		{code: "Box-12", want: true},
		{code: "Bag", want: true},
		{code: "  BoxLarge", want: true},
		{code: "box-12", want: false},
		{code: "ITEM-Box", want: false},
		{code: "", want: false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, exclude(tt.code), tt.code)
	}
}

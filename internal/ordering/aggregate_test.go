package ordering

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"supply_order_back_end/internal/models"
)

func TestGroupBySupplier_SubtotalsAndOrder(t *testing.T) {
	lines := []models.CartLine{line(productX, 2), line(productY, 1), line(productZ, 3)}

	groups := GroupBySupplier(lines, submitBase)

	require.Len(t, groups, 2)
	assert.Equal(t, submitBase+"-1", groups[0].ID)
	assert.Equal(t, "A", groups[0].Supplier)
	assert.Equal(t, 230.0, groups[0].Subtotal)
	assert.Len(t, groups[0].Lines, 2)

	assert.Equal(t, submitBase+"-2", groups[1].ID)
	assert.Equal(t, "B", groups[1].Supplier)
	assert.Equal(t, 50.0, groups[1].Subtotal)
}

func TestGroupBySupplier_PartitionsEveryLine(t *testing.T) {
	noSupplier := models.Product{ID: "n", Name: "テープ", Price: 210}
	lines := []models.CartLine{line(productY, 1), line(noSupplier, 2), line(productX, 1), line(productY, 4)}

	groups := GroupBySupplier(lines, submitBase)

	total := 0
	for _, g := range groups {
		for _, l := range g.Lines {
			assert.Equal(t, g.Supplier, l.Product.SupplierOrDefault())
		}
		total += len(g.Lines)
	}
	assert.Equal(t, len(lines), total)
	require.Len(t, groups, 3)
	assert.Equal(t, []string{"B", models.DefaultSupplier, "A"}, []string{groups[0].Supplier, groups[1].Supplier, groups[2].Supplier})
}

func TestGroupBySupplier_ExactMatch(t *testing.T) {
	spaced := productX
	spaced.Supplier = "A "

	groups := GroupBySupplier([]models.CartLine{line(productX, 1), line(spaced, 1)}, submitBase)

	assert.Len(t, groups, 2)
}

func TestGroupBySupplier_Empty(t *testing.T) {
	assert.Empty(t, GroupBySupplier(nil, submitBase))
}

func TestSubtotal_DecimalSum(t *testing.T) {
	p := models.Product{Price: 0.1, Supplier: "A"}
	assert.Equal(t, 0.3, Subtotal([]models.CartLine{line(p, 1), line(p, 2)}))
}

func TestSingleSupplierGroup(t *testing.T) {
	g, err := SingleSupplierGroup([]models.CartLine{line(productX, 1), line(productZ, 2)}, submitBase)
	require.NoError(t, err)
	assert.Equal(t, submitBase, g.ID)
	assert.Equal(t, 120.0, g.Subtotal)

	_, err = SingleSupplierGroup([]models.CartLine{line(productX, 1), line(productY, 1)}, submitBase)
	assert.ErrorIs(t, err, ErrMixedSuppliers)
	assert.True(t, IsValidation(err))

	_, err = SingleSupplierGroup(nil, submitBase)
	assert.ErrorIs(t, err, ErrEmptyCart)
}

func TestOrderIDs(t *testing.T) {
	assert.Equal(t, submitBase, BaseOrderID(submitTime))
	assert.Equal(t, submitBase+"-3", GroupOrderID(submitBase, 3))
	assert.Equal(t, "1714554000000-1", searchKey(" ORD-1714554000000-1 "))
}

package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopbot/assistant/internal/agent/model"
	errx "github.com/shopbot/assistant/internal/core/error"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := New([]model.Product{
		{ID: "SKU-123", Name: "Smart Fitness Watch", Description: "Tracker", Price: 149, StockCount: 0},
		{ID: "SKU-101", Name: "EcoFriendly Water Bottle", Description: "Bottle", Price: 19.99, StockCount: 42},
	})
	require.NoError(t, err)
	return store
}

func TestLookupKnownProducts(t *testing.T) {
	store := newTestStore(t)

	for _, p := range store.Products() {
		byID, err := store.Lookup(p.ID)
		require.NoError(t, err)
		assert.Equal(t, p.ID, byID.ID)

		byName, err := store.Lookup(p.Name)
		require.NoError(t, err)
		assert.Equal(t, p.Name, byName.Name)
	}
}

func TestLookupIsCaseInsensitive(t *testing.T) {
	store := newTestStore(t)

	testCases := []string{"ecofriendly water bottle", "  EcoFriendly Water Bottle ", "sku-101", "SKU-101"}
	for _, identifier := range testCases {
		t.Run(identifier, func(t *testing.T) {
			p, err := store.Lookup(identifier)
			require.NoError(t, err)
			assert.Equal(t, "SKU-101", p.ID)
		})
	}
}

func TestLookupUnknownReturnsNotFound(t *testing.T) {
	store := newTestStore(t)

	for _, identifier := range []string{"SKU-999", "", "   ", "\x00\xff", "Smart Fitness"} {
		_, err := store.Lookup(identifier)
		assert.ErrorIs(t, err, errx.ErrNotFound, identifier)

		_, err = store.CheckStock(identifier)
		assert.ErrorIs(t, err, errx.ErrNotFound, identifier)
	}
}

func TestCheckStockIsIdempotent(t *testing.T) {
	store := newTestStore(t)

	first, err := store.CheckStock("SKU-101")
	require.NoError(t, err)
	assert.Equal(t, 42, first)
	for i := 0; i < 5; i++ {
		again, err := store.CheckStock("SKU-101")
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}

	zero, err := store.CheckStock("SKU-123")
	require.NoError(t, err)
	assert.Zero(t, zero)
}

func TestNewReportsEveryViolation(t *testing.T) {
	_, err := New([]model.Product{
		{ID: "A", Name: "Mug", StockCount: 1},
		{ID: "a", Name: "Cup", StockCount: 1},
		{ID: "B", Name: "MUG", StockCount: 1},
		{ID: "C", Name: "Plate", StockCount: -1},
		{ID: "", Name: "Bowl"},
		{ID: "E", Name: "a", StockCount: 1},
	})
	require.Error(t, err)
	msg := err.Error()
	assert.Contains(t, msg, `duplicate id "a"`)
	assert.Contains(t, msg, `duplicate name "MUG"`)
	assert.Contains(t, msg, "negative stock count")
	assert.Contains(t, msg, "id is empty")
	assert.Contains(t, msg, `name "a" collides with a product id`)
}

func TestNewRejectsIDNameCollisions(t *testing.T) {
	testCases := []struct {
		name     string
		products []model.Product
		want     string
	}{
		{
			name: "name equals earlier id",
			products: []model.Product{
				{ID: "Mug", Name: "Coffee Cup", StockCount: 1},
				{ID: "SKU-2", Name: "mug", StockCount: 1},
			},
			want: `record 1: name "mug" collides with a product id`,
		},
		{
			name: "id equals earlier name",
			products: []model.Product{
				{ID: "SKU-1", Name: "Mug", StockCount: 1},
				{ID: "MUG", Name: "Coffee Cup", StockCount: 1},
			},
			want: `record 1: id "MUG" collides with a product name`,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := New(tc.products)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}

	store, err := New([]model.Product{{ID: "Mug", Name: "mug", StockCount: 3}})
	require.NoError(t, err, "a product may use its own id as its name")
	p, err := store.Lookup("MUG")
	require.NoError(t, err)
	assert.Equal(t, "Mug", p.ID)
}

func TestProductsReturnsCopy(t *testing.T) {
	store := newTestStore(t)
	products := store.Products()
	products[0].StockCount = 99

	stock, err := store.CheckStock(products[0].ID)
	require.NoError(t, err)
	assert.Zero(t, stock)
}

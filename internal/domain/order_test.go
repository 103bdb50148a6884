package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeStatus(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		want   string
		wantOK bool
	}{
		{"canonical pending", "pending", "pending", true},
		{"canonical preparing", "preparing", "preparing", true},
		{"canonical ready", "ready", "ready", true},
		{"canonical delivered", "delivered", "delivered", true},
		{"canonical paid", "paid", "paid", true},
		{"legacy preparing with accent", "en preparación", "preparing", true},
		{"legacy preparing without accent", "en preparacion", "preparing", true},
		{"legacy ready", "listo", "ready", true},
		{"legacy delivered", "entregado", "delivered", true},
		{"legacy paid", "pagado", "paid", true},
		{"unknown status", "flying", "flying", false},
		{"empty status", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := NormalizeStatus(tt.input)

			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestConsolidate(t *testing.T) {
	cola := &Product{ID: 1, Name: "Cola", Price: 2.5}
	fries := &Product{ID: 2, Name: "Fries", Price: 3.0}

	t.Run("empty input", func(t *testing.T) {
		_, ok := Consolidate(nil)

		assert.False(t, ok)
	})

	t.Run("merges lines across rows", func(t *testing.T) {
		first := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
		orders := []Order{
			{
				ID:          10,
				TableNumber: 4,
				Status:      "pending",
				Active:      true,
				CreatedAt:   first,
				Lines: []OrderLine{
					{ProductID: 1, Quantity: 2, Product: cola},
				},
			},
			{
				ID:          11,
				TableNumber: 4,
				Status:      "preparing",
				Active:      true,
				CreatedAt:   first.Add(10 * time.Minute),
				Lines: []OrderLine{
					{ProductID: 1, Quantity: 1, Product: cola},
					{ProductID: 2, Quantity: 3, Product: fries},
				},
			},
		}

		consolidated, ok := Consolidate(orders)

		require.True(t, ok)

		// Identity comes from the earliest row.
		assert.Equal(t, uint(10), consolidated.ID)
		assert.Equal(t, "pending", consolidated.Status)
		assert.Equal(t, first, consolidated.CreatedAt)

		require.Len(t, consolidated.Lines, 2)
		assert.Equal(t, ConsolidatedLine{ProductID: 1, ProductName: "Cola", UnitPrice: 2.5, Quantity: 3}, consolidated.Lines[0])
		assert.Equal(t, ConsolidatedLine{ProductID: 2, ProductName: "Fries", UnitPrice: 3.0, Quantity: 3}, consolidated.Lines[1])
	})

	t.Run("keeps first occurrence order", func(t *testing.T) {
		orders := []Order{
			{ID: 1, Lines: []OrderLine{
				{ProductID: 2, Quantity: 1, Product: fries},
				{ProductID: 1, Quantity: 1, Product: cola},
			}},
			{ID: 2, Lines: []OrderLine{
				{ProductID: 2, Quantity: 4, Product: fries},
			}},
		}

		consolidated, ok := Consolidate(orders)

		require.True(t, ok)
		require.Len(t, consolidated.Lines, 2)
		assert.Equal(t, uint(2), consolidated.Lines[0].ProductID)
		assert.Equal(t, 5, consolidated.Lines[0].Quantity)
		assert.Equal(t, uint(1), consolidated.Lines[1].ProductID)
	})

	t.Run("single row is returned as is", func(t *testing.T) {
		orders := []Order{
			{ID: 7, TableNumber: 2, Status: "ready", Active: true, Lines: []OrderLine{
				{ProductID: 1, Quantity: 1, Product: cola},
			}},
		}

		consolidated, ok := Consolidate(orders)

		require.True(t, ok)
		assert.Equal(t, uint(7), consolidated.ID)
		require.Len(t, consolidated.Lines, 1)
		assert.Equal(t, 1, consolidated.Lines[0].Quantity)
	})
}

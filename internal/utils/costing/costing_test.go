package costing_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/merchantledger/merchant_ledger_app/internal/utils/costing"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestCalculateWeightedAverage(t *testing.T) {
	tests := []struct {
		name             string
		currentStock     string
		currentAvgCost   string
		incomingQty      string
		incomingUnitCost string
		want             string
	}{
		{
			name:         "first receipt takes incoming cost",
			currentStock: "0", currentAvgCost: "0",
			incomingQty: "10", incomingUnitCost: "12.50",
			want: "12.5",
		},
		{
			name:         "blends existing and incoming stock",
			currentStock: "10", currentAvgCost: "8",
			incomingQty: "5", incomingUnitCost: "20",
			want: "12",
		},
		{
			name:         "rounds to four decimal places",
			currentStock: "10", currentAvgCost: "10",
			incomingQty: "2", incomingUnitCost: "20",
			want: "11.6667",
		},
		{
			name:         "cheaper receipt pulls the average down",
			currentStock: "100", currentAvgCost: "15",
			incomingQty: "50", incomingUnitCost: "9",
			want: "13",
		},
		{
			name:         "zero total quantity yields zero",
			currentStock: "0", currentAvgCost: "0",
			incomingQty: "0", incomingUnitCost: "50",
			want: "0",
		},
		{
			name:         "negative total quantity yields zero",
			currentStock: "-5", currentAvgCost: "10",
			incomingQty: "2", incomingUnitCost: "10",
			want: "0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := costing.CalculateWeightedAverage(dec(tt.currentStock), dec(tt.currentAvgCost), dec(tt.incomingQty), dec(tt.incomingUnitCost))
			assert.True(t, got.Equal(dec(tt.want)), "got %s, want %s", got, tt.want)
		})
	}
}

func TestAllocateLandedCosts_ByValue(t *testing.T) {
	items := []costing.AllocationItem{
		{ItemID: "a", Quantity: dec("2"), UnitCost: dec("10")}, // value 20
		{ItemID: "b", Quantity: dec("1"), UnitCost: dec("30")}, // value 30
	}

	shares := costing.AllocateLandedCosts(items, dec("100"), costing.ByValue)

	assert.True(t, shares["a"].Equal(dec("40")), "got %s", shares["a"])
	assert.True(t, shares["b"].Equal(dec("60")), "got %s", shares["b"])
}

func TestAllocateLandedCosts_ByQuantity(t *testing.T) {
	items := []costing.AllocationItem{
		{ItemID: "a", Quantity: dec("2"), UnitCost: dec("10")},
		{ItemID: "b", Quantity: dec("1"), UnitCost: dec("5")},
	}

	shares := costing.AllocateLandedCosts(items, dec("30"), costing.ByQuantity)

	assert.True(t, shares["a"].Equal(dec("20")), "got %s", shares["a"])
	assert.True(t, shares["b"].Equal(dec("10")), "got %s", shares["b"])
}

func TestAllocateLandedCosts_LastItemAbsorbsRemainder(t *testing.T) {
	items := []costing.AllocationItem{
		{ItemID: "a", Quantity: dec("1"), UnitCost: dec("1")},
		{ItemID: "b", Quantity: dec("1"), UnitCost: dec("1")},
		{ItemID: "c", Quantity: dec("1"), UnitCost: dec("1")},
	}

	shares := costing.AllocateLandedCosts(items, dec("100"), costing.ByQuantity)

	// 100/3 rounds to 33.33 twice; the last item picks up what is left.
	assert.True(t, shares["a"].Equal(dec("33.33")), "got %s", shares["a"])
	assert.True(t, shares["b"].Equal(dec("33.33")), "got %s", shares["b"])
	assert.True(t, shares["c"].Equal(dec("33.34")), "got %s", shares["c"])

	total := shares["a"].Add(shares["b"]).Add(shares["c"])
	assert.True(t, total.Equal(dec("100")))
}

func TestAllocateLandedCosts_ZeroBasisFallsToLastItem(t *testing.T) {
	items := []costing.AllocationItem{
		{ItemID: "a", Quantity: dec("0"), UnitCost: dec("0")},
		{ItemID: "b", Quantity: dec("0"), UnitCost: dec("0")},
	}

	shares := costing.AllocateLandedCosts(items, dec("50"), costing.ByValue)

	assert.True(t, shares["a"].Equal(dec("0")))
	assert.True(t, shares["b"].Equal(dec("50")))
}

func TestAllocateLandedCosts_EmptyItems(t *testing.T) {
	shares := costing.AllocateLandedCosts(nil, dec("100"), costing.ByValue)
	assert.Empty(t, shares)
}

func TestAllocateLandedCosts_SingleItemGetsEverything(t *testing.T) {
	items := []costing.AllocationItem{
		{ItemID: "only", Quantity: dec("7"), UnitCost: dec("3")},
	}

	shares := costing.AllocateLandedCosts(items, dec("19.99"), costing.ByValue)

	assert.True(t, shares["only"].Equal(dec("19.99")))
}

// Package costing is the pure cost engine: weighted-average cost and
// landed-cost allocation. No I/O; callers persist the results inside their own
// transaction.
package costing

import "github.com/shopspring/decimal"

// costPrecision keeps intermediate unit costs above currency display precision
// so repeated small receipts don't compound rounding error.
const costPrecision = 4

// CalculateWeightedAverage returns the new moving average cost after a receipt:
//
//	((currentStock * currentAvgCost) + (incomingQty * incomingUnitCost)) / (currentStock + incomingQty)
//
// A zero (or negative) resulting quantity yields zero, there being no stock to
// average over.
func CalculateWeightedAverage(currentStock, currentAvgCost, incomingQty, incomingUnitCost decimal.Decimal) decimal.Decimal {
	totalQty := currentStock.Add(incomingQty)
	if totalQty.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	totalValue := currentStock.Mul(currentAvgCost).Add(incomingQty.Mul(incomingUnitCost))
	return totalValue.Div(totalQty).Round(costPrecision)
}

// AllocationMethod selects the proportionality basis for landed costs.
type AllocationMethod string

const (
	ByValue    AllocationMethod = "VALUE"    // Weight by quantity * unitCost
	ByQuantity AllocationMethod = "QUANTITY" // Weight by quantity alone
)

// AllocationItem is one invoice line participating in a landed-cost split.
type AllocationItem struct {
	ItemID   string
	Quantity decimal.Decimal
	UnitCost decimal.Decimal
}

// AllocateLandedCosts distributes a shared cost (freight, customs) across items
// proportionally to the chosen basis. Each share is rounded to 2 decimals
// independently except the LAST item, which receives the unallocated remainder
// so the shares always sum exactly to totalLandedCost.
//
// The remainder rule makes the allocation order-sensitive: whichever item is
// last in the input slice absorbs the rounding adjustment.
func AllocateLandedCosts(items []AllocationItem, totalLandedCost decimal.Decimal, method AllocationMethod) map[string]decimal.Decimal {
	shares := make(map[string]decimal.Decimal, len(items))
	if len(items) == 0 {
		return shares
	}

	basis := func(item AllocationItem) decimal.Decimal {
		if method == ByQuantity {
			return item.Quantity
		}
		return item.Quantity.Mul(item.UnitCost)
	}

	totalBasis := decimal.Zero
	for _, item := range items {
		totalBasis = totalBasis.Add(basis(item))
	}

	allocated := decimal.Zero
	for i, item := range items {
		if i == len(items)-1 {
			shares[item.ItemID] = totalLandedCost.Sub(allocated)
			break
		}
		share := decimal.Zero
		if !totalBasis.IsZero() {
			share = totalLandedCost.Mul(basis(item)).Div(totalBasis).Round(2)
		}
		shares[item.ItemID] = share
		allocated = allocated.Add(share)
	}
	return shares
}

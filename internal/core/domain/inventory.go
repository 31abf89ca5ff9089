package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// InventoryBatch is an immutable FIFO cost layer created when an invoice item
// is posted into stock. Only RemainingQuantity changes afterwards, decremented
// by an external fulfillment collaborator.
type InventoryBatch struct {
	BatchID           string          `json:"batchID"`
	VariantID         string          `json:"variantID"`
	InvoiceItemID     string          `json:"invoiceItemID"`
	StockInID         string          `json:"stockInID"`
	InitialQuantity   decimal.Decimal `json:"initialQuantity"`
	RemainingQuantity decimal.Decimal `json:"remainingQuantity"`
	UnitCost          decimal.Decimal `json:"unitCost"`
	AuditFields
}

// StockInEvent correlates one invoice posting to a warehouse and actor.
type StockInEvent struct {
	StockInID   string `json:"stockInID"`
	InvoiceID   string `json:"invoiceID"`
	WarehouseID string `json:"warehouseID"`
	AuditFields
}

// WarehouseStock is the aggregate available counter for (warehouse, variant).
// Physical pick/allocate/release logistics live with an external collaborator.
type WarehouseStock struct {
	WarehouseID string          `json:"warehouseID"`
	VariantID   string          `json:"variantID"`
	Available   decimal.Decimal `json:"available"`
	AuditFields
}

// CostHistory is one append-only audit record of a variant cost change.
type CostHistory struct {
	HistoryID   string          `json:"historyID"`
	VariantID   string          `json:"variantID"`
	OldCost     decimal.Decimal `json:"oldCost"`
	NewCost     decimal.Decimal `json:"newCost"`
	Reason      string          `json:"reason"`      // e.g. "INVOICE_POST"
	ReferenceID string          `json:"referenceID"` // Originating document id
	CreatedAt   time.Time       `json:"createdAt"`
	CreatedBy   string          `json:"createdBy"`
}

// StockMovementType classifies stock movement audit entries.
type StockMovementType string

const (
	MovementReceipt StockMovementType = "RECEIPT"
	MovementRelease StockMovementType = "RELEASE"
)

// StockMovement is an append-only audit entry for a stock quantity change.
type StockMovement struct {
	MovementID  string            `json:"movementID"`
	WarehouseID string            `json:"warehouseID"`
	VariantID   string            `json:"variantID"`
	Type        StockMovementType `json:"type"`
	Quantity    decimal.Decimal   `json:"quantity"`
	ReferenceID string            `json:"referenceID"` // Invoice or order id
	Notes       string            `json:"notes"`
	CreatedAt   time.Time         `json:"createdAt"`
	CreatedBy   string            `json:"createdBy"`
}

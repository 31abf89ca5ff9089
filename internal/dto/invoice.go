package dto

import (
	"time"

	"github.com/merchantledger/merchant_ledger_app/internal/utils/costing"
	"github.com/shopspring/decimal"
)

// CreateInvoiceItemRequest is one purchased line on a new invoice.
type CreateInvoiceItemRequest struct {
	VariantID      string          `json:"variantID" validate:"required"`
	Quantity       decimal.Decimal `json:"quantity" validate:"required"`
	UnitCost       decimal.Decimal `json:"unitCost"`
	IsStockTracked bool            `json:"isStockTracked"`
}

// CreateInvoiceRequest defines the data for a new DRAFT purchase invoice.
type CreateInvoiceRequest struct {
	SupplierID  string                     `json:"supplierID" validate:"required"`
	InvoiceDate time.Time                  `json:"invoiceDate" validate:"required"`
	Reference   string                     `json:"reference"`
	TaxAmount   decimal.Decimal            `json:"taxAmount"`
	Items       []CreateInvoiceItemRequest `json:"items" validate:"dive"`
}

// AddInvoiceItemRequest appends one item to an editable invoice.
type AddInvoiceItemRequest struct {
	VariantID      string          `json:"variantID" validate:"required"`
	Quantity       decimal.Decimal `json:"quantity" validate:"required"`
	UnitCost       decimal.Decimal `json:"unitCost"`
	IsStockTracked bool            `json:"isStockTracked"`
}

// ApplyLandedCostsRequest distributes extra acquisition charges across items.
type ApplyLandedCostsRequest struct {
	Amount decimal.Decimal          `json:"amount" validate:"required"`
	Method costing.AllocationMethod `json:"method" validate:"required,oneof=VALUE QUANTITY"`
}

// PostInvoiceRequest targets the warehouse receiving an APPROVED invoice.
type PostInvoiceRequest struct {
	WarehouseID string `json:"warehouseID" validate:"required"`
	Note        string `json:"note"`
}

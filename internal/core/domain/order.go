package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentMethod distinguishes revenue timing for sales orders.
type PaymentMethod string

const (
	CashOnDelivery PaymentMethod = "CASH_ON_DELIVERY"
	Prepaid        PaymentMethod = "PREPAID"
)

// SalesOrder is the read model of a sales order as seen by the financial core.
// Order capture and fulfillment belong to external collaborators.
type SalesOrder struct {
	OrderID        string           `json:"orderID"`
	Total          decimal.Decimal  `json:"total"` // Final billed, tax-inclusive
	DiscountAmount decimal.Decimal  `json:"discountAmount"`
	PaymentMethod  PaymentMethod    `json:"paymentMethod"`
	CouponCode     string           `json:"couponCode,omitempty"`
	Items          []SalesOrderItem `json:"items,omitempty"`
}

// SalesOrderItem is one order line. CostAtPurchase snapshots the variant cost
// at the time of sale; legacy rows may lack it, as may WarehouseID.
type SalesOrderItem struct {
	ItemID         string           `json:"itemID"`
	OrderID        string           `json:"orderID"`
	VariantID      string           `json:"variantID"`
	Quantity       decimal.Decimal  `json:"quantity"`
	CostAtPurchase *decimal.Decimal `json:"costAtPurchase,omitempty"`
	WarehouseID    *string          `json:"warehouseID,omitempty"`
}

// RevenueRecognition captures the tax-exclusive decomposition of one order's
// revenue. Created exactly once per order; refunds decrement its figures
// proportionally; deleted only on full cancellation after reversal.
type RevenueRecognition struct {
	RecognitionID  string          `json:"recognitionID"`
	OrderID        string          `json:"orderID"`
	GrossRevenue   decimal.Decimal `json:"grossRevenue"`
	DiscountAmount decimal.Decimal `json:"discountAmount"`
	TaxAmount      decimal.Decimal `json:"taxAmount"`
	NetRevenue     decimal.Decimal `json:"netRevenue"`
	COGSAmount     decimal.Decimal `json:"cogsAmount"`
	GrossProfit    decimal.Decimal `json:"grossProfit"`
	RevenueEntryID *string         `json:"revenueEntryID,omitempty"`
	COGSEntryID    *string         `json:"cogsEntryID,omitempty"`
	RecognizedAt   time.Time       `json:"recognizedAt"`
	RecognizedBy   string          `json:"recognizedBy"`
}

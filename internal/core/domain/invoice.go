package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// InvoiceStatus is a purchase invoice lifecycle state.
// POSTED and CANCELLED are terminal.
type InvoiceStatus string

const (
	InvoiceDraft     InvoiceStatus = "DRAFT"
	InvoiceReviewed  InvoiceStatus = "REVIEWED"
	InvoiceApproved  InvoiceStatus = "APPROVED"
	InvoicePosted    InvoiceStatus = "POSTED"
	InvoiceCancelled InvoiceStatus = "CANCELLED"
)

// InvoicePaymentStatus tracks settlement of a posted invoice.
type InvoicePaymentStatus string

const (
	PaymentUnpaid  InvoicePaymentStatus = "UNPAID"
	PaymentPartial InvoicePaymentStatus = "PARTIAL"
	PaymentPaid    InvoicePaymentStatus = "PAID"
)

// PurchaseInvoice is a supplier procurement document. Items may be edited only
// while the invoice is DRAFT or REVIEWED; POSTED and CANCELLED freeze it.
type PurchaseInvoice struct {
	InvoiceID       string                `json:"invoiceID"`
	SupplierID      string                `json:"supplierID"`
	InvoiceDate     time.Time             `json:"invoiceDate"`
	Reference       string                `json:"reference"` // Supplier's document number
	Status          InvoiceStatus         `json:"status"`
	Subtotal        decimal.Decimal       `json:"subtotal"`
	TaxAmount       decimal.Decimal       `json:"taxAmount"`
	LandedCostTotal decimal.Decimal       `json:"landedCostTotal"` // Freight, duty, handling
	GrandTotal      decimal.Decimal       `json:"grandTotal"`
	AmountPaid      decimal.Decimal       `json:"amountPaid"`
	RemainingAmount decimal.Decimal       `json:"remainingAmount"`
	PaymentStatus   InvoicePaymentStatus  `json:"paymentStatus"`
	PostedDate      *time.Time            `json:"postedDate,omitempty"`
	Items           []PurchaseInvoiceItem `json:"items,omitempty"`
	AuditFields
}

// PurchaseInvoiceItem is one ordered line of a purchase invoice.
type PurchaseInvoiceItem struct {
	ItemID         string           `json:"itemID"`
	InvoiceID      string           `json:"invoiceID"`
	VariantID      string           `json:"variantID"`
	Quantity       decimal.Decimal  `json:"quantity"`
	UnitCost       decimal.Decimal  `json:"unitCost"`
	FinalUnitCost  *decimal.Decimal `json:"finalUnitCost,omitempty"` // Landed-cost-adjusted
	IsStockTracked bool             `json:"isStockTracked"`          // Service lines are skipped at intake
	AuditFields
}

// EffectiveUnitCost returns the landed-cost-adjusted unit cost when one was
// allocated, else the raw unit cost.
func (i PurchaseInvoiceItem) EffectiveUnitCost() decimal.Decimal {
	if i.FinalUnitCost != nil {
		return *i.FinalUnitCost
	}
	return i.UnitCost
}

// InvoiceAuditLog is one immutable record of a state-machine transition.
// Append-only; never edited or pruned.
type InvoiceAuditLog struct {
	LogID      string        `json:"logID"`
	InvoiceID  string        `json:"invoiceID"`
	FromStatus InvoiceStatus `json:"fromStatus"`
	ToStatus   InvoiceStatus `json:"toStatus"`
	Note       string        `json:"note,omitempty"`
	ActorID    string        `json:"actorID"`
	CreatedAt  time.Time     `json:"createdAt"`
}

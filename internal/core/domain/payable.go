package domain

import "github.com/shopspring/decimal"

// PayableStatus tracks settlement of an accounts-payable record.
type PayableStatus string

const (
	PayableOpen    PayableStatus = "OPEN"
	PayableCleared PayableStatus = "CLEARED"
)

// AccountsPayable is the supplier obligation created when an invoice posts.
type AccountsPayable struct {
	PayableID  string          `json:"payableID"`
	InvoiceID  string          `json:"invoiceID"`
	SupplierID string          `json:"supplierID"`
	Amount     decimal.Decimal `json:"amount"` // Outstanding remainder
	Status     PayableStatus   `json:"status"`
	AuditFields
}

// Supplier carries the running account balance the core maintains. Names and
// contact data belong to the external catalog.
type Supplier struct {
	SupplierID string          `json:"supplierID"`
	Name       string          `json:"name"`
	Balance    decimal.Decimal `json:"balance"`
	IsActive   bool            `json:"isActive"`
	AuditFields
}

// SupplierPayment is one settlement against a posted invoice.
type SupplierPayment struct {
	PaymentID         string          `json:"paymentID"`
	InvoiceID         string          `json:"invoiceID"`
	Amount            decimal.Decimal `json:"amount"`
	TreasuryAccountID string          `json:"treasuryAccountID"`
	Method            string          `json:"method"`
	Reference         string          `json:"reference"`
	AuditFields
}

package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// RecordSupplierPaymentRequest settles part or all of an invoice obligation.
type RecordSupplierPaymentRequest struct {
	Amount          decimal.Decimal `json:"amount" validate:"required"`
	PaymentDate     time.Time       `json:"paymentDate" validate:"required"`
	TreasuryAccount string          `json:"treasuryAccount" validate:"required"` // account code, e.g. cash or bank
	Method          string          `json:"method" validate:"required"`          // payment channel, e.g. CASH, BANK_TRANSFER
	Note            string          `json:"note"`
}

package dto

import (
	"github.com/shopspring/decimal"
)

// RefundOrderRequest unwinds part of an order's recognized figures.
type RefundOrderRequest struct {
	Amount decimal.Decimal `json:"amount" validate:"required"`
	Reason string          `json:"reason"`
}

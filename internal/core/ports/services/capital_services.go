package services

import (
	"context"

	"github.com/merchantledger/merchant_ledger_app/internal/core/domain"
	"github.com/merchantledger/merchant_ledger_app/internal/dto"
)

// CapitalSvcFacade manages investor capital movements and ownership shares.
type CapitalSvcFacade interface {
	// RecordCapitalTransaction records a deposit or withdrawal, posts the
	// matching journal entry and recomputes every investor's ownership share.
	RecordCapitalTransaction(ctx context.Context, req dto.RecordCapitalTransactionRequest, actorID string) (*domain.CapitalTransaction, error)

	// GetInvestorByID retrieves one investor with current share figures.
	GetInvestorByID(ctx context.Context, investorID string) (*domain.Investor, error)
}

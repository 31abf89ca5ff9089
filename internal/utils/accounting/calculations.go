package accounting

import (
	"fmt"

	"github.com/merchantledger/merchant_ledger_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// SignedDelta returns the effect of a transaction line on its account's cached
// balance.
//
// Accounting convention:
//
//	DEBIT to ASSET/EXPENSE -> Positive (+)
//	CREDIT to ASSET/EXPENSE -> Negative (-)
//	DEBIT to LIABILITY/EQUITY/REVENUE -> Negative (-)
//	CREDIT to LIABILITY/EQUITY/REVENUE -> Positive (+)
func SignedDelta(line domain.TransactionLine, accountType domain.AccountType) (decimal.Decimal, error) {
	net := line.Debit.Sub(line.Credit)
	switch accountType {
	case domain.Asset, domain.Expense:
		return net, nil
	case domain.Liability, domain.Equity, domain.Revenue:
		return net.Neg(), nil
	default:
		return decimal.Zero, fmt.Errorf("unknown account type '%s' encountered for account ID %s", accountType, line.AccountID)
	}
}

// SumDebitsCredits totals both sides of a set of transaction lines.
func SumDebitsCredits(lines []domain.TransactionLine) (debits, credits decimal.Decimal) {
	debits = decimal.Zero
	credits = decimal.Zero
	for _, line := range lines {
		debits = debits.Add(line.Debit)
		credits = credits.Add(line.Credit)
	}
	return debits, credits
}

// SplitTaxInclusive decomposes a tax-inclusive total into net revenue and tax:
// net = total / (1 + rate), tax = total - net. Net is rounded to currency
// precision; tax absorbs the rounding remainder so net + tax == total exactly.
func SplitTaxInclusive(total, rate decimal.Decimal) (net, tax decimal.Decimal) {
	if rate.LessThanOrEqual(decimal.Zero) {
		return total, decimal.Zero
	}
	divisor := decimal.NewFromInt(1).Add(rate)
	net = total.Div(divisor).Round(2)
	tax = total.Sub(net)
	return net, tax
}

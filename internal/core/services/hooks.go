package services

import (
	"context"
	"log/slog"

	"github.com/merchantledger/merchant_ledger_app/internal/core/domain"
	"github.com/merchantledger/merchant_ledger_app/internal/platform/logging"
)

// RecognitionHook runs after a revenue recognition commits. Hooks are
// best-effort side effects (commission accrual, notifications); a hook failure
// is logged and never unwinds the committed recognition.
type RecognitionHook func(ctx context.Context, recognition domain.RevenueRecognition) error

// hookRunner fans out post-commit hooks, isolating panics per hook.
type hookRunner struct {
	hooks []RecognitionHook
}

func newHookRunner(hooks ...RecognitionHook) *hookRunner {
	return &hookRunner{hooks: hooks}
}

func (r *hookRunner) run(ctx context.Context, recognition domain.RevenueRecognition) {
	logger := logging.FromContext(ctx)
	for _, hook := range r.hooks {
		func() {
			defer func() {
				if rec := recover(); rec != nil {
					logger.Error("recognition hook panicked",
						slog.String("order_id", recognition.OrderID),
						slog.Any("panic", rec))
				}
			}()
			if err := hook(ctx, recognition); err != nil {
				logger.Warn("recognition hook failed",
					slog.String("order_id", recognition.OrderID),
					slog.String("error", err.Error()))
			}
		}()
	}
}

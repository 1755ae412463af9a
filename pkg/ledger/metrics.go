package ledger

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/code-payments/crowdfund/pkg/metrics"
	"github.com/code-payments/crowdfund/pkg/solana"
)

const (
	metricsStructName = "ledger.Ledger"

	transactionExecutedEventName = "LedgerTransactionExecuted"
	executeDurationMetricName    = "Ledger.Execute.Duration"
	commitAttemptsMetricName     = "Ledger.Execute.CommitAttempts"
)

func recordExecuteEvent(ctx context.Context, instructions int, attempts uint, elapsed time.Duration, err error) {
	kvPairs := map[string]interface{}{
		"instructions": instructions,
		"attempts":     attempts,
		"success":      err == nil,
	}

	var txnErr *solana.TransactionError
	if errors.As(err, &txnErr) {
		kvPairs["error_key"] = string(txnErr.ErrorKey())
		if instructionErr := txnErr.InstructionError(); instructionErr != nil {
			kvPairs["instruction_index"] = instructionErr.Index
			kvPairs["instruction_error_key"] = string(instructionErr.ErrorKey())
		}
	} else if err != nil {
		kvPairs["error_key"] = "infrastructure"
	}

	metrics.RecordEvent(ctx, transactionExecutedEventName, kvPairs)
	metrics.RecordDuration(ctx, executeDurationMetricName, elapsed)
	metrics.RecordCount(ctx, commitAttemptsMetricName, uint64(attempts))
}

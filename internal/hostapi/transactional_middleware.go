package hostapi

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// TransactionMiddleware is a middleware that manages transactions for registry edits.
type TransactionMiddleware func(ctx context.Context, next func(transactionID string) error) func() error

// NewTransactionMiddleware creates a new TransactionMiddleware using the provided api manager interface.
func NewTransactionMiddleware(api HostAPIManagerInterface, logger *zap.Logger) TransactionMiddleware {
	return func(ctx context.Context, next func(transactionID string) error) func() error {
		return func() error {
			// Retrieve the current registry version
			version, err := api.GetCurrentRegistryVersion(ctx)
			if err != nil {
				logger.Error("Failed to get registry version", zap.Error(err))
				return fmt.Errorf("failed to retrieve registry version: %w", err)
			}
			logger.Debug("Got registry version", zap.Int64("version", version))

			// Start the transaction
			transactionID, err := api.StartTransaction(ctx, version)
			if err != nil {
				logger.Error("Failed to start transaction", zap.Error(err))
				return fmt.Errorf("failed to start transaction: %w", err)
			}
			logger.Debug("Started transaction", zap.String("transaction", transactionID))

			executionErr := next(transactionID)

			// Rollback or commit the transaction depending on execution outcome
			if executionErr != nil {
				logger.Warn("Rolling back transaction", zap.String("transaction", transactionID), zap.Error(executionErr))
				if err := api.RollbackTransaction(context.WithoutCancel(ctx), transactionID); err != nil {
					logger.Error("Failed to roll back transaction", zap.String("transaction", transactionID), zap.Error(err))
				}
				return executionErr
			}

			logger.Debug("Committing transaction", zap.String("transaction", transactionID))
			if err := api.CommitTransaction(ctx, transactionID); err != nil {
				return fmt.Errorf("failed to commit transaction %s: %w", transactionID, err)
			}
			return nil
		}
	}
}

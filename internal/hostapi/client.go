package hostapi

import (
	"context"
	"fmt"
	"time"

	"github.com/plantarium-platform/compose-datasources/internal/registry"
	"github.com/plantarium-platform/compose-datasources/pkg/models"
	"go.uber.org/zap"
)

// HostAPIConfig represents the host API configuration needed for initialization.
type HostAPIConfig struct {
	APIURL  string
	Token   string
	Timeout time.Duration
}

// Client exposes the host registry as record store, secret sink, notifier and
// driver preparer. Every write runs inside a host transaction, InTransaction
// groups several writes into one.
type Client struct {
	api                   HostAPIManagerInterface
	transactionMiddleware TransactionMiddleware
}

// NewClient initializes and returns a Client backed by the given api manager.
func NewClient(api HostAPIManagerInterface, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		api:                   api,
		transactionMiddleware: NewTransactionMiddleware(api, logger),
	}
}

// ListRecords returns all records of the scope.
func (c *Client) ListRecords(ctx context.Context, scope string) ([]models.ConnectionRecord, error) {
	return c.api.ListDataSources(ctx, scope)
}

// AddRecord creates a record in the scope in a transaction of its own.
func (c *Client) AddRecord(ctx context.Context, scope string, record models.ConnectionRecord) error {
	return c.InTransaction(ctx, scope, func(store registry.Store, _ registry.SecretSink) error {
		return store.AddRecord(ctx, scope, record)
	})
}

// RemoveRecord deletes a record from the scope in a transaction of its own.
func (c *Client) RemoveRecord(ctx context.Context, scope, name string) error {
	return c.InTransaction(ctx, scope, func(store registry.Store, _ registry.SecretSink) error {
		return store.RemoveRecord(ctx, scope, name)
	})
}

// StorePassword writes the record password to the host secret storage in a
// transaction of its own.
func (c *Client) StorePassword(ctx context.Context, scope, name, password string) error {
	return c.InTransaction(ctx, scope, func(_ registry.Store, secrets registry.SecretSink) error {
		return secrets.StorePassword(ctx, scope, name, password)
	})
}

// InTransaction runs fn against a store and secret sink bound to a single host
// transaction. The transaction is committed when fn succeeds and rolled back
// otherwise, so edits made by fn are kept or dropped together.
func (c *Client) InTransaction(ctx context.Context, scope string, fn func(store registry.Store, secrets registry.SecretSink) error) error {
	return c.transactionMiddleware(ctx, func(transactionID string) error {
		tx := &transactionScope{api: c.api, transactionID: transactionID}
		return fn(tx, tx)
	})()
}

// transactionScope forwards record and password edits with a fixed transaction id.
type transactionScope struct {
	api           HostAPIManagerInterface
	transactionID string
}

func (t *transactionScope) ListRecords(ctx context.Context, scope string) ([]models.ConnectionRecord, error) {
	return t.api.ListDataSources(ctx, scope)
}

func (t *transactionScope) AddRecord(ctx context.Context, scope string, record models.ConnectionRecord) error {
	if err := t.api.CreateDataSource(ctx, scope, record, t.transactionID); err != nil {
		return fmt.Errorf("failed to add record: %w", err)
	}
	return nil
}

func (t *transactionScope) RemoveRecord(ctx context.Context, scope, name string) error {
	if err := t.api.DeleteDataSource(ctx, scope, name, t.transactionID); err != nil {
		return fmt.Errorf("failed to remove record: %w", err)
	}
	return nil
}

func (t *transactionScope) StorePassword(ctx context.Context, scope, name, password string) error {
	if err := t.api.StoreCredentials(ctx, scope, name, password, t.transactionID); err != nil {
		return fmt.Errorf("failed to store password: %w", err)
	}
	return nil
}

// Notify shows a notification in the host UI.
func (c *Client) Notify(ctx context.Context, title, message string, severity models.Severity) error {
	return c.api.SendNotification(ctx, title, message, severity)
}

// PrepareDriver makes the host download the driver files.
func (c *Client) PrepareDriver(ctx context.Context, driverID string) error {
	return c.api.DownloadDriver(ctx, driverID)
}

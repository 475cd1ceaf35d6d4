package registry

import (
	"context"

	"github.com/plantarium-platform/compose-datasources/pkg/models"
)

// Store is the project-scoped connection record store owned by the host.
type Store interface {
	ListRecords(ctx context.Context, scope string) ([]models.ConnectionRecord, error)
	AddRecord(ctx context.Context, scope string, record models.ConnectionRecord) error
	RemoveRecord(ctx context.Context, scope, name string) error
}

// SecretSink persists record passwords, keyed by record identity.
type SecretSink interface {
	StorePassword(ctx context.Context, scope, name, password string) error
}

// Notifier delivers user-facing notifications.
type Notifier interface {
	Notify(ctx context.Context, title, message string, severity models.Severity) error
}

// DriverPreparer makes sure the host has the driver files for a driver id,
// downloading them if needed.
type DriverPreparer interface {
	PrepareDriver(ctx context.Context, driverID string) error
}

// Transactor is implemented by stores that can group edits. InTransaction
// calls fn with a store and secret sink whose writes are applied together or
// not at all.
type Transactor interface {
	InTransaction(ctx context.Context, scope string, fn func(store Store, secrets SecretSink) error) error
}

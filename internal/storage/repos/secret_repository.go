package repos

import (
	"context"
	"fmt"

	"github.com/plantarium-platform/compose-datasources/internal/storage"
)

// SecretRepository stores record passwords in the in-memory registry.
type SecretRepository struct {
	storage *storage.RegistryDB
}

// NewSecretRepository initializes a new SecretRepository with the provided storage.
func NewSecretRepository(storage *storage.RegistryDB) *SecretRepository {
	return &SecretRepository{
		storage: storage,
	}
}

// StorePassword saves the password for the record identified by scope and name.
func (r *SecretRepository) StorePassword(_ context.Context, scope, name, password string) error {
	return r.storage.WithLock(func() error {
		if _, exists := r.storage.Records[scope][name]; !exists {
			return fmt.Errorf("cannot store password, record %s not found in scope %s", name, scope)
		}
		r.storage.Secrets[storage.SecretKey{Scope: scope, Name: name}] = password
		return nil
	})
}

// FetchPassword returns the stored password of a record.
func (r *SecretRepository) FetchPassword(scope, name string) (string, bool) {
	var password string
	var found bool
	_ = r.storage.WithRLock(func() error {
		password, found = r.storage.Secrets[storage.SecretKey{Scope: scope, Name: name}]
		return nil
	})
	return password, found
}

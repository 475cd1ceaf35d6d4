package repos

import (
	"context"
	"fmt"
	"sort"

	"github.com/plantarium-platform/compose-datasources/internal/storage"
	"github.com/plantarium-platform/compose-datasources/pkg/models"
)

// ConnectionRepositoryInterface defines methods for managing connection records.
type ConnectionRepositoryInterface interface {
	ListRecords(ctx context.Context, scope string) ([]models.ConnectionRecord, error)
	AddRecord(ctx context.Context, scope string, record models.ConnectionRecord) error
	RemoveRecord(ctx context.Context, scope, name string) error
	FindRecordByName(scope, name string) (*models.ConnectionRecord, error)
}

// ConnectionRepository is an implementation of ConnectionRepositoryInterface.
type ConnectionRepository struct {
	storage *storage.RegistryDB
}

// NewConnectionRepository initializes a new ConnectionRepository with the provided storage.
func NewConnectionRepository(storage *storage.RegistryDB) *ConnectionRepository {
	return &ConnectionRepository{
		storage: storage,
	}
}

// ListRecords lists all records of a scope, ordered by name.
func (r *ConnectionRepository) ListRecords(_ context.Context, scope string) ([]models.ConnectionRecord, error) {
	var records []models.ConnectionRecord
	err := r.storage.WithRLock(func() error {
		records = make([]models.ConnectionRecord, 0, len(r.storage.Records[scope]))
		for _, record := range r.storage.Records[scope] {
			records = append(records, *record)
		}
		return nil
	})
	sort.Slice(records, func(i, j int) bool {
		return records[i].Name < records[j].Name
	})
	return records, err
}

// AddRecord adds a new record to the scope. Names are unique within a scope.
func (r *ConnectionRepository) AddRecord(_ context.Context, scope string, record models.ConnectionRecord) error {
	if record.Name == "" {
		return fmt.Errorf("record name must not be empty")
	}

	return r.storage.WithLock(func() error {
		records, exists := r.storage.Records[scope]
		if !exists {
			records = make(map[string]*models.ConnectionRecord)
			r.storage.Records[scope] = records
		}

		if _, exists := records[record.Name]; exists {
			return fmt.Errorf("record %s already exists in scope %s", record.Name, scope)
		}

		// The password lives in the secret storage only.
		record.Password = ""
		records[record.Name] = &record
		return nil
	})
}

// RemoveRecord removes a record and its stored password from the scope.
func (r *ConnectionRepository) RemoveRecord(_ context.Context, scope, name string) error {
	return r.storage.WithLock(func() error {
		if _, exists := r.storage.Records[scope][name]; !exists {
			return fmt.Errorf("record %s not found in scope %s", name, scope)
		}

		delete(r.storage.Records[scope], name)
		delete(r.storage.Secrets, storage.SecretKey{Scope: scope, Name: name})
		return nil
	})
}

// FindRecordByName retrieves a record by its name.
func (r *ConnectionRepository) FindRecordByName(scope, name string) (*models.ConnectionRecord, error) {
	var record *models.ConnectionRecord
	err := r.storage.WithRLock(func() error {
		stored, exists := r.storage.Records[scope][name]
		if !exists {
			return fmt.Errorf("record %s not found in scope %s", name, scope)
		}
		copied := *stored
		record = &copied
		return nil
	})
	return record, err
}

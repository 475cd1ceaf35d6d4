package storage

import (
	"sync"

	"github.com/plantarium-platform/compose-datasources/pkg/models"
)

// RegistryDB is a singleton in-memory connection registry, partitioned by project scope.
type RegistryDB struct {
	Records map[string]map[string]*models.ConnectionRecord // scope -> record name -> record
	Secrets map[SecretKey]string                           // Passwords, keyed by record identity
	mu      sync.RWMutex                                   // Mutex to handle concurrent access safely
}

// instance is the singleton instance of RegistryDB.
var instance *RegistryDB
var once sync.Once

// GetRegistryDB returns the singleton instance of RegistryDB.
func GetRegistryDB() *RegistryDB {
	once.Do(func() {
		instance = NewRegistryDB()
	})
	return instance
}

// NewRegistryDB creates an empty registry, independent from the singleton.
func NewRegistryDB() *RegistryDB {
	return &RegistryDB{
		Records: make(map[string]map[string]*models.ConnectionRecord),
		Secrets: make(map[SecretKey]string),
	}
}

// WithLock executes fn while holding the write lock.
func (s *RegistryDB) WithLock(fn func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn()
}

// WithRLock executes fn while holding the read lock.
func (s *RegistryDB) WithRLock(fn func() error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn()
}

func (s *RegistryDB) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Records = make(map[string]map[string]*models.ConnectionRecord)
	s.Secrets = make(map[SecretKey]string)
}

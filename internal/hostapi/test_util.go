package hostapi

import (
	"context"

	"github.com/plantarium-platform/compose-datasources/pkg/models"
	"github.com/stretchr/testify/mock"
)

// MockHostAPIManager mocks the HostAPIManagerInterface
type MockHostAPIManager struct {
	mock.Mock
}

// GetCurrentRegistryVersion mocks the GetCurrentRegistryVersion method
func (m *MockHostAPIManager) GetCurrentRegistryVersion(ctx context.Context) (int64, error) {
	args := m.Called()
	return args.Get(0).(int64), args.Error(1)
}

// StartTransaction mocks the StartTransaction method
func (m *MockHostAPIManager) StartTransaction(ctx context.Context, version int64) (string, error) {
	args := m.Called(version)
	return args.String(0), args.Error(1)
}

// CommitTransaction mocks the CommitTransaction method
func (m *MockHostAPIManager) CommitTransaction(ctx context.Context, transactionID string) error {
	args := m.Called(transactionID)
	return args.Error(0)
}

// RollbackTransaction mocks the RollbackTransaction method
func (m *MockHostAPIManager) RollbackTransaction(ctx context.Context, transactionID string) error {
	args := m.Called(transactionID)
	return args.Error(0)
}

// ListDataSources mocks the ListDataSources method
func (m *MockHostAPIManager) ListDataSources(ctx context.Context, scope string) ([]models.ConnectionRecord, error) {
	args := m.Called(scope)
	return args.Get(0).([]models.ConnectionRecord), args.Error(1)
}

// CreateDataSource mocks the CreateDataSource method
func (m *MockHostAPIManager) CreateDataSource(ctx context.Context, scope string, record models.ConnectionRecord, transactionID string) error {
	args := m.Called(scope, record, transactionID)
	return args.Error(0)
}

// DeleteDataSource mocks the DeleteDataSource method
func (m *MockHostAPIManager) DeleteDataSource(ctx context.Context, scope, name, transactionID string) error {
	args := m.Called(scope, name, transactionID)
	return args.Error(0)
}

// StoreCredentials mocks the StoreCredentials method
func (m *MockHostAPIManager) StoreCredentials(ctx context.Context, scope, name, password, transactionID string) error {
	args := m.Called(scope, name, password, transactionID)
	return args.Error(0)
}

// SendNotification mocks the SendNotification method
func (m *MockHostAPIManager) SendNotification(ctx context.Context, title, message string, severity models.Severity) error {
	args := m.Called(title, message, severity)
	return args.Error(0)
}

// DownloadDriver mocks the DownloadDriver method
func (m *MockHostAPIManager) DownloadDriver(ctx context.Context, driverID string) error {
	args := m.Called(driverID)
	return args.Error(0)
}

package registry

import (
	"context"

	"github.com/plantarium-platform/compose-datasources/pkg/models"
	"github.com/stretchr/testify/mock"
)

// MockStore mocks the Store interface
type MockStore struct {
	mock.Mock
}

func (m *MockStore) ListRecords(ctx context.Context, scope string) ([]models.ConnectionRecord, error) {
	args := m.Called(ctx, scope)
	return args.Get(0).([]models.ConnectionRecord), args.Error(1)
}

func (m *MockStore) AddRecord(ctx context.Context, scope string, record models.ConnectionRecord) error {
	args := m.Called(ctx, scope, record)
	return args.Error(0)
}

func (m *MockStore) RemoveRecord(ctx context.Context, scope, name string) error {
	args := m.Called(ctx, scope, name)
	return args.Error(0)
}

// MockSecretSink mocks the SecretSink interface
type MockSecretSink struct {
	mock.Mock
}

func (m *MockSecretSink) StorePassword(ctx context.Context, scope, name, password string) error {
	args := m.Called(ctx, scope, name, password)
	return args.Error(0)
}

// MockNotifier mocks the Notifier interface
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Notify(ctx context.Context, title, message string, severity models.Severity) error {
	args := m.Called(ctx, title, message, severity)
	return args.Error(0)
}

// MockDriverPreparer mocks the DriverPreparer interface
type MockDriverPreparer struct {
	mock.Mock
}

func (m *MockDriverPreparer) PrepareDriver(ctx context.Context, driverID string) error {
	args := m.Called(ctx, driverID)
	return args.Error(0)
}

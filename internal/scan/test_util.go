package scan

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/plantarium-platform/compose-datasources/internal/inference"
	"github.com/plantarium-platform/compose-datasources/internal/registry"
	"github.com/stretchr/testify/mock"
)

// MockReconciler mocks the Reconciler interface
type MockReconciler struct {
	mock.Mock
}

func (m *MockReconciler) Reconcile(ctx context.Context, scope string, databases []inference.ConnectionInfo, source string) registry.Outcome {
	args := m.Called(ctx, scope, databases, source)
	return args.Get(0).(registry.Outcome)
}

const postgresCompose = `
services:
  db:
    image: postgres:16
    ports:
      - "5555:5432"
    environment:
      POSTGRES_USER: admin
      POSTGRES_PASSWORD: secret
`

const mysqlCompose = `
services:
  cache:
    image: redis:7
  mysql:
    image: mysql:8
    environment:
      - MYSQL_USER=app
      - MYSQL_PASSWORD=pw
      - MYSQL_DATABASE=orders
`

const webOnlyCompose = `
services:
  web:
    image: nginx:latest
    ports:
      - "8080:80"
`

// writeTree creates the given files below root, creating parent directories.
func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("Failed to create directory for %s: %v", rel, err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("Failed to write %s: %v", rel, err)
		}
	}
}

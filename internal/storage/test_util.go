package storage

import (
	"time"

	"github.com/plantarium-platform/compose-datasources/pkg/models"
)

func initTestStorage() *RegistryDB {
	// Create fixed timestamp for consistent test data
	fixedTime := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	// Initialize storage with direct struct assignment
	return &RegistryDB{
		Records: map[string]map[string]*models.ConnectionRecord{
			"shop": {
				"Docker: db": {
					Name:      "Docker: db",
					URL:       "jdbc:postgresql://localhost:5432/shop",
					Driver:    "postgresql",
					Username:  "shop",
					Comment:   "Auto-created from /work/shop/docker-compose.yml (postgres service: db)",
					AutoSync:  true,
					CreatedAt: fixedTime,
				},
				"Reporting": {
					Name:      "Reporting",
					URL:       "jdbc:mysql://localhost:3306/reports",
					Driver:    "mysql",
					Username:  "root",
					CreatedAt: fixedTime,
				},
			},
		},
		Secrets: map[SecretKey]string{
			{Scope: "shop", Name: "Docker: db"}: "shop-secret",
		},
	}
}

// Helper function to get a fresh copy for testing
func GetTestStorage() *RegistryDB {
	return initTestStorage()
}

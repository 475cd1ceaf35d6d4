package models

import "time"

// ConnectionRecord is a named database connection persisted by the host registry.
type ConnectionRecord struct {
	Name      string    `json:"name"`      // Unique within a scope
	URL       string    `json:"url"`       // JDBC connection URL
	Driver    string    `json:"driver"`    // Driver identifier, e.g. postgresql
	Username  string    `json:"username"`  // Login user
	Password  string    `json:"-"`         // Kept out of the record payload, stored via the secret sink
	Comment   string    `json:"comment"`   // Human readable origin
	AutoSync  bool      `json:"autoSync"`  // Host keeps the schema synchronized
	CreatedAt time.Time `json:"createdAt"` // Time the record was (re)created
}

// Severity defines the level of a user-facing notification.
type Severity string

const (
	SeverityInfo    Severity = "INFO"
	SeverityWarning Severity = "WARNING"
	SeverityError   Severity = "ERROR"
)

package storage

// SecretKey identifies the password of a connection record.
type SecretKey struct {
	Scope string
	Name  string
}

package registry

import "fmt"

// WriteError reports a record the host store rejected.
type WriteError struct {
	Op   string // list, remove, add or store-password
	Name string // Record name
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("registry %s failed for %q: %v", e.Op, e.Name, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

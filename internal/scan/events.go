package scan

// FileOp is the kind of change a FileEvent reports.
type FileOp int

const (
	// FileOpCreate indicates a file was created.
	FileOpCreate FileOp = iota

	// FileOpWrite indicates a file was modified.
	FileOpWrite

	// FileOpRemove indicates a file was deleted or renamed away.
	FileOpRemove
)

// String returns the string representation of the operation.
func (op FileOp) String() string {
	switch op {
	case FileOpCreate:
		return "create"
	case FileOpWrite:
		return "write"
	case FileOpRemove:
		return "remove"
	default:
		return "unknown"
	}
}

// FileEvent announces that a file below the project root appeared or changed.
type FileEvent struct {
	Path string // Absolute path of the changed file
	Op   FileOp
}

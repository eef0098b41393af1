package catalog

import "fmt"

// ValidationError reports input rejected before any mutation: unsupported
// dataset, empty version, empty record id, or an invalid market price.
type ValidationError struct {
	Detail string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + e.Detail
}

func validationErrorf(format string, args ...any) error {
	return &ValidationError{Detail: fmt.Sprintf(format, args...)}
}

// ConsistencyError reports a version-chain or state-hash mismatch detected
// before commit. The transaction carrying it is rolled back in full.
type ConsistencyError struct {
	Kind     string // "version-chain" or "state-hash"
	Expected string
	Actual   string
}

func (e *ConsistencyError) Error() string {
	return fmt.Sprintf("%s mismatch: expected %s, got %s", e.Kind, e.Expected, e.Actual)
}

// StorageError wraps a database failure. It is fatal for the operation that
// hit it and propagates unchanged.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func storageError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StorageError{Op: op, Err: err}
}

package supervisor

import (
	"errors"
	"fmt"
)

// MissingExecutableError means the daemon binary is not on PATH.
type MissingExecutableError struct{ Name string }

func (e *MissingExecutableError) Error() string {
	return fmt.Sprintf("%s is not installed; install it from https://ollama.com", e.Name)
}

// SpawnError wraps a failure to launch the daemon process.
type SpawnError struct{ Err error }

func (e *SpawnError) Error() string { return "start daemon: " + e.Err.Error() }
func (e *SpawnError) Unwrap() error { return e.Err }

// HealthTimeoutError means the daemon never answered within the retry bound.
type HealthTimeoutError struct{ Attempts int }

func (e *HealthTimeoutError) Error() string {
	return fmt.Sprintf("daemon not ready after %d attempts", e.Attempts)
}

// CatalogQueryError wraps a failed or malformed model list query. It is soft:
// callers treat the model as absent.
type CatalogQueryError struct{ Err error }

func (e *CatalogQueryError) Error() string { return "query installed models: " + e.Err.Error() }
func (e *CatalogQueryError) Unwrap() error { return e.Err }

// PullFailureError means the model download exited unsuccessfully.
type PullFailureError struct {
	Model    string
	ExitCode int
	Err      error
}

func (e *PullFailureError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("pull %s: %v", e.Model, e.Err)
	}
	return fmt.Sprintf("pull %s: exit code %d", e.Model, e.ExitCode)
}

func (e *PullFailureError) Unwrap() error { return e.Err }

// IsMissingExecutable reports whether err is a MissingExecutableError.
func IsMissingExecutable(err error) bool {
	var e *MissingExecutableError
	return errors.As(err, &e)
}

// IsSpawnError reports whether err is a SpawnError.
func IsSpawnError(err error) bool {
	var e *SpawnError
	return errors.As(err, &e)
}

// IsHealthTimeout reports whether err is a HealthTimeoutError.
func IsHealthTimeout(err error) bool {
	var e *HealthTimeoutError
	return errors.As(err, &e)
}

// IsCatalogQuery reports whether err is a CatalogQueryError.
func IsCatalogQuery(err error) bool {
	var e *CatalogQueryError
	return errors.As(err, &e)
}

// IsPullFailure reports whether err is a PullFailureError.
func IsPullFailure(err error) bool {
	var e *PullFailureError
	return errors.As(err, &e)
}

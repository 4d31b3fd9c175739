package ollama

import (
	"errors"
	"fmt"
)

// UnreachableError reports a connectivity or protocol failure talking to the
// daemon: the connection failed, the daemon answered with a non-2xx status, or
// the body did not match the expected shape.
type UnreachableError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *UnreachableError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("ollama %s: status %d: %v", e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("ollama %s: %v", e.Op, e.Err)
}

func (e *UnreachableError) Unwrap() error { return e.Err }

// IsUnreachable reports whether err is a connectivity or protocol error.
func IsUnreachable(err error) bool {
	var ue *UnreachableError
	return errors.As(err, &ue)
}

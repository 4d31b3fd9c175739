package chat

import (
	"errors"
	"fmt"
)

// Kind classifies a failed chat request.
type Kind string

const (
	KindEmptyInput        Kind = "empty_input"
	KindDaemonUnreachable Kind = "daemon_unreachable"
	KindInternal          Kind = "internal"
)

// Error is returned by Pipeline.Chat. Message is safe to show to the caller.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the Kind of a chat error, or KindInternal for any other
// non-nil error. It returns "" for nil.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return KindInternal
}

// IsEmptyInput reports whether err rejects a blank prompt.
func IsEmptyInput(err error) bool { return KindOf(err) == KindEmptyInput }

// IsDaemonUnreachable reports whether err is a daemon connectivity or protocol failure.
func IsDaemonUnreachable(err error) bool { return KindOf(err) == KindDaemonUnreachable }

// ABOUTME: Error taxonomy for record store operations.
// ABOUTME: StoreError tags every failure with the operation, collection and kind.
package storage

import (
	"errors"
	"fmt"

	"github.com/harperreed/wellness/internal/models"
)

// ErrorKind classifies why a store call failed.
type ErrorKind int

const (
	// KindTransport covers connectivity, I/O and unexpected backend errors.
	KindTransport ErrorKind = iota
	// KindUnauthorized means no session, or the row belongs to someone else.
	KindUnauthorized
	// KindConstraint means the backend rejected the row's contents.
	KindConstraint
)

func (k ErrorKind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindUnauthorized:
		return "unauthorized"
	case KindConstraint:
		return "constraint"
	default:
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
}

var (
	ErrUserMismatch = errors.New("record belongs to another user")
	ErrMissingUser  = errors.New("record has no user id")
	ErrReadOnly     = errors.New("cannot write: database is locked by another process (MCP server?)")
	ErrUnknownStore = errors.New("unknown storage backend")
	ErrNotFound     = errors.New("no matching entry")
	ErrAmbiguousID  = errors.New("id prefix matches more than one entry")
)

// StoreError is returned by every Table and Client method.
type StoreError struct {
	Op         string
	Collection models.Collection
	Kind       ErrorKind
	Err        error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Collection, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// IsStoreError reports whether err wraps a StoreError, returning it.
func IsStoreError(err error) (*StoreError, bool) {
	var se *StoreError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}

// IsKind reports whether err is a StoreError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	se, ok := IsStoreError(err)
	return ok && se.Kind == kind
}

func storeErr(op string, c models.Collection, kind ErrorKind, err error) error {
	if err == nil {
		return nil
	}
	if se, ok := IsStoreError(err); ok {
		return se
	}
	return &StoreError{Op: op, Collection: c, Kind: kind, Err: err}
}

package secondary

import (
	"errors"
	"fmt"
)

// ErrNotFound is wrapped by adapters when a record does not exist.
var ErrNotFound = errors.New("record not found")

// RemoteWriteError reports a failed create, update or delete.
type RemoteWriteError struct {
	Op     string // "create", "update" or "delete"
	Entity string // "site", "presenter", "volunteer_area" or "report"
	ID     string
	Err    error
}

func (e *RemoteWriteError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("failed to %s %s %s: %v", e.Op, e.Entity, e.ID, e.Err)
	}
	return fmt.Sprintf("failed to %s %s: %v", e.Op, e.Entity, e.Err)
}

func (e *RemoteWriteError) Unwrap() error { return e.Err }

// RemoteReadError reports a failed listing.
type RemoteReadError struct {
	Collection string
	Err        error
}

func (e *RemoteReadError) Error() string {
	return fmt.Sprintf("failed to list %s: %v", e.Collection, e.Err)
}

func (e *RemoteReadError) Unwrap() error { return e.Err }

// RoleLookupError reports a failed role resolution.
type RoleLookupError struct {
	UserID string
	Err    error
}

func (e *RoleLookupError) Error() string {
	return fmt.Sprintf("failed to resolve role for %s: %v", e.UserID, e.Err)
}

func (e *RoleLookupError) Unwrap() error { return e.Err }

// WriteError wraps err into a *RemoteWriteError unless it already is one.
func WriteError(op, entity, id string, err error) error {
	if err == nil {
		return nil
	}
	var werr *RemoteWriteError
	if errors.As(err, &werr) {
		return err
	}
	return &RemoteWriteError{Op: op, Entity: entity, ID: id, Err: err}
}

// ReadError wraps err into a *RemoteReadError unless it already is one.
func ReadError(collection string, err error) error {
	if err == nil {
		return nil
	}
	var rerr *RemoteReadError
	if errors.As(err, &rerr) {
		return err
	}
	return &RemoteReadError{Collection: collection, Err: err}
}

package objectstore

import (
	"errors"
	"fmt"
)

// ErrClosed is returned by every operation on a store after Close.
var ErrClosed = errors.New("object store is closed")

// ConnectionError indicates the storage location could not be opened or the
// schema could not be ensured
type ConnectionError struct {
	Location string
	Err      error
}

func (e ConnectionError) Error() string {
	return fmt.Sprintf("failed to open object store %s: %v", e.Location, e.Err)
}

func (e ConnectionError) Unwrap() error {
	return e.Err
}

// SerializationError indicates a value could not be converted to or from its
// persisted representation
type SerializationError struct {
	Key string
	Err error
}

func (e SerializationError) Error() string {
	return fmt.Sprintf("failed to serialize value for key %s: %v", e.Key, e.Err)
}

func (e SerializationError) Unwrap() error {
	return e.Err
}

// InvalidExpiryError indicates an expiry argument could not be resolved
type InvalidExpiryError struct {
	Input  string
	Reason string
}

func (e InvalidExpiryError) Error() string {
	return fmt.Sprintf("invalid expiry %q: %s", e.Input, e.Reason)
}

// StoreError wraps a failure of the underlying database
type StoreError struct {
	Op  string
	Key string
	Err error
}

func (e StoreError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("object store %s failed: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("object store %s failed for key %s: %v", e.Op, e.Key, e.Err)
}

func (e StoreError) Unwrap() error {
	return e.Err
}

// InvalidKeyError indicates an invalid key was provided
type InvalidKeyError struct {
	Key    string
	Reason string
}

func (e InvalidKeyError) Error() string {
	return fmt.Sprintf("invalid key %q: %s", e.Key, e.Reason)
}

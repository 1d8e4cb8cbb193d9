// ABOUTME: Typed error taxonomy shared by the store, remote client and sync engine
// ABOUTME: Callers branch on kind with errors.As instead of matching strings

package models

import "fmt"

// TransportError wraps a network or IO failure talking to the remote API.
type TransportError struct {
	Endpoint string
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("network call to %q failed: %v", e.Endpoint, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// APIRejectionError reports a result code other than done from the remote.
type APIRejectionError struct {
	Code string
}

func (e *APIRejectionError) Error() string {
	return fmt.Sprintf("api rejected the request: %s", e.Code)
}

// InvalidRequestError reports a request that cannot be satisfied, such as an
// add that the remote claims already exists but that no lookup can confirm.
type InvalidRequestError struct {
	Reason string
}

func (e *InvalidRequestError) Error() string {
	return fmt.Sprintf("invalid request: %s", e.Reason)
}

// InvalidStateError reports an operation that is illegal in the current local
// state, such as deleting a bookmark that was never stored.
type InvalidStateError struct {
	Reason string
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("invalid state: %s", e.Reason)
}

// InvalidQueryError reports search input the full-text index cannot tokenize
// safely. Rejecting it here keeps raw input out of the MATCH syntax.
type InvalidQueryError struct {
	Input string
}

func (e *InvalidQueryError) Error() string {
	return fmt.Sprintf("query contains unsupported characters: %q", e.Input)
}

// LocalStoreError wraps a persistence failure.
type LocalStoreError struct {
	Op  string
	Err error
}

func (e *LocalStoreError) Error() string {
	return fmt.Sprintf("local store: %s: %v", e.Op, e.Err)
}

func (e *LocalStoreError) Unwrap() error { return e.Err }

package protocol

import "fmt"

// The four failure classes of the system. Transport and persistence errors
// wrap an underlying cause; protocol and state errors carry a reason only.
// None of them is ever fatal to the process: transport errors are retried
// within bounds, the rest surface as structured results.

// TransportError is a connect/send/receive failure. Recoverable via bounded
// retry.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport: %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ProtocolError is a malformed or incomplete message. Surfaced immediately,
// never retried.
type ProtocolError struct {
	Reason string
}

func (e *ProtocolError) Error() string {
	return "protocol: " + e.Reason
}

// StateError is a refused mutation (unowned plot, invalid move, ...).
// Returned as an explicit failure with no partial mutation.
type StateError struct {
	Reason string
}

func (e *StateError) Error() string {
	return "state: " + e.Reason
}

// PersistenceError is a snapshot read/write failure. Reads fall back to
// defaults; writes are retried once and then surfaced as a warning without
// discarding the in-memory mutation.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence: %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

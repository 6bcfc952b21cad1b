package domain

import "fmt"

// ValidationError marks an inbound event that is dropped without being
// persisted or broadcast.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid event: %s %s", e.Field, e.Reason)
}

// PersistenceError wraps a store read or write failure. On the send path it
// aborts the pipeline before any broadcast happens.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("store %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// DeliveryError is a failure to hand a broadcast to one subscriber channel.
// It never aborts delivery to the remaining subscribers.
type DeliveryError struct {
	ChannelID string
	Room      string
	Err       error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("deliver to %s in room %s: %v", e.ChannelID, e.Room, e.Err)
}

func (e *DeliveryError) Unwrap() error { return e.Err }

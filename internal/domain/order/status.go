package order

import "fmt"

// Status is the lifecycle state of an order.
type Status string

const (
	StatusPending   Status = "pending"
	StatusShipping  Status = "shipping"
	StatusDelivered Status = "delivered"
	StatusCancelled Status = "cancelled"
	StatusReturned  Status = "returned"
)

// transitions is the allowed status graph. Delivered, cancelled, and
// returned are terminal.
var transitions = map[Status][]Status{
	StatusPending:  {StatusShipping, StatusCancelled},
	StatusShipping: {StatusDelivered, StatusReturned},
}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusShipping, StatusDelivered, StatusCancelled, StatusReturned:
		return true
	}
	return false
}

// CanTransitionTo reports whether moving from s to next is allowed.
func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Progress returns the zero-based position of s on the fulfilment track
// (pending, shipping, delivered), or -1 for cancelled and returned orders.
func (s Status) Progress() int {
	switch s {
	case StatusPending:
		return 0
	case StatusShipping:
		return 1
	case StatusDelivered:
		return 2
	}
	return -1
}

// InvalidTransitionError reports a rejected status change. The order is left
// unchanged when this error is returned.
type InvalidTransitionError struct {
	From Status
	To   Status
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot move order from %s to %s", e.From, e.To)
}

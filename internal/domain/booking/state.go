package booking

import (
	"time"

	"github.com/shareit-platform/service-booking/internal/pkg/domain"
)

// State is the category a booking listing is filtered by. It classifies a
// query, it is never persisted.
type State int

const (
	StateAll State = iota
	StateCurrent
	StatePast
	StateFuture
	StateWaiting
	StateRejected

	numStates
)

// NumStates is the number of State values.
const NumStates = int(numStates)

var stateNames = [NumStates]string{
	StateAll:      "ALL",
	StateCurrent:  "CURRENT",
	StatePast:     "PAST",
	StateFuture:   "FUTURE",
	StateWaiting:  "WAITING",
	StateRejected: "REJECTED",
}

// States returns every State in declaration order.
func States() []State {
	out := make([]State, NumStates)
	for i := range out {
		out[i] = State(i)
	}
	return out
}

// String returns the enumeration name.
func (s State) String() string {
	if s < 0 || s >= numStates {
		return "UNKNOWN"
	}
	return stateNames[s]
}

// ParseState maps a case-sensitive enumeration name to its State.
func ParseState(raw string) (State, error) {
	for i, name := range stateNames {
		if name == raw {
			return State(i), nil
		}
	}
	return 0, domain.NewBadRequestErrorf("Unknown state: %s", raw)
}

// Matches reports whether b falls into the category at now.
func (s State) Matches(b *Booking, now time.Time) bool {
	switch s {
	case StateAll:
		return true
	case StateCurrent:
		return b.IsCurrentAt(now)
	case StatePast:
		return b.IsPastAt(now)
	case StateFuture:
		return b.IsFutureAt(now)
	case StateWaiting:
		return b.status == StatusWaiting
	case StateRejected:
		return b.status == StatusRejected
	}
	return false
}

// SortKey is the column a listing is ordered by.
type SortKey int

const (
	SortByStart SortKey = iota
	SortByEnd
)

// Order is a sort key and direction. Ties always break on ascending id.
type Order struct {
	Key  SortKey
	Desc bool
}

var (
	OrderByStartDesc = Order{Key: SortByStart, Desc: true}
	OrderByEndDesc   = Order{Key: SortByEnd, Desc: true}
)

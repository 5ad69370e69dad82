package booking

import (
	"net/http"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/nekogravitycat/shareit-backend/internal/pkg/apperror"
)

// State is a query-time classification of bookings. It is never stored.
type State int

const (
	StateAll State = iota
	StateCurrent
	StateFuture
	StatePast
	StateWaiting
	StateRejected
)

var stateNames = map[State]string{
	StateAll:      "ALL",
	StateCurrent:  "CURRENT",
	StateFuture:   "FUTURE",
	StatePast:     "PAST",
	StateWaiting:  "WAITING",
	StateRejected: "REJECTED",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "UNKNOWN"
}

// ParseState resolves a client-supplied state name, ignoring case and surrounding spaces.
// An empty string means ALL.
func ParseState(raw string) (State, error) {
	name := strings.ToUpper(strings.TrimSpace(raw))
	if name == "" {
		return StateAll, nil
	}
	for s, n := range stateNames {
		if n == name {
			return s, nil
		}
	}
	return 0, apperror.Wrap(ErrUnknownState, http.StatusBadRequest, "Unknown state: "+raw)
}

// IsValidState reports whether raw names a state. Used by the request binding layer.
func IsValidState(raw string) bool {
	_, err := ParseState(raw)
	return err == nil
}

// statePredicate holds both renderings of one state: a SQL condition for the store and
// an in-process check. A nil where means "no condition".
type statePredicate struct {
	where func(now time.Time) squirrel.Sqlizer
	match func(b *Booking, now time.Time) bool
}

// Column names match the alias used by the repository's select.
const (
	colStart  = "b.start_time"
	colEnd    = "b.end_time"
	colStatus = "b.status"
)

// CURRENT, FUTURE and PAST partition every booking for a fixed now:
// start > now is FUTURE, end <= now is PAST, everything in between is CURRENT.
var statePredicates = map[State]statePredicate{
	StateAll: {
		where: nil,
		match: func(*Booking, time.Time) bool { return true },
	},
	StateCurrent: {
		where: func(now time.Time) squirrel.Sqlizer {
			return squirrel.And{squirrel.LtOrEq{colStart: now}, squirrel.Gt{colEnd: now}}
		},
		match: func(b *Booking, now time.Time) bool {
			return !b.Start.After(now) && b.End.After(now)
		},
	},
	StateFuture: {
		where: func(now time.Time) squirrel.Sqlizer { return squirrel.Gt{colStart: now} },
		match: func(b *Booking, now time.Time) bool { return b.Start.After(now) },
	},
	StatePast: {
		where: func(now time.Time) squirrel.Sqlizer { return squirrel.LtOrEq{colEnd: now} },
		match: func(b *Booking, now time.Time) bool { return !b.End.After(now) },
	},
	StateWaiting: {
		where: func(time.Time) squirrel.Sqlizer { return squirrel.Eq{colStatus: StatusWaiting} },
		match: func(b *Booking, _ time.Time) bool { return b.Status == StatusWaiting },
	},
	StateRejected: {
		where: func(time.Time) squirrel.Sqlizer { return squirrel.Eq{colStatus: StatusRejected} },
		match: func(b *Booking, _ time.Time) bool { return b.Status == StatusRejected },
	},
}

// Where returns the SQL condition for s at now, or nil when s does not filter.
func (s State) Where(now time.Time) squirrel.Sqlizer {
	p, ok := statePredicates[s]
	if !ok || p.where == nil {
		return nil
	}
	return p.where(now)
}

// Matches reports whether b falls into state s at now.
func (s State) Matches(b *Booking, now time.Time) bool {
	p, ok := statePredicates[s]
	if !ok {
		return false
	}
	return p.match(b, now)
}

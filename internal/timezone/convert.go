// Package timezone converts between calendar wall-clock values in a named
// IANA zone and absolute instants, without reference to the server's local zone.
package timezone

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

var (
	ErrInvalidDate = errors.New("date must be YYYY-MM-DD")
	ErrInvalidTime = errors.New("time must be HH:MM")
	ErrUnknownZone = errors.New("unknown time zone")
)

// Resolution tells how a wall-clock time mapped onto the zone's timeline.
type Resolution int

const (
	// Exact: the wall time occurs exactly once.
	Exact Resolution = iota
	// ShiftedForward: the wall time falls in a spring-forward gap and was
	// moved forward by the length of the gap.
	ShiftedForward
	// EarlierOfAmbiguous: the wall time occurs twice (fall-back overlap)
	// and the first occurrence was chosen.
	EarlierOfAmbiguous
)

func (r Resolution) String() string {
	switch r {
	case ShiftedForward:
		return "shifted_forward"
	case EarlierOfAmbiguous:
		return "earlier_of_ambiguous"
	default:
		return "exact"
	}
}

var (
	zonesMu sync.RWMutex
	zones   = map[string]*time.Location{}
)

// Load returns the named location, caching lookups.
func Load(name string) (*time.Location, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: empty name", ErrUnknownZone)
	}
	zonesMu.RLock()
	loc, ok := zones[name]
	zonesMu.RUnlock()
	if ok {
		return loc, nil
	}

	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownZone, name)
	}
	zonesMu.Lock()
	zones[name] = loc
	zonesMu.Unlock()
	return loc, nil
}

// DateKeyOf renders the calendar date of instant in zone as YYYY-MM-DD.
func DateKeyOf(instant time.Time, zone string) (string, error) {
	loc, err := Load(zone)
	if err != nil {
		return "", err
	}
	return instant.In(loc).Format(DateLayout), nil
}

// TimeOfDay renders the wall-clock time of instant in zone as HH:MM.
func TimeOfDay(instant time.Time, zone string) (string, error) {
	loc, err := Load(zone)
	if err != nil {
		return "", err
	}
	return instant.In(loc).Format(TimeLayout), nil
}

type wallClock struct {
	year         int
	month        time.Month
	day          int
	hour, minute int
}

func (w wallClock) asUTC() time.Time {
	return time.Date(w.year, w.month, w.day, w.hour, w.minute, 0, 0, time.UTC)
}

func wallOf(t time.Time) wallClock {
	return wallClock{t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute()}
}

func parseWall(dateKey, hhmm string) (wallClock, error) {
	d, err := time.Parse(DateLayout, dateKey)
	if err != nil {
		return wallClock{}, fmt.Errorf("%w: %q", ErrInvalidDate, dateKey)
	}
	t, err := time.Parse(TimeLayout, hhmm)
	if err != nil {
		return wallClock{}, fmt.Errorf("%w: %q", ErrInvalidTime, hhmm)
	}
	return wallClock{d.Year(), d.Month(), d.Day(), t.Hour(), t.Minute()}, nil
}

func offsetAt(t time.Time, loc *time.Location) time.Duration {
	_, off := t.In(loc).Zone()
	return time.Duration(off) * time.Second
}

// WallTimeToInstant converts a date key and HH:MM wall time in zone to an
// absolute instant.
//
// The wall fields are first read as if they were UTC. The zone's offset is
// measured on both sides of that trial instant and the trial is corrected by
// each offset; a correction is accepted when rendering it back in the zone
// reproduces the requested wall time. A time inside a spring-forward gap
// keeps the offset in force before the transition, which moves it forward
// by the gap length. A time inside a fall-back overlap resolves to the
// earlier instant.
func WallTimeToInstant(dateKey, hhmm, zone string) (time.Time, Resolution, error) {
	loc, err := Load(zone)
	if err != nil {
		return time.Time{}, Exact, err
	}
	want, err := parseWall(dateKey, hhmm)
	if err != nil {
		return time.Time{}, Exact, err
	}

	trial := want.asUTC()
	// 36h clears the widest real offsets (-12h..+14h) on either side.
	before := offsetAt(trial.Add(-36*time.Hour), loc)
	after := offsetAt(trial.Add(36*time.Hour), loc)
	here := offsetAt(trial, loc)

	var matches []time.Time
	for _, off := range []time.Duration{before, here, after} {
		candidate := trial.Add(-off)
		if wallOf(candidate.In(loc)) != want {
			continue
		}
		dup := false
		for _, m := range matches {
			if m.Equal(candidate) {
				dup = true
			}
		}
		if !dup {
			matches = append(matches, candidate)
		}
	}

	switch len(matches) {
	case 0:
		return trial.Add(-before).In(loc), ShiftedForward, nil
	case 1:
		return matches[0].In(loc), Exact, nil
	default:
		earliest := matches[0]
		for _, m := range matches[1:] {
			if m.Before(earliest) {
				earliest = m
			}
		}
		return earliest.In(loc), EarlierOfAmbiguous, nil
	}
}

package whereclause

import (
	"time"

	"github.com/caldera-ledger/txregistry/internal/regerrors"
)

// ExpandDateWindow turns caller-supplied calendar dates (YYYY-MM-DD) into
// inclusive start-of-day/end-of-day RFC3339 timestamps in loc, matching the
// registry's date-window filter semantics (§9 Design Notes: dates without an
// explicit offset are interpreted in the configured registry timezone,
// defaulting to Asia/Hong_Kong).
func ExpandDateWindow(dateStart, dateEnd string, loc *time.Location) (start, end *string, err error) {
	if dateStart != "" {
		parsed, perr := time.ParseInLocation("2006-01-02", dateStart, loc)
		if perr != nil {
			return nil, nil, regerrors.Wrap(regerrors.ErrCodeInvalidDateRange, "date_start", perr)
		}
		s := parsed.Format(time.RFC3339)
		start = &s
	}

	if dateEnd != "" {
		parsed, perr := time.ParseInLocation("2006-01-02", dateEnd, loc)
		if perr != nil {
			return nil, nil, regerrors.Wrap(regerrors.ErrCodeInvalidDateRange, "date_end", perr)
		}
		endOfDay := parsed.Add(24*time.Hour - time.Nanosecond)
		e := endOfDay.Format(time.RFC3339)
		end = &e
	}

	if start != nil && end != nil {
		startParsed, _ := time.Parse(time.RFC3339, *start)
		endParsed, _ := time.Parse(time.RFC3339, *end)
		if endParsed.Before(startParsed) {
			return nil, nil, regerrors.New(regerrors.ErrCodeInvalidDateRange, "date_range", "date_end precedes date_start")
		}
	}

	return start, end, nil
}

// DefaultLocation resolves the registry's configured date-window timezone,
// falling back to Asia/Hong_Kong if name is empty or unresolvable.
func DefaultLocation(name string) *time.Location {
	if name == "" {
		name = "Asia/Hong_Kong"
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		loc, err = time.LoadLocation("Asia/Hong_Kong")
		if err != nil {
			return time.UTC
		}
	}
	return loc
}

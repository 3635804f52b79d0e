package domain

import (
	"fmt"
	"time"
)

// DateMentionKind distinguishes single-day mentions from explicit ranges.
type DateMentionKind string

// Available date mention kinds.
const (
	// DateMentionSingle is one calendar day, optionally narrowed by times.
	DateMentionSingle DateMentionKind = "single"

	// DateMentionRange spans from a start date to an end date.
	DateMentionRange DateMentionKind = "range"
)

// IsValid returns true if the kind is recognised.
func (k DateMentionKind) IsValid() bool {
	return k == DateMentionSingle || k == DateMentionRange
}

// String returns the string representation.
func (k DateMentionKind) String() string {
	return string(k)
}

// DateMention is one date or time phrase extracted from a query.
// Field values are the raw strings the extractor produced; resolution
// into instants happens in the services layer.
type DateMention struct {
	// Kind selects which date fields are meaningful.
	Kind DateMentionKind

	// Date is the day of a single mention.
	Date string

	// StartDate is the first day of a range mention.
	StartDate string

	// EndDate is the last day of a range mention.
	EndDate string

	// StartTime optionally narrows the start of the day.
	StartTime string

	// EndTime optionally narrows the end of the day.
	EndTime string

	// Phrase is the original wording ("the fifth of August", "yesterday").
	// Used when the structured fields are empty or unparsable.
	Phrase string
}

// Single builds a single-day mention.
func Single(date, startTime, endTime string) DateMention {
	return DateMention{Kind: DateMentionSingle, Date: date, StartTime: startTime, EndTime: endTime}
}

// Range builds a range mention.
func Range(startDate, endDate, startTime, endTime string) DateMention {
	return DateMention{
		Kind:      DateMentionRange,
		StartDate: startDate,
		EndDate:   endDate,
		StartTime: startTime,
		EndTime:   endTime,
	}
}

// TimeWindow is a UTC interval used to bound retrieval.
// A nil *TimeWindow means unbounded, which is distinct from a window
// whose start equals its end.
type TimeWindow struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// NewTimeWindow normalises both bounds to UTC.
// Returns ErrInvalidInput when end precedes start.
func NewTimeWindow(start, end time.Time) (*TimeWindow, error) {
	if end.Before(start) {
		return nil, fmt.Errorf("%w: window end %s before start %s",
			ErrInvalidInput, end.Format(time.RFC3339), start.Format(time.RFC3339))
	}
	return &TimeWindow{Start: start.UTC(), End: end.UTC()}, nil
}

// Valid reports whether the window respects start <= end.
func (w *TimeWindow) Valid() bool {
	return w != nil && !w.End.Before(w.Start)
}

// Contains reports whether t lies within the window. An unbounded window
// contains every instant.
func (w *TimeWindow) Contains(t time.Time) bool {
	if w == nil {
		return true
	}
	return !t.Before(w.Start) && !t.After(w.End)
}

// Overlaps reports whether the interval [start, end] intersects the window,
// using the same predicate the stores apply: end >= window.Start and
// start <= window.End.
func (w *TimeWindow) Overlaps(start, end time.Time) bool {
	if w == nil {
		return true
	}
	return !end.Before(w.Start) && !start.After(w.End)
}

// String renders the window for logs.
func (w *TimeWindow) String() string {
	if w == nil {
		return "unbounded"
	}
	return w.Start.Format(time.RFC3339Nano) + " .. " + w.End.Format(time.RFC3339Nano)
}

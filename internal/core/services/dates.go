package services

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	dps "github.com/markusmobius/go-dateparser"

	"github.com/custodia-labs/castquery/internal/core/domain"
	"github.com/custodia-labs/castquery/internal/logger"
)

// DateRangeResolver reduces the date mentions of a query to one UTC window.
// It performs no I/O and never fails: mentions that cannot be parsed are
// skipped, and a query with no usable mention resolves to unbounded (nil).
type DateRangeResolver struct {
	now           func() time.Time
	useDateParser bool
}

// DateResolverOption configures a DateRangeResolver.
type DateResolverOption func(*DateRangeResolver)

// WithClock sets the clock used for relative phrases and missing years.
func WithClock(now func() time.Time) DateResolverOption {
	return func(r *DateRangeResolver) {
		if now != nil {
			r.now = now
		}
	}
}

// WithoutDateParser disables the free-text fallback parser, leaving only
// the fixed layouts, ordinal phrases and relative keywords.
func WithoutDateParser() DateResolverOption {
	return func(r *DateRangeResolver) {
		r.useDateParser = false
	}
}

// NewDateRangeResolver creates a resolver using the system clock.
func NewDateRangeResolver(opts ...DateResolverOption) *DateRangeResolver {
	r := &DateRangeResolver{
		now:           time.Now,
		useDateParser: true,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the outer bounds of every resolvable mention, or nil when
// none resolves. Disjoint mentions are merged into one window spanning all
// of them.
func (r *DateRangeResolver) Resolve(mentions []domain.DateMention) *domain.TimeWindow {
	var (
		minStart time.Time
		maxEnd   time.Time
		found    bool
	)

	for _, m := range mentions {
		start, end, ok := r.resolveMention(m)
		if !ok {
			logger.Debug("Skipping unresolvable date mention: %+v", m)
			continue
		}
		if !found || start.Before(minStart) {
			minStart = start
		}
		if !found || end.After(maxEnd) {
			maxEnd = end
		}
		found = true
	}

	if !found {
		return nil
	}
	return &domain.TimeWindow{Start: minStart, End: maxEnd}
}

// resolveMention computes the instants of one mention. Structured range
// fields win over the single date, which wins over the free phrase.
func (r *DateRangeResolver) resolveMention(m domain.DateMention) (time.Time, time.Time, bool) {
	if m.StartDate != "" || m.EndDate != "" {
		startFirst, _, okStart := r.parseSpan(m.StartDate)
		_, endLast, okEnd := r.parseSpan(m.EndDate)
		if okStart && okEnd {
			return r.applyTimes(startFirst, endLast, m.StartTime, m.EndTime)
		}
	}

	if m.Date != "" {
		if first, last, ok := r.parseSpan(m.Date); ok {
			return r.applyTimes(first, last, m.StartTime, m.EndTime)
		}
	}

	if m.Phrase != "" {
		if first, last, ok := r.parseSpan(m.Phrase); ok {
			return r.applyTimes(first, last, m.StartTime, m.EndTime)
		}
	}

	return time.Time{}, time.Time{}, false
}

// applyTimes narrows a span of whole days with optional clock times.
// Unparsable times fall back to midnight and end of day respectively.
func (r *DateRangeResolver) applyTimes(firstDay, lastDayEnd time.Time, startTime, endTime string) (time.Time, time.Time, bool) {
	start := firstDay
	end := lastDayEnd

	if offset, ok := parseClock(startTime); ok {
		start = firstDay.Add(offset)
	}
	if offset, ok := parseClock(endTime); ok {
		end = startOfDay(lastDayEnd).Add(offset)
	}

	if end.Before(start) {
		return time.Time{}, time.Time{}, false
	}
	return start, end, true
}

// parseSpan parses a date phrase into its first midnight and the end of its
// last day.
func (r *DateRangeResolver) parseSpan(raw string) (time.Time, time.Time, bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return time.Time{}, time.Time{}, false
	}

	today := startOfDay(r.now().UTC())

	switch strings.ToLower(trimmed) {
	case "today":
		return today, endOfDay(today), true
	case "yesterday":
		d := today.AddDate(0, 0, -1)
		return d, endOfDay(d), true
	case "tomorrow":
		d := today.AddDate(0, 0, 1)
		return d, endOfDay(d), true
	case "last week":
		return today.AddDate(0, 0, -7), endOfDay(today), true
	case "this week":
		monday := startOfWeek(today)
		return monday, endOfDay(monday.AddDate(0, 0, 6)), true
	case "next week":
		monday := startOfWeek(today.AddDate(0, 0, 7))
		return monday, endOfDay(monday.AddDate(0, 0, 6)), true
	}

	if from, to, ok := strings.Cut(trimmed, " to "); ok {
		first, _, okFrom := r.parseSpan(from)
		_, last, okTo := r.parseSpan(to)
		if okFrom && okTo && !last.Before(first) {
			return first, last, true
		}
		return time.Time{}, time.Time{}, false
	}

	if day, ok := r.parseDay(trimmed, today.Year()); ok {
		return day, endOfDay(day), true
	}
	return time.Time{}, time.Time{}, false
}

var ordinalSuffix = regexp.MustCompile(`(?i)\b(\d{1,2})(st|nd|rd|th)\b`)

// Layouts with an explicit year. Month names match case-insensitively.
var datedLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"02/01/2006",
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"January 2 2006",
	"January 2, 2006",
	"2 January 2006",
	"Jan 2 2006",
	"Jan 2, 2006",
	"2 Jan 2006",
}

// Layouts without a year; the current UTC year is assumed.
var yearlessLayouts = []string{
	"January 2",
	"2 January",
	"Jan 2",
	"2 Jan",
}

// parseDay parses a single calendar day from fixed layouts, then ordinal
// phrases, then free text.
func (r *DateRangeResolver) parseDay(phrase string, currentYear int) (time.Time, bool) {
	cleaned := ordinalSuffix.ReplaceAllString(phrase, "$1")
	for _, prefix := range []string{"on ", "the "} {
		if len(cleaned) > len(prefix) && strings.EqualFold(cleaned[:len(prefix)], prefix) {
			cleaned = cleaned[len(prefix):]
		}
	}

	for _, layout := range datedLayouts {
		if t, err := time.Parse(layout, cleaned); err == nil {
			return startOfDay(t.UTC()), true
		}
	}
	for _, layout := range yearlessLayouts {
		if t, err := time.Parse(layout, cleaned); err == nil {
			return dateOf(currentYear, t.Month(), t.Day())
		}
	}

	// Structured phrases that failed the layouts above name an impossible
	// day; the free-text parser would coerce them into a neighbouring one.
	if isOrdinalPhrase(phrase) {
		return parseOrdinalPhrase(phrase, currentYear)
	}
	if isStructuredDate(cleaned) {
		return time.Time{}, false
	}

	if r.useDateParser {
		return r.parseFreeText(phrase)
	}
	return time.Time{}, false
}

const monthPattern = `(?:jan|feb|mar|apr|may|jun|jul|aug|sep|sept|oct|nov|dec)[a-z]*\.?`

// structuredDate matches numeric dates and "Month N" / "N Month" forms.
var structuredDate = regexp.MustCompile(`(?i)^(?:` +
	`\d{1,4}[-/.]\d{1,2}[-/.]\d{1,4}(?:[t\s].*)?` +
	`|` + monthPattern + `\s+\d{1,2}(?:,?\s+\d{4})?` +
	`|\d{1,2}\s+` + monthPattern + `(?:,?\s+\d{4})?` +
	`)$`)

// isOrdinalPhrase reports whether phrase has the "fifth of August" shape
// with a known ordinal word.
func isOrdinalPhrase(phrase string) bool {
	m := ordinalPhrase.FindStringSubmatch(strings.ToLower(strings.TrimSpace(phrase)))
	if m == nil {
		return false
	}
	_, ok := ordinalDays[strings.ReplaceAll(m[1], "-", " ")]
	return ok
}

func isStructuredDate(phrase string) bool {
	return structuredDate.MatchString(strings.TrimSpace(phrase))
}

// parseFreeText hands a phrase to the natural-language date parser.
func (r *DateRangeResolver) parseFreeText(phrase string) (time.Time, bool) {
	cfg := &dps.Configuration{
		CurrentTime:          r.now().UTC(),
		DefaultTimezone:      time.UTC,
		PreferredDayOfMonth:  dps.Current,
		PreferredMonthOfYear: dps.CurrentMonth,
		PreferredDateSource:  dps.CurrentPeriod,
	}
	parsed, err := dps.Parse(cfg, phrase)
	if err != nil || parsed.Time.IsZero() {
		return time.Time{}, false
	}
	return startOfDay(parsed.Time.UTC()), true
}

var ordinalPhrase = regexp.MustCompile(
	`^(?:on\s+)?(?:the\s+)?([a-z]+(?:[\s-][a-z]+)?)\s+of\s+([a-z]+)(?:,?\s+(\d{4}))?$`)

// ordinalDays maps spelled-out ordinals to day numbers. Keys use single
// spaces; hyphenated input is normalised before lookup.
var ordinalDays = map[string]int{
	"first":          1,
	"second":         2,
	"third":          3,
	"fourth":         4,
	"fifth":          5,
	"sixth":          6,
	"seventh":        7,
	"eighth":         8,
	"ninth":          9,
	"tenth":          10,
	"eleventh":       11,
	"twelfth":        12,
	"thirteenth":     13,
	"fourteenth":     14,
	"fifteenth":      15,
	"sixteenth":      16,
	"seventeenth":    17,
	"eighteenth":     18,
	"nineteenth":     19,
	"twentieth":      20,
	"twenty first":   21,
	"twenty second":  22,
	"twenty third":   23,
	"twenty fourth":  24,
	"twenty fifth":   25,
	"twenty sixth":   26,
	"twenty seventh": 27,
	"twenty eighth":  28,
	"twenty ninth":   29,
	"thirtieth":      30,
	"thirty first":   31,
}

// parseOrdinalPhrase handles "the fifth of August" and "twenty-first of
// march 2024". Without a year the current UTC year is used.
func parseOrdinalPhrase(phrase string, currentYear int) (time.Time, bool) {
	m := ordinalPhrase.FindStringSubmatch(strings.ToLower(strings.TrimSpace(phrase)))
	if m == nil {
		return time.Time{}, false
	}

	dayWord := strings.ReplaceAll(m[1], "-", " ")
	day, ok := ordinalDays[dayWord]
	if !ok {
		return time.Time{}, false
	}

	month, ok := parseMonth(m[2])
	if !ok {
		return time.Time{}, false
	}

	year := currentYear
	if m[3] != "" {
		y, err := strconv.Atoi(m[3])
		if err != nil {
			return time.Time{}, false
		}
		year = y
	}
	return dateOf(year, month, day)
}

func parseMonth(name string) (time.Month, bool) {
	for _, layout := range []string{"January", "Jan"} {
		if t, err := time.Parse(layout, name); err == nil {
			return t.Month(), true
		}
	}
	return 0, false
}

// dateOf builds a UTC midnight and rejects overflowing days such as 31 June.
func dateOf(year int, month time.Month, day int) (time.Time, bool) {
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	if t.Month() != month || t.Day() != day {
		return time.Time{}, false
	}
	return t, true
}

var clockLayouts = []string{"15:04", "15:04:05", "3pm", "3:04pm", "3 pm", "3:04 pm"}

// parseClock parses a time of day into an offset from midnight.
func parseClock(raw string) (time.Duration, bool) {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return 0, false
	}
	for _, layout := range clockLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Duration(t.Hour())*time.Hour +
				time.Duration(t.Minute())*time.Minute +
				time.Duration(t.Second())*time.Second, true
		}
	}
	return 0, false
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// endOfDay is the last representable instant before the next midnight.
func endOfDay(t time.Time) time.Time {
	return startOfDay(t).AddDate(0, 0, 1).Add(-time.Nanosecond)
}

func startOfWeek(t time.Time) time.Time {
	offset := (int(t.Weekday()) + 6) % 7
	return startOfDay(t).AddDate(0, 0, -offset)
}

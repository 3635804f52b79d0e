package domain

import (
	"sort"
	"strings"
)

// SortDirection orders structural retrieval by job start time.
type SortDirection int

// Available sort directions. SortUnset keeps the store's natural order.
const (
	SortUnset SortDirection = iota
	SortAscending
	SortDescending
)

// ParseSortDirection accepts "asc"/"ascending"/"1" and "desc"/"descending"/"0".
// Anything else is SortUnset.
func ParseSortDirection(s string) SortDirection {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "asc", "ascending", "1":
		return SortAscending
	case "desc", "descending", "0":
		return SortDescending
	default:
		return SortUnset
	}
}

// String returns the string representation.
func (d SortDirection) String() string {
	switch d {
	case SortAscending:
		return "asc"
	case SortDescending:
		return "desc"
	default:
		return ""
	}
}

// RetrievalFilter holds the structural predicates of a retrieval.
// The same filter is applied to the transcript store and the vector index.
type RetrievalFilter struct {
	// Window bounds job start/end. Nil is unbounded.
	Window *TimeWindow

	// OperationTag must equal the job's operation. Empty matches all.
	OperationTag string

	// ChannelIDs restricts to the given channels when non-empty.
	ChannelIDs []int

	// Keywords keeps only segments containing one of the keywords,
	// compared case-insensitively.
	Keywords []string

	// Sort orders structural results by job start time.
	Sort SortDirection

	// AIJobRequestID restricts to a single request when set.
	AIJobRequestID string
}

// MatchesJob reports whether the job satisfies the window, tag, channel and
// request predicates. Keywords are applied separately by MatchSegments.
func (f RetrievalFilter) MatchesJob(job JobResult) bool {
	if !f.Window.Overlaps(job.Start, job.End) {
		return false
	}
	if f.OperationTag != "" && job.Operation != f.OperationTag {
		return false
	}
	if f.AIJobRequestID != "" && job.AIJobRequestID != f.AIJobRequestID {
		return false
	}
	if len(f.ChannelIDs) > 0 {
		found := false
		for _, id := range f.ChannelIDs {
			if id == job.ChannelID {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// MatchSegments returns the segments that contain any of the filter's
// keywords. Without keywords every segment matches.
func (f RetrievalFilter) MatchSegments(segments []TranscriptSegment) []TranscriptSegment {
	if len(f.Keywords) == 0 {
		return segments
	}
	needles := make([]string, 0, len(f.Keywords))
	for _, k := range f.Keywords {
		if k = strings.TrimSpace(k); k != "" {
			needles = append(needles, strings.ToLower(k))
		}
	}
	if len(needles) == 0 {
		return segments
	}

	matched := make([]TranscriptSegment, 0, len(segments))
	for _, seg := range segments {
		text := strings.ToLower(seg.Text)
		for _, n := range needles {
			if strings.Contains(text, n) {
				matched = append(matched, seg)
				break
			}
		}
	}
	return matched
}

// Apply returns the jobs a store would return for the filter: jobs failing
// MatchesJob are dropped, and with keywords set each job keeps only its
// matching segments and is dropped when none match. Input order is kept.
func (f RetrievalFilter) Apply(jobs []JobResult) []JobResult {
	out := make([]JobResult, 0, len(jobs))
	for _, job := range jobs {
		if !f.MatchesJob(job) {
			continue
		}
		if len(f.Keywords) > 0 {
			job.Segments = f.MatchSegments(job.Segments)
			if len(job.Segments) == 0 {
				continue
			}
		}
		out = append(out, job)
	}
	return out
}

// SortJobs orders jobs by start time. SortUnset leaves them untouched.
func SortJobs(jobs []JobResult, dir SortDirection) {
	switch dir {
	case SortAscending:
		sort.SliceStable(jobs, func(i, j int) bool { return jobs[i].Start.Before(jobs[j].Start) })
	case SortDescending:
		sort.SliceStable(jobs, func(i, j int) bool { return jobs[i].Start.After(jobs[j].Start) })
	}
}

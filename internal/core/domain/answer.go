package domain

// AnswerNotice marks answers that carry a user-facing notice instead of
// generated text.
type AnswerNotice string

// Available notices.
const (
	NoticeNone           AnswerNotice = ""
	NoticeNoRelevantData AnswerNotice = "no_relevant_data"
	NoticeTooManyTokens  AnswerNotice = "too_many_tokens"
)

// Answer is the single result handed back to callers of the query pipeline.
type Answer struct {
	// Text is the intent-labelled answer or the notice message.
	Text string `json:"text"`

	// Intent is the primary intent the answer was dispatched under.
	Intent Intent `json:"-"`

	// IntentName is Intent rendered for serialisation.
	IntentName string `json:"intent"`

	// Notice is set when no generation took place.
	Notice AnswerNotice `json:"notice,omitempty"`

	// TokenCount is the estimated prompt size, when measured.
	TokenCount int `json:"tokenCount,omitempty"`

	// Plan is the plan the answer was generated from.
	Plan *QueryPlan `json:"plan,omitempty"`
}

// QueryRequest is the input of the query pipeline.
type QueryRequest struct {
	// Query is the natural-language question.
	Query string

	// TimeCodes prefixes transcript lines with their start and end times.
	TimeCodes bool

	// Keywords restricts segments to those containing a keyword.
	Keywords []string

	// Sort orders structural retrieval by job start.
	Sort SortDirection

	// ChannelIDs overrides the channels found by extraction.
	ChannelIDs []int
}

// HasOverrides reports whether the request shapes retrieval or line
// formatting beyond what extraction yields. Such requests bypass the plan cache.
func (r QueryRequest) HasOverrides() bool {
	return r.TimeCodes || len(r.Keywords) > 0 || r.Sort != SortUnset || len(r.ChannelIDs) > 0
}

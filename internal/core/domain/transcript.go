package domain

import "time"

// TranscriptSegment is one timed line of a transcript.
// Segments are read and flattened, never mutated after retrieval.
type TranscriptSegment struct {
	// Text is the spoken content.
	Text string `json:"text" bson:"Text"`

	// StartInSeconds is the offset from the start of the recording.
	StartInSeconds float64 `json:"startInSeconds" bson:"StartInSeconds"`

	// EndInSeconds is the end offset from the start of the recording.
	EndInSeconds float64 `json:"endInSeconds" bson:"EndInSeconds"`

	// StartTime is the wall-clock instant the segment begins.
	StartTime time.Time `json:"startTime" bson:"StartTime"`

	// EndTime is the wall-clock instant the segment ends.
	EndTime time.Time `json:"endTime" bson:"EndTime"`

	// Keyword is set when the segment was produced by a keyword detection.
	Keyword string `json:"keyword,omitempty" bson:"Keyword,omitempty"`
}

// JobResult is the output of one transcription job over a recording.
// It is the document unit stored in the transcript store and referenced
// by vector index points.
type JobResult struct {
	// ID is the store identifier.
	ID string `json:"id" bson:"_id"`

	// AIJobRequestID groups results produced by the same request.
	AIJobRequestID string `json:"aiJobRequestId,omitempty" bson:"AiJobRequestId,omitempty"`

	// ChannelID identifies the broadcast channel.
	ChannelID int `json:"channelId" bson:"ChannelId"`

	// ChannelDisplayName is the human-readable channel name.
	ChannelDisplayName string `json:"channelDisplayName,omitempty" bson:"ChannelDisplayName,omitempty"`

	// Status is the job status reported by the transcription pipeline.
	Status string `json:"status,omitempty" bson:"Status,omitempty"`

	// Operation is the job operation tag ("Transcription", "Keyword", ...).
	Operation string `json:"operation" bson:"Operation"`

	// Segments is the transcript content in recording order.
	Segments []TranscriptSegment `json:"content" bson:"Content"`

	// Start is when the recording begins.
	Start time.Time `json:"start" bson:"Start"`

	// End is when the recording ends.
	End time.Time `json:"end" bson:"End"`

	// FilePath points at the source media.
	FilePath string `json:"filePath,omitempty" bson:"FilePath,omitempty"`

	// AudioLanguage is the detected spoken language.
	AudioLanguage string `json:"audioLanguage,omitempty" bson:"AudioLanguage,omitempty"`
}

// OperationTranscription is the operation tag of transcript jobs.
const OperationTranscription = "Transcription"

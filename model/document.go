package model

// Version values carried by a Document. VersionBase is set by the
// structural phase, VersionAnalyzed once at least one analysis record
// has been attached. The transition is monotonic.
const (
	VersionBase     = "0.0.1"
	VersionAnalyzed = "0.0.2"
)

// Source identifies the conversation medium a document was built from.
type Source string

const (
	SourceEmailThread       Source = "email_thread"
	SourceMeetingTranscript Source = "meeting_transcript"
	SourceChat              Source = "chat"
	SourceForwardedEmail    Source = "forwarded_email"
)

// ValidSources is the closed set accepted for the document-level source.
var ValidSources = map[Source]bool{
	SourceEmailThread:       true,
	SourceMeetingTranscript: true,
	SourceChat:              true,
	SourceForwardedEmail:    true,
}

// Role describes how a participant relates to the conversation,
// derived from the header the participant was first seen in.
type Role string

const (
	RoleFrom        Role = "from"
	RoleTo          Role = "to"
	RoleCC          Role = "cc"
	RoleParticipant Role = "participant"
)

// Document is a vCon: the portable record of one conversation. The
// JSON field layout is the wire contract; fields are only ever added
// between versions, never removed or renamed.
type Document struct {
	Version      string           `json:"version"`
	UUID         string           `json:"uuid"`
	Type         string           `json:"type"`
	CreatedAt    string           `json:"created_at"`
	UpdatedAt    string           `json:"updated_at"`
	Conversation Conversation     `json:"conversation"`
	Participants []Participant    `json:"participants"`
	Events       []MessageEvent   `json:"events"`
	Analysis     []AnalysisRecord `json:"analysis,omitempty"`
	Sources      []string         `json:"sources"`
}

// Conversation holds the high-level metadata carried from phase 1.
type Conversation struct {
	Subject      string `json:"subject"`
	ThreadTopic  string `json:"thread_topic"`
	MessageCount int    `json:"message_count"`
}

// Participant is one party to the conversation. Address is empty when
// the originating header token could not be parsed; the raw token is
// then preserved in Name. No two participants share a normalized
// address.
type Participant struct {
	ID      string `json:"id"`
	Name    string `json:"name,omitempty"`
	Address string `json:"address,omitempty"`
	Roles   []Role `json:"roles"`
}

// MessageEvent is one timed entry in the conversation. Timestamp is
// empty when the input carried no entry_date; it is never defaulted
// to the processing time.
type MessageEvent struct {
	ID        string        `json:"id"`
	Type      string        `json:"type"`
	Timestamp string        `json:"timestamp,omitempty"`
	From      string        `json:"from,omitempty"`
	To        []string      `json:"to,omitempty"`
	Subject   string        `json:"subject,omitempty"`
	Content   string        `json:"content"`
	Metadata  EventMetadata `json:"metadata,omitzero"`
}

// EventMetadata carries optional header fields through untouched.
type EventMetadata struct {
	MessageID       string   `json:"message_id,omitempty"`
	ReplyTo         string   `json:"reply_to,omitempty"`
	InReplyTo       string   `json:"in_reply_to,omitempty"`
	References      []string `json:"references,omitempty"`
	DurationMinutes int      `json:"duration_minutes,omitempty"`
	Forwarded       bool     `json:"forwarded,omitempty"`
}

// AnalysisRecord is one externally produced enrichment of the
// document. Source names the producer (vendor or model) and is always
// set for attribution.
type AnalysisRecord struct {
	Summary      string       `json:"summary,omitempty"`
	ActionItems  []ActionItem `json:"action_items,omitempty"`
	KeyTopics    []string     `json:"key_topics,omitempty"`
	KeyDecisions []string     `json:"key_decisions,omitempty"`
	Category     string       `json:"category,omitempty"`
	Source       string       `json:"source"`
}

// ActionItem is one follow-up extracted by analysis.
type ActionItem struct {
	Assignee    string `json:"assignee"`
	Description string `json:"description"`
	DueDate     string `json:"due_date,omitempty"`
}

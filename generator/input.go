package generator

import (
	"encoding/json"
	"strings"

	"github.com/gavinnn-m/vcon-parser/model"
)

// EmailInput is the typed phase-1 boundary form. JSON decoding is
// lenient about absent fields; GenerateBase validates the result
// before any document is touched.
type EmailInput struct {
	Subject string `json:"subject"`
	// Title is accepted as an alias for Subject.
	Title   string       `json:"title"`
	From    string       `json:"from"`
	To      string       `json:"to"`
	CC      string       `json:"cc"`
	Content string       `json:"content"`
	Source  model.Source `json:"source"`
	// EntryDate is an ISO-8601 timestamp. Empty leaves the event
	// timestamp unspecified.
	EntryDate       string `json:"entry_date"`
	DurationMinutes int    `json:"duration_minutes"`
	// Participants lists additional parties that appear in no
	// address header, e.g. meeting attendees.
	Participants    TokenList  `json:"participants"`
	IsForwarded     bool       `json:"is_forwarded"`
	UserNote        string     `json:"user_note"`
	OriginalContent string     `json:"original_content"`
	MessageID       string     `json:"message_id"`
	ReplyTo         string     `json:"reply_to"`
	InReplyTo       string     `json:"in_reply_to"`
	References      StringList `json:"references"`
}

// EffectiveSubject resolves the subject/title alias.
func (in EmailInput) EffectiveSubject() string {
	if in.Subject != "" {
		return in.Subject
	}
	return in.Title
}

// AnalysisInput is the typed phase-2 boundary form. Every field is
// individually optional, but the payload as a whole must carry at
// least one substantive field.
type AnalysisInput struct {
	Summary      string            `json:"summary"`
	ActionItems  []ActionItemInput `json:"action_items"`
	KeyTopics    []string          `json:"key_topics"`
	KeyDecisions []string          `json:"key_decisions"`
	Category     string            `json:"category"`
	// Source names the producer (vendor or model), e.g. "gpt-4".
	Source string `json:"source"`
}

func (in AnalysisInput) substantive() bool {
	return in.Summary != "" ||
		len(in.ActionItems) > 0 ||
		len(in.KeyTopics) > 0 ||
		len(in.KeyDecisions) > 0 ||
		in.Category != ""
}

// ActionItemInput is one follow-up in an analysis payload.
type ActionItemInput struct {
	Assignee    string `json:"assignee"`
	Description string `json:"description"`
	DueDate     string `json:"due_date"`
}

// StringList decodes a JSON value that is either a single
// whitespace-separated string or an array of strings. Email
// References headers arrive in both shapes.
type StringList []string

func (l *StringList) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*l = StringList(strings.Fields(single))
		return nil
	}

	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return err
	}
	*l = StringList(many)
	return nil
}

// TokenList decodes a JSON value that is either a single header-style
// string (kept whole, commas and all) or an array of such strings.
type TokenList []string

func (l *TokenList) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		if single == "" {
			*l = nil
			return nil
		}
		*l = TokenList{single}
		return nil
	}

	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return err
	}
	*l = TokenList(many)
	return nil
}

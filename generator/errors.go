package generator

import (
	"fmt"
	"strings"
)

// Reason discriminates the validation failure kinds.
type Reason string

const (
	ReasonMissingFields  Reason = "missing_fields"
	ReasonInvalidSource  Reason = "invalid_source"
	ReasonBadTimestamp   Reason = "bad_timestamp"
	ReasonBadActionItem  Reason = "bad_action_item"
	ReasonEmptyAnalysis  Reason = "empty_analysis"
	ReasonNoBaseDocument Reason = "no_base_document"
)

// ValidationError reports invalid phase input. Fields names every
// offending input field in one error; Index identifies the offending
// action item for ReasonBadActionItem and is -1 otherwise.
type ValidationError struct {
	Reason Reason
	Fields []string
	Index  int
	Detail string
}

func (e *ValidationError) Error() string {
	switch e.Reason {
	case ReasonMissingFields:
		return fmt.Sprintf("missing required fields: %s", strings.Join(e.Fields, ", "))
	case ReasonInvalidSource:
		return fmt.Sprintf("invalid source %q: must be one of email_thread, meeting_transcript, chat, forwarded_email", e.Detail)
	case ReasonBadTimestamp:
		return fmt.Sprintf("unparseable entry_date %q", e.Detail)
	case ReasonBadActionItem:
		return fmt.Sprintf("action_items[%d]: %s", e.Index, e.Detail)
	case ReasonEmptyAnalysis:
		return "analysis payload is empty: at least one of summary, action_items, key_topics, key_decisions, category is required"
	case ReasonNoBaseDocument:
		return "no base document: call GenerateBase first"
	}
	return string(e.Reason)
}

func missingFieldsError(fields ...string) *ValidationError {
	return &ValidationError{Reason: ReasonMissingFields, Fields: fields, Index: -1}
}

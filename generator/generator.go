// Package generator builds vCon documents from conversation input in
// two phases: GenerateBase normalizes raw input into a version 0.0.1
// document, AddAnalysis attaches externally produced analysis and
// advances the document to 0.0.2. Validation runs eagerly at the
// start of each phase; a failing call leaves the held document, if
// any, untouched.
package generator

import (
	"encoding/json"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"

	"github.com/gavinnn-m/vcon-parser/address"
	"github.com/gavinnn-m/vcon-parser/model"
)

// defaultAnalysisSource attributes analysis records whose payload
// names no producer.
const defaultAnalysisSource = "llm"

// recipientCap bounds the per-event recipient id list.
const recipientCap = 10

var fwdPrefix = regexp.MustCompile(`(?i)^(fwd?|fw):\s*`)

// entryDateLayouts are the accepted ISO-8601 shapes for entry_date.
var entryDateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Generator holds at most one in-progress document. Instances are not
// safe for concurrent use; operate one instance per in-flight
// conversation.
type Generator struct {
	doc *model.Document
	now func() time.Time
}

// New returns a Generator with no held document.
func New() *Generator {
	return &Generator{now: time.Now}
}

// Document returns the held document, nil before GenerateBase.
func (g *Generator) Document() *model.Document {
	return g.doc
}

// GenerateBase validates and normalizes in into a fresh version 0.0.1
// document, replacing any document held from a previous call.
func (g *Generator) GenerateBase(in EmailInput) (*model.Document, error) {
	source, err := resolveSource(in.Source)
	if err != nil {
		return nil, err
	}
	if err := validateRequired(in); err != nil {
		return nil, err
	}

	timestamp, err := parseEntryDate(in.EntryDate)
	if err != nil {
		return nil, err
	}

	now := g.now().UTC().Format(time.RFC3339)
	doc := &model.Document{
		Version:   model.VersionBase,
		UUID:      uuid.NewString(),
		Type:      string(source),
		CreatedAt: now,
		UpdatedAt: now,
		Conversation: model.Conversation{
			Subject:      in.EffectiveSubject(),
			ThreadTopic:  in.EffectiveSubject(),
			MessageCount: 1,
		},
		Sources: []string{string(source)},
	}
	if in.IsForwarded {
		doc.Conversation.MessageCount = 2
	}

	doc.Participants = buildParticipants(in)
	doc.Events = buildEvents(in, source, timestamp, doc.Participants)

	g.doc = doc
	return doc, nil
}

// AddAnalysis validates in, appends one analysis record to the held
// document and advances its version to 0.0.2. Repeated calls append
// further records; the version stays at 0.0.2.
func (g *Generator) AddAnalysis(in AnalysisInput) (*model.Document, error) {
	if g.doc == nil {
		return nil, &ValidationError{Reason: ReasonNoBaseDocument, Index: -1}
	}
	if !in.substantive() {
		return nil, &ValidationError{Reason: ReasonEmptyAnalysis, Index: -1}
	}
	for i, item := range in.ActionItems {
		if item.Assignee == "" || item.Description == "" {
			return nil, &ValidationError{
				Reason: ReasonBadActionItem,
				Index:  i,
				Detail: "assignee and description are required",
			}
		}
	}

	record := model.AnalysisRecord{
		Summary:      in.Summary,
		KeyTopics:    dedupeTopics(in.KeyTopics),
		KeyDecisions: in.KeyDecisions,
		Category:     in.Category,
		Source:       in.Source,
	}
	if record.Source == "" {
		record.Source = defaultAnalysisSource
	}
	for _, item := range in.ActionItems {
		record.ActionItems = append(record.ActionItems, model.ActionItem{
			Assignee:    item.Assignee,
			Description: item.Description,
			DueDate:     item.DueDate,
		})
	}

	g.doc.Analysis = append(g.doc.Analysis, record)
	if in.Source != "" {
		g.doc.Sources = append(g.doc.Sources, in.Source)
	}
	g.doc.Version = model.VersionAnalyzed
	g.doc.UpdatedAt = g.now().UTC().Format(time.RFC3339)
	return g.doc, nil
}

// ToJSON serializes the held document. It never mutates the document
// and yields identical output for identical document state.
func (g *Generator) ToJSON(indent int) ([]byte, error) {
	if g.doc == nil {
		return nil, &ValidationError{Reason: ReasonNoBaseDocument, Index: -1}
	}
	if indent <= 0 {
		return json.Marshal(g.doc)
	}
	data, err := json.MarshalIndent(g.doc, "", fmt.Sprintf("%*s", indent, ""))
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	return data, nil
}

func resolveSource(source model.Source) (model.Source, error) {
	if source == "" {
		return model.SourceEmailThread, nil
	}
	if !model.ValidSources[source] {
		return "", &ValidationError{
			Reason: ReasonInvalidSource,
			Fields: []string{"source"},
			Index:  -1,
			Detail: string(source),
		}
	}
	return source, nil
}

func validateRequired(in EmailInput) error {
	var missing []string
	if in.EffectiveSubject() == "" {
		missing = append(missing, "subject")
	}
	if in.From == "" {
		missing = append(missing, "from")
	}
	if in.IsForwarded {
		if in.UserNote == "" {
			missing = append(missing, "user_note")
		}
		if in.OriginalContent == "" {
			missing = append(missing, "original_content")
		}
	} else if in.Content == "" {
		missing = append(missing, "content")
	}
	if len(missing) > 0 {
		return missingFieldsError(missing...)
	}
	return nil
}

func parseEntryDate(value string) (string, error) {
	if value == "" {
		return "", nil
	}
	for _, layout := range entryDateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.Format(time.RFC3339), nil
		}
	}
	return "", &ValidationError{
		Reason: ReasonBadTimestamp,
		Fields: []string{"entry_date"},
		Index:  -1,
		Detail: value,
	}
}

// buildParticipants walks from, to, cc and the extra participants
// list in that order, merging duplicates by normalized address (or by
// raw token when no address was parsed) and unioning roles.
func buildParticipants(in EmailInput) []model.Participant {
	var participants []model.Participant
	index := make(map[string]int)

	add := func(parsed address.Parsed, role model.Role) {
		key := parsed.Normalized()
		if key == "" {
			return
		}
		if i, ok := index[key]; ok {
			if !hasRole(participants[i].Roles, role) {
				participants[i].Roles = append(participants[i].Roles, role)
			}
			if participants[i].Name == "" && parsed.Valid() && parsed.Name != "" {
				participants[i].Name = parsed.Name
			}
			return
		}
		index[key] = len(participants)
		participants = append(participants, model.Participant{
			ID:      fmt.Sprintf("p%d", len(participants)+1),
			Name:    parsed.Name,
			Address: parsed.Address,
			Roles:   []model.Role{role},
		})
	}

	for _, parsed := range address.ParseList(in.From) {
		add(parsed, model.RoleFrom)
	}
	for _, parsed := range address.ParseList(in.To) {
		add(parsed, model.RoleTo)
	}
	for _, parsed := range address.ParseList(in.CC) {
		add(parsed, model.RoleCC)
	}
	for _, field := range in.Participants {
		for _, parsed := range address.ParseList(field) {
			add(parsed, model.RoleParticipant)
		}
	}

	return participants
}

func buildEvents(in EmailInput, source model.Source, timestamp string, participants []model.Participant) []model.MessageEvent {
	from := firstWithRole(participants, model.RoleFrom)
	recipients := recipientIDs(participants)
	metadata := model.EventMetadata{
		MessageID:       in.MessageID,
		ReplyTo:         in.ReplyTo,
		InReplyTo:       in.InReplyTo,
		References:      in.References,
		DurationMinutes: in.DurationMinutes,
	}

	if in.IsForwarded {
		original := metadata
		original.Forwarded = true
		return []model.MessageEvent{
			{
				ID:        "m1",
				Type:      "email",
				Timestamp: timestamp,
				From:      from,
				To:        recipients,
				Subject:   fwdPrefix.ReplaceAllString(in.EffectiveSubject(), ""),
				Content:   in.OriginalContent,
				Metadata:  original,
			},
			{
				ID:        "m2",
				Type:      "forwarded_note",
				Timestamp: timestamp,
				From:      from,
				Subject:   in.EffectiveSubject(),
				Content:   in.UserNote,
			},
		}
	}

	return []model.MessageEvent{
		{
			ID:        "m1",
			Type:      eventType(source),
			Timestamp: timestamp,
			From:      from,
			To:        recipients,
			Subject:   in.EffectiveSubject(),
			Content:   in.Content,
			Metadata:  metadata,
		},
	}
}

func eventType(source model.Source) string {
	switch source {
	case model.SourceMeetingTranscript:
		return "meeting_transcript"
	case model.SourceChat:
		return "chat"
	}
	return "email"
}

func firstWithRole(participants []model.Participant, role model.Role) string {
	for _, p := range participants {
		if hasRole(p.Roles, role) {
			return p.ID
		}
	}
	return ""
}

func recipientIDs(participants []model.Participant) []string {
	var ids []string
	for _, p := range participants {
		if hasRole(p.Roles, model.RoleTo) || hasRole(p.Roles, model.RoleCC) {
			ids = append(ids, p.ID)
			if len(ids) == recipientCap {
				break
			}
		}
	}
	return ids
}

func hasRole(roles []model.Role, role model.Role) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}

func dedupeTopics(topics []string) []string {
	if len(topics) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(topics))
	var out []string
	for _, topic := range topics {
		if topic == "" || seen[topic] {
			continue
		}
		seen[topic] = true
		out = append(out, topic)
	}
	return out
}

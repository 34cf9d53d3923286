package generator_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gavinnn-m/vcon-parser/generator"
	"github.com/gavinnn-m/vcon-parser/model"
)

func validInput() generator.EmailInput {
	return generator.EmailInput{
		Subject: "Q3 Planning",
		From:    "Alice Boss <alice@example.com>",
		To:      "Bob <bob@x.com>, Carol <carol@x.com>",
		CC:      "dave@x.com",
		Content: "Let's plan Q3.",
	}
}

func TestGenerateBase(t *testing.T) {
	gen := generator.New()
	doc, err := gen.GenerateBase(validInput())
	require.NoError(t, err)

	assert.Equal(t, model.VersionBase, doc.Version)
	assert.NotEmpty(t, doc.UUID)
	assert.Equal(t, "email_thread", doc.Type)
	assert.Equal(t, []string{"email_thread"}, doc.Sources)
	assert.Nil(t, doc.Analysis, "no analysis before phase 2")

	require.Len(t, doc.Events, 1)
	assert.Equal(t, "email", doc.Events[0].Type)
	assert.Equal(t, "Let's plan Q3.", doc.Events[0].Content)
	assert.Empty(t, doc.Events[0].Timestamp, "no entry_date means no timestamp")

	require.Len(t, doc.Participants, 4)
	assert.Equal(t, "alice@example.com", doc.Participants[0].Address)
	assert.Equal(t, []model.Role{model.RoleFrom}, doc.Participants[0].Roles)
	assert.Equal(t, "p1", doc.Events[0].From)
	assert.Equal(t, []string{"p2", "p3", "p4"}, doc.Events[0].To)
}

func TestGenerateBaseMissingFields(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*generator.EmailInput)
		missing []string
	}{
		{
			name:    "no subject",
			mutate:  func(in *generator.EmailInput) { in.Subject = "" },
			missing: []string{"subject"},
		},
		{
			name:    "no from",
			mutate:  func(in *generator.EmailInput) { in.From = "" },
			missing: []string{"from"},
		},
		{
			name:    "no content",
			mutate:  func(in *generator.EmailInput) { in.Content = "" },
			missing: []string{"content"},
		},
		{
			name: "everything missing at once",
			mutate: func(in *generator.EmailInput) {
				in.Subject = ""
				in.From = ""
				in.Content = ""
			},
			missing: []string{"subject", "from", "content"},
		},
		{
			name: "forwarded without note and original",
			mutate: func(in *generator.EmailInput) {
				in.IsForwarded = true
				in.Content = ""
			},
			missing: []string{"user_note", "original_content"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := validInput()
			tc.mutate(&in)

			_, err := generator.New().GenerateBase(in)
			var verr *generator.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, generator.ReasonMissingFields, verr.Reason)
			assert.Equal(t, tc.missing, verr.Fields)
		})
	}
}

func TestGenerateBaseTitleAlias(t *testing.T) {
	in := validInput()
	in.Subject = ""
	in.Title = "Planning"

	doc, err := generator.New().GenerateBase(in)
	require.NoError(t, err)
	assert.Equal(t, "Planning", doc.Conversation.Subject)
}

func TestGenerateBaseInvalidSource(t *testing.T) {
	in := validInput()
	in.Source = "carrier_pigeon"

	_, err := generator.New().GenerateBase(in)
	var verr *generator.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, generator.ReasonInvalidSource, verr.Reason)
	assert.Equal(t, []string{"source"}, verr.Fields)
}

func TestGenerateBaseSourceTypes(t *testing.T) {
	for source, eventType := range map[model.Source]string{
		model.SourceMeetingTranscript: "meeting_transcript",
		model.SourceChat:              "chat",
		model.SourceEmailThread:       "email",
	} {
		in := validInput()
		in.Source = source
		doc, err := generator.New().GenerateBase(in)
		require.NoError(t, err)
		assert.Equal(t, string(source), doc.Type)
		assert.Equal(t, eventType, doc.Events[0].Type)
	}
}

func TestGenerateBaseEntryDate(t *testing.T) {
	in := validInput()
	in.EntryDate = "2026-03-14T09:30:00Z"
	doc, err := generator.New().GenerateBase(in)
	require.NoError(t, err)
	assert.Equal(t, "2026-03-14T09:30:00Z", doc.Events[0].Timestamp)

	in.EntryDate = "three days ago"
	_, err = generator.New().GenerateBase(in)
	var verr *generator.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, generator.ReasonBadTimestamp, verr.Reason)
}

func TestGenerateBaseMalformedAddressDegrades(t *testing.T) {
	in := validInput()
	in.To = "not-an-email"

	doc, err := generator.New().GenerateBase(in)
	require.NoError(t, err, "malformed address tokens must not fail the conversion")

	require.Len(t, doc.Participants, 3)
	p := doc.Participants[1]
	assert.Empty(t, p.Address)
	assert.Equal(t, "not-an-email", p.Name)
	assert.Equal(t, []model.Role{model.RoleTo}, p.Roles)
}

func TestGenerateBaseParticipantMerge(t *testing.T) {
	in := validInput()
	in.To = "Bob <bob@x.com>"
	in.CC = "BOB@X.COM, carol@x.com"

	doc, err := generator.New().GenerateBase(in)
	require.NoError(t, err)

	require.Len(t, doc.Participants, 3, "case-insensitive address merge")
	bob := doc.Participants[1]
	assert.Equal(t, "bob@x.com", bob.Address)
	assert.Equal(t, []model.Role{model.RoleTo, model.RoleCC}, bob.Roles)
}

func TestGenerateBaseExtraParticipants(t *testing.T) {
	in := validInput()
	in.Source = model.SourceMeetingTranscript
	in.Participants = generator.TokenList{"Erin <erin@x.com>, frank@x.com"}

	doc, err := generator.New().GenerateBase(in)
	require.NoError(t, err)

	require.Len(t, doc.Participants, 6)
	assert.Equal(t, []model.Role{model.RoleParticipant}, doc.Participants[4].Roles)
	assert.Equal(t, "frank@x.com", doc.Participants[5].Address)
}

func TestGenerateBaseForwarded(t *testing.T) {
	in := generator.EmailInput{
		Subject:         "Fwd: Budget approval",
		From:            "alice@example.com",
		Source:          model.SourceForwardedEmail,
		IsForwarded:     true,
		UserNote:        "FYI, see below.",
		OriginalContent: "The budget is approved.",
	}

	doc, err := generator.New().GenerateBase(in)
	require.NoError(t, err)

	require.Len(t, doc.Events, 2, "forwarded mail yields two events")
	original, note := doc.Events[0], doc.Events[1]

	assert.Equal(t, "email", original.Type)
	assert.Equal(t, "The budget is approved.", original.Content)
	assert.Equal(t, "Budget approval", original.Subject, "Fwd: prefix stripped")
	assert.True(t, original.Metadata.Forwarded)

	assert.Equal(t, "forwarded_note", note.Type)
	assert.Equal(t, "FYI, see below.", note.Content)
	assert.Equal(t, 2, doc.Conversation.MessageCount)
}

func TestAddAnalysisBeforeBase(t *testing.T) {
	_, err := generator.New().AddAnalysis(generator.AnalysisInput{Summary: "s"})
	var verr *generator.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, generator.ReasonNoBaseDocument, verr.Reason)
}

func TestAddAnalysis(t *testing.T) {
	gen := generator.New()
	_, err := gen.GenerateBase(validInput())
	require.NoError(t, err)

	doc, err := gen.AddAnalysis(generator.AnalysisInput{
		Summary: "Planning discussion.",
		Source:  "gpt-4",
	})
	require.NoError(t, err)

	assert.Equal(t, model.VersionAnalyzed, doc.Version)
	require.Len(t, doc.Analysis, 1)
	assert.Equal(t, "gpt-4", doc.Analysis[0].Source)
	assert.Equal(t, []string{"email_thread", "gpt-4"}, doc.Sources)

	// A second payload appends a record and keeps the version.
	doc, err = gen.AddAnalysis(generator.AnalysisInput{
		KeyTopics:    []string{"budget", "budget", "hiring"},
		KeyDecisions: []string{"approve budget"},
		Source:       "claude-3",
	})
	require.NoError(t, err)
	assert.Equal(t, model.VersionAnalyzed, doc.Version)
	require.Len(t, doc.Analysis, 2)
	assert.Equal(t, []string{"budget", "hiring"}, doc.Analysis[1].KeyTopics, "topics deduped, order preserved")
	assert.Equal(t, []string{"email_thread", "gpt-4", "claude-3"}, doc.Sources)
}

func TestAddAnalysisDefaultSource(t *testing.T) {
	gen := generator.New()
	_, err := gen.GenerateBase(validInput())
	require.NoError(t, err)

	doc, err := gen.AddAnalysis(generator.AnalysisInput{Summary: "s"})
	require.NoError(t, err)
	assert.Equal(t, "llm", doc.Analysis[0].Source)
	assert.Equal(t, []string{"email_thread"}, doc.Sources, "unnamed producers are not appended to sources")
}

func TestAddAnalysisEmptyPayload(t *testing.T) {
	gen := generator.New()
	_, err := gen.GenerateBase(validInput())
	require.NoError(t, err)

	_, err = gen.AddAnalysis(generator.AnalysisInput{Source: "gpt-4"})
	var verr *generator.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, generator.ReasonEmptyAnalysis, verr.Reason)

	doc := gen.Document()
	assert.Equal(t, model.VersionBase, doc.Version, "failed call leaves the document unchanged")
	assert.Empty(t, doc.Analysis)
}

func TestAddAnalysisBadActionItem(t *testing.T) {
	gen := generator.New()
	_, err := gen.GenerateBase(validInput())
	require.NoError(t, err)

	_, err = gen.AddAnalysis(generator.AnalysisInput{
		ActionItems: []generator.ActionItemInput{
			{Assignee: "bob", Description: "draft the plan"},
			{Assignee: "carol"},
		},
	})
	var verr *generator.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, generator.ReasonBadActionItem, verr.Reason)
	assert.Equal(t, 1, verr.Index)
	assert.Empty(t, gen.Document().Analysis, "no partial mutation")
}

func TestGenerateBaseReplacesDocument(t *testing.T) {
	gen := generator.New()
	first, err := gen.GenerateBase(validInput())
	require.NoError(t, err)

	in := validInput()
	in.Subject = "Second thread"
	second, err := gen.GenerateBase(in)
	require.NoError(t, err)

	assert.NotEqual(t, first.UUID, second.UUID)
	assert.Same(t, second, gen.Document())
}

func TestToJSONRoundTrip(t *testing.T) {
	gen := generator.New()
	in := validInput()
	in.EntryDate = "2026-03-14T09:30:00Z"
	in.MessageID = "<abc@x.com>"
	_, err := gen.GenerateBase(in)
	require.NoError(t, err)
	_, err = gen.AddAnalysis(generator.AnalysisInput{
		Summary: "Planning discussion.",
		ActionItems: []generator.ActionItemInput{
			{Assignee: "bob", Description: "draft the plan", DueDate: "2026-03-21"},
		},
		Source: "gpt-4",
	})
	require.NoError(t, err)

	data, err := gen.ToJSON(2)
	require.NoError(t, err)

	var decoded model.Document
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, *gen.Document(), decoded)

	again, err := gen.ToJSON(2)
	require.NoError(t, err)
	assert.Equal(t, data, again, "serialization is idempotent without intervening mutation")
}

func TestToJSONBeforeBase(t *testing.T) {
	_, err := generator.New().ToJSON(2)
	var verr *generator.ValidationError
	assert.True(t, errors.As(err, &verr))
}

func TestFilename(t *testing.T) {
	in := validInput()
	in.Subject = "Fwd: Q3 Planning & Budget!"
	in.EntryDate = "2026-03-14T09:30:00Z"
	assert.Equal(t, "2026-03-14-fwd-q3-planning-budget.json", generator.Filename(in))
}

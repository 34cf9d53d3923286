package generator

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

var slugStrip = regexp.MustCompile(`[^a-z0-9 ]`)

const slugMax = 50

// Filename derives a standardized output filename for a document
// built from in: "YYYY-MM-DD-<subject-slug>.json". The date comes
// from entry_date when it parses, today otherwise.
func Filename(in EmailInput) string {
	date := time.Now()
	if ts, err := parseEntryDate(in.EntryDate); err == nil && ts != "" {
		if parsed, err := time.Parse(time.RFC3339, ts); err == nil {
			date = parsed
		}
	}

	subject := in.EffectiveSubject()
	if subject == "" {
		subject = "conversation"
	}
	slug := slugStrip.ReplaceAllString(strings.ToLower(subject), "")
	slug = strings.Join(strings.Fields(slug), "-")
	if len(slug) > slugMax {
		slug = slug[:slugMax]
	}
	if slug == "" {
		slug = "conversation"
	}

	return fmt.Sprintf("%s-%s.json", date.Format("2006-01-02"), slug)
}

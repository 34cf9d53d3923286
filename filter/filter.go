// Package filter decides which mbox messages take part in a batch
// conversion. Patterns match against the decoded input fields
// (subject, from, to, cc) or the message body.
package filter

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/gavinnn-m/vcon-parser/generator"
)

// Options captures the filtering configuration. Include and exclude
// patterns are mutually exclusive.
type Options struct {
	IncludeHeader []string
	IncludeBody   []string
	ExcludeHeader []string
	ExcludeBody   []string
}

// Filter holds compiled patterns for selecting messages.
type Filter struct {
	includeMode   bool
	excludeMode   bool
	includeHeader []*regexp.Regexp
	includeBody   []*regexp.Regexp
	excludeHeader []*regexp.Regexp
	excludeBody   []*regexp.Regexp
}

// New creates a Filter from the provided options.
func New(opts Options) (*Filter, error) {
	includeHeader, err := compilePatterns(opts.IncludeHeader)
	if err != nil {
		return nil, fmt.Errorf("compile include-header pattern: %w", err)
	}
	includeBody, err := compilePatterns(opts.IncludeBody)
	if err != nil {
		return nil, fmt.Errorf("compile include-body pattern: %w", err)
	}
	excludeHeader, err := compilePatterns(opts.ExcludeHeader)
	if err != nil {
		return nil, fmt.Errorf("compile exclude-header pattern: %w", err)
	}
	excludeBody, err := compilePatterns(opts.ExcludeBody)
	if err != nil {
		return nil, fmt.Errorf("compile exclude-body pattern: %w", err)
	}

	includeActive := len(includeHeader) > 0 || len(includeBody) > 0
	excludeActive := len(excludeHeader) > 0 || len(excludeBody) > 0
	if includeActive && excludeActive {
		return nil, fmt.Errorf("include and exclude filters are mutually exclusive")
	}

	return &Filter{
		includeMode:   includeActive,
		excludeMode:   excludeActive,
		includeHeader: includeHeader,
		includeBody:   includeBody,
		excludeHeader: excludeHeader,
		excludeBody:   excludeBody,
	}, nil
}

// Allows reports whether the decoded message passes the filter.
func (f *Filter) Allows(in generator.EmailInput) bool {
	if !f.includeMode && !f.excludeMode {
		return true
	}

	header := headerText(in)
	body := in.Content
	if in.IsForwarded {
		body = in.OriginalContent + "\n" + in.UserNote
	}

	if f.includeMode {
		return matchAny(f.includeHeader, header) || matchAny(f.includeBody, body)
	}

	return !matchAny(f.excludeHeader, header) && !matchAny(f.excludeBody, body)
}

// headerText renders the address and subject fields in the familiar
// "Name: value" shape so existing header regexes keep working.
func headerText(in generator.EmailInput) string {
	var sb strings.Builder
	write := func(name, value string) {
		if value == "" {
			return
		}
		sb.WriteString(name)
		sb.WriteString(": ")
		sb.WriteString(value)
		sb.WriteString("\n")
	}
	write("Subject", in.EffectiveSubject())
	write("From", in.From)
	write("To", in.To)
	write("Cc", in.CC)
	write("Message-Id", in.MessageID)
	return sb.String()
}

func compilePatterns(patterns []string) ([]*regexp.Regexp, error) {
	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for _, pattern := range patterns {
		pattern = strings.TrimSpace(pattern)
		if pattern == "" {
			continue
		}
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("compile %q: %w", pattern, err)
		}
		compiled = append(compiled, re)
	}
	return compiled, nil
}

func matchAny(patterns []*regexp.Regexp, text string) bool {
	for _, re := range patterns {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}

// Package address parses email address header values into name and
// address parts. Parsing is best effort: a token that does not look
// like an address degrades to a name-only result instead of failing,
// so a single malformed header never aborts a conversion.
package address

import (
	"net/mail"
	"strings"
)

// Parsed is the result of parsing one address token.
type Parsed struct {
	// Name is the display name when one was present, or the raw
	// token when the token could not be parsed as an address.
	Name string
	// Address is the bare email address, empty for malformed tokens.
	Address string
	// Raw is the original token, trimmed.
	Raw string
}

// Valid reports whether an address was extracted from the token.
func (p Parsed) Valid() bool {
	return p.Address != ""
}

// Normalized returns the de-duplication key for the token: the
// lowercased address when one was parsed, otherwise the raw token.
func (p Parsed) Normalized() string {
	if p.Address != "" {
		return strings.ToLower(p.Address)
	}
	return p.Raw
}

// ParseList splits a header value on commas and semicolons outside
// double quotes and parses each token. Empty tokens are dropped.
func ParseList(field string) []Parsed {
	var results []Parsed
	for _, token := range splitTokens(field) {
		results = append(results, Parse(token))
	}
	return results
}

// Parse parses a single "Name <addr>" or bare "addr" token. Tokens
// that fail to parse, or whose address has no local part or no dot in
// the domain, come back with Address empty and Name set to the raw
// token.
func Parse(token string) Parsed {
	raw := strings.TrimSpace(token)
	parsed := Parsed{Name: raw, Raw: raw}

	addr, err := mail.ParseAddress(raw)
	if err != nil {
		return parsed
	}
	if !plausible(addr.Address) {
		return parsed
	}

	parsed.Name = strings.TrimSpace(addr.Name)
	parsed.Address = addr.Address
	return parsed
}

// plausible applies the minimal shape check beyond what net/mail
// enforces: a non-empty local part and a dot somewhere in the domain.
func plausible(addr string) bool {
	local, domain, ok := strings.Cut(addr, "@")
	if !ok {
		return false
	}
	return local != "" && strings.Contains(domain, ".")
}

func splitTokens(field string) []string {
	var tokens []string
	var current strings.Builder
	inQuote := false

	for _, r := range field {
		switch {
		case r == '"':
			inQuote = !inQuote
			current.WriteRune(r)
		case (r == ',' || r == ';') && !inQuote:
			if token := strings.TrimSpace(current.String()); token != "" {
				tokens = append(tokens, token)
			}
			current.Reset()
		default:
			current.WriteRune(r)
		}
	}
	if token := strings.TrimSpace(current.String()); token != "" {
		tokens = append(tokens, token)
	}
	return tokens
}

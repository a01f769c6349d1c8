package processing

import (
	"crypto/sha1"
	"encoding/hex"
	"html"
	"regexp"
	"strings"
)

var whitespace = regexp.MustCompile(`\s+`)

// NormalizeText decodes HTML entities and squeezes whitespace.
func NormalizeText(input string) string {
	if input == "" {
		return ""
	}
	decoded := html.UnescapeString(input)
	decoded = whitespace.ReplaceAllString(decoded, " ")
	return strings.TrimSpace(decoded)
}

// BuildDocumentID hashes the fields that identify a headline for a given market.
// Provider timestamps are unreliable, so they are left out.
func BuildDocumentID(title, snippet, location string) string {
	s := sha1.Sum([]byte(strings.ToLower(title) + "|" + strings.ToLower(snippet) + "|" + location))
	return hex.EncodeToString(s[:])
}

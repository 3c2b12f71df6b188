package chat

import (
	"regexp"
	"strings"
)

// citationMarker matches internal retrieval-provenance tags of the form
// "[DOCUMENT 12]" in any case, together with the whitespace around them.
// These tags must never reach the user; citation text the backend wants
// shown is already embedded in the answer in human-readable form.
var citationMarker = regexp.MustCompile(`(?i)\s*\[document\s*\d+\]\s*`)

// StripCitationMarkers removes every citation marker from an answer,
// collapsing the whitespace that surrounded each marker to a single space.
func StripCitationMarkers(answer string) string {
	if !strings.Contains(answer, "[") {
		return answer
	}
	cleaned := citationMarker.ReplaceAllString(answer, " ")
	return strings.TrimSpace(cleaned)
}

// Tokenize splits a cleaned answer into the units emitted as stream frames.
// Each token is a run of non-space characters together with the whitespace
// that follows it, so concatenating all tokens reproduces the input exactly.
func Tokenize(answer string) []string {
	if answer == "" {
		return nil
	}
	tokens := make([]string, 0, len(answer)/5+1)
	start := 0
	inSpace := false
	for i, r := range answer {
		isSpace := r == ' ' || r == '\n' || r == '\t' || r == '\r'
		if inSpace && !isSpace {
			tokens = append(tokens, answer[start:i])
			start = i
		}
		inSpace = isSpace
	}
	tokens = append(tokens, answer[start:])
	return tokens
}

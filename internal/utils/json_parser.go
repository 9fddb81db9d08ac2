package utils

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// ParseAIJSON parses JSON out of raw model output into target. Generation
// models ignore formatting instructions often enough that the caller cannot
// assume clean JSON: the payload may arrive fenced in markdown, buried in
// prose, or with the trailing commas and unquoted keys smaller models
// produce. Candidates are tried strictest-first; the first that unmarshals
// wins.
func ParseAIJSON(input string, target interface{}) error {
	if strings.TrimSpace(input) == "" {
		return fmt.Errorf("empty input")
	}

	for _, candidate := range extractionCandidates(input) {
		if candidate == "" {
			continue
		}
		if err := json.Unmarshal([]byte(candidate), target); err == nil {
			return nil
		}
	}

	preview := input
	if len(preview) > 100 {
		preview = preview[:100] + "..."
	}
	return fmt.Errorf("no parseable JSON in model output: %s", preview)
}

// extractionCandidates returns the payloads to attempt, in order: the raw
// input, the contents of a markdown fence, the first balanced JSON value
// embedded in surrounding text, and finally a repaired copy of the input.
func extractionCandidates(input string) []string {
	return []string{
		input,
		unfence(input),
		firstBalancedJSON(input),
		repairJSON(input),
	}
}

var (
	jsonFenceRe = regexp.MustCompile("(?s)```json\\s*(.+?)\\s*```")
	bareFenceRe = regexp.MustCompile("(?s)```\\s*(.+?)\\s*```")
)

// unfence pulls the body out of a ```json or bare ``` code block.
func unfence(input string) string {
	if m := jsonFenceRe.FindStringSubmatch(input); len(m) > 1 {
		return strings.TrimSpace(m[1])
	}
	if m := bareFenceRe.FindStringSubmatch(input); len(m) > 1 {
		body := strings.TrimSpace(m[1])
		if strings.HasPrefix(body, "{") || strings.HasPrefix(body, "[") {
			return body
		}
	}
	return ""
}

// firstBalancedJSON finds the first brace-balanced object or array in the
// input, tolerating braces inside string literals.
func firstBalancedJSON(input string) string {
	if i := strings.IndexByte(input, '{'); i >= 0 {
		if v := balancedFrom(input[i:], '{', '}'); v != "" {
			return v
		}
	}
	if i := strings.IndexByte(input, '['); i >= 0 {
		if v := balancedFrom(input[i:], '[', ']'); v != "" {
			return v
		}
	}
	return ""
}

func balancedFrom(input string, open, close rune) string {
	depth := 0
	inString := false
	escaped := false

	for i, ch := range input {
		switch {
		case escaped:
			escaped = false
		case ch == '\\':
			escaped = true
		case ch == '"':
			inString = !inString
		case inString:
		case ch == open:
			depth++
		case ch == close:
			depth--
			if depth == 0 {
				return input[:i+1]
			}
		}
	}
	return ""
}

var (
	trailingCommaRe = regexp.MustCompile(`,\s*([}\]])`)
	unquotedKeyRe   = regexp.MustCompile(`([{,]\s*)(\w+)(\s*:)`)
	controlCharRe   = regexp.MustCompile(`[\x00-\x08\x0B\x0C\x0E-\x1F]`)
)

// repairJSON fixes the malformations small models emit most: a UTF-8 BOM,
// trailing commas, unquoted object keys, and stray control characters.
func repairJSON(input string) string {
	s := strings.TrimSpace(input)
	s = strings.TrimPrefix(s, "\ufeff")
	s = trailingCommaRe.ReplaceAllString(s, "$1")
	s = unquotedKeyRe.ReplaceAllString(s, `$1"$2"$3`)
	return controlCharRe.ReplaceAllString(s, "")
}

// ValidateJSON reports whether input is well-formed JSON.
func ValidateJSON(input string) bool {
	var v interface{}
	return json.Unmarshal([]byte(input), &v) == nil
}

// Package services – response validation and transport formatting.
//
// Two independent checks run on every model completion, in order:
//
//  1. ValidateResponse — tenant policy: maximum response length and the
//     tenant-configured prohibited word list.
//  2. CheckAppropriateness — a coarse built-in content-safety heuristic that
//     is independent of tenant configuration.
//
// Both checks run even though they resolve to the same fallback message,
// because their failures are logged and monitored as distinct categories.
package services

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// lineTextLimit is the hard character cap of a LINE text message.
const lineTextLimit = 5000

// inappropriateTerms is the built-in content-safety blocklist. It is
// intentionally coarse: tenant-specific policy belongs in prohibited_words,
// this list only catches output no tenant should ever send.
var inappropriateTerms = []string{
	"kill yourself",
	"commit suicide",
	"child porn",
	"how to make a bomb",
}

// degenerateRunLen is the length at which a same-rune run counts as
// degenerate output (model loops). Detected with a rune scan; RE2 has no
// backreferences.
const degenerateRunLen = 30

// hasDegenerateRun reports whether s contains any single rune repeated
// degenerateRunLen or more times in a row.
func hasDegenerateRun(s string) bool {
	var prev rune
	run := 0
	for _, r := range s {
		if r == prev {
			run++
			if run >= degenerateRunLen {
				return true
			}
			continue
		}
		prev = r
		run = 1
	}
	return false
}

// ValidateResponse enforces tenant content policy on a model completion.
// It returns a descriptive error naming the violated rule, or nil.
func ValidateResponse(content string, maxLength int, prohibited []string) error {
	if strings.TrimSpace(content) == "" {
		return fmt.Errorf("response is empty")
	}
	if maxLength > 0 && utf8.RuneCountInString(content) > maxLength {
		return fmt.Errorf("response exceeds max length %d", maxLength)
	}
	lower := strings.ToLower(content)
	for _, w := range prohibited {
		w = strings.ToLower(strings.TrimSpace(w))
		if w != "" && strings.Contains(lower, w) {
			return fmt.Errorf("response contains prohibited word %q", w)
		}
	}
	return nil
}

// CheckAppropriateness runs the built-in content-safety heuristic.
// It returns a descriptive error when the completion should not be sent.
func CheckAppropriateness(content string) error {
	lower := strings.ToLower(content)
	for _, term := range inappropriateTerms {
		if strings.Contains(lower, term) {
			return fmt.Errorf("response matches blocked content category")
		}
	}
	if hasDegenerateRun(content) {
		return fmt.Errorf("response looks degenerate (repeated character run)")
	}
	return nil
}

// nlCollapseRE collapses runs of 3+ newlines to two, preserving paragraphs.
var nlCollapseRE = regexp.MustCompile(`\n{3,}`)

// FormatForTransport normalizes a validated completion for the outbound chat
// transport: line endings to LF, collapsed blank runs, trimmed whitespace,
// and the platform text-length cap.
func FormatForTransport(content string) string {
	s := strings.ReplaceAll(content, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	s = nlCollapseRE.ReplaceAllString(s, "\n\n")
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) > lineTextLimit {
		s = string([]rune(s)[:lineTextLimit])
	}
	return s
}

// Package clean normalizes raw document text into plain text suitable for
// embedding. Cleaning is best-effort: malformed Markdown never produces an
// error, and the transformation is pure, deterministic, and idempotent.
package clean

import (
	"regexp"
	"strings"
)

// Rule order matters: later rules operate on the output of earlier ones.
var (
	headingRe  = regexp.MustCompile(`(?m)^#+\s+`)
	linkRe     = regexp.MustCompile(`\[([^\]]+)\]\([^\)]+\)`)
	emphasisRe = regexp.MustCompile("(\\*\\*|__|`|\\*|_)")
	// Keeps \t, \n, \r so the whitespace collapse can turn them into spaces.
	controlRe    = regexp.MustCompile(`[\x00-\x08\x0B\x0C\x0E-\x1F\x7F-\x9F]`)
	whitespaceRe = regexp.MustCompile(`\s+`)
)

// Text cleans a raw document string:
//
//  1. Strip Markdown heading markers at line starts.
//  2. Replace [label](url) links with the label alone.
//  3. Strip emphasis markers without removing the enclosed text.
//  4. Remove non-printable control characters.
//  5. Collapse whitespace runs into a single space and trim.
func Text(raw string) string {
	if raw == "" {
		return ""
	}

	s := headingRe.ReplaceAllString(raw, "")
	s = linkRe.ReplaceAllString(s, "$1")
	s = emphasisRe.ReplaceAllString(s, "")
	s = controlRe.ReplaceAllString(s, "")
	s = whitespaceRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// Lines splits a raw document into lines, cleans each one, and drops lines
// that clean to nothing. Each surviving line is one embedding chunk.
func Lines(raw string) []string {
	var out []string
	for _, line := range strings.Split(raw, "\n") {
		if cleaned := Text(line); cleaned != "" {
			out = append(out, cleaned)
		}
	}
	return out
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package extract turns the linear text of a paper into Citation records.
// section.go locates the references block; segment.go splits it into raw
// citations; fields.go and title.go recover structured fields from each.
package extract

import (
	"errors"
	"regexp"
	"strings"
)

var (
	// ErrEmptyDocument is returned when the input text has no content.
	ErrEmptyDocument = errors.New("document text is empty")

	// ErrNoReferences is returned when no references heading is found.
	ErrNoReferences = errors.New("could not locate references section")
)

// sectionHeadings are tried in order; the first heading found wins. A
// heading must occupy its own line, optionally prefixed by a Markdown
// marker or a section number ("7 References", "## Bibliography").
var sectionHeadings = []*regexp.Regexp{
	headingPattern(`references`),
	headingPattern(`bibliography`),
	headingPattern(`works\s+cited`),
	headingPattern(`literature`),
}

// sectionEnd matches the first line that closes the references block.
var sectionEnd = regexp.MustCompile(`(?im)^[ \t]*(?:#+[ \t]*)?(?:appendix|acknowledge?ments|supplementary)`)

func headingPattern(word string) *regexp.Regexp {
	return regexp.MustCompile(`(?im)^[ \t]*(?:#+[ \t]*)?(?:\d{1,2}\.?[ \t]+)?` + word + `[ \t]*:?[ \t]*$`)
}

// LocateReferences returns the trimmed text between the references
// heading and the next terminating heading (Appendix, Acknowledgments,
// Supplementary) or end of text. ok is false when no heading is found or
// the section is empty.
func LocateReferences(text string) (section string, ok bool) {
	for _, re := range sectionHeadings {
		loc := re.FindStringIndex(text)
		if loc == nil {
			continue
		}
		rest := text[loc[1]:]
		if end := sectionEnd.FindStringIndex(rest); end != nil {
			rest = rest[:end[0]]
		}
		rest = strings.TrimSpace(rest)
		return rest, rest != ""
	}
	return "", false
}

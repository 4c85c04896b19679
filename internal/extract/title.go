// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/pdiddy/citeverify/internal/normalize"
)

// titleInput is what every title strategy sees.
type titleInput struct {
	text string
	year int
}

// titleStrategy proposes a title candidate or "". Candidates are accepted
// only when longer than minTitleLength and not venue-like.
type titleStrategy struct {
	name string
	fn   func(titleInput) string
}

const minTitleLength = 10

// titleStrategies is the precedence order. Quoted titles are rare but
// unambiguous; the author/venue delimiters cover most CS bibliographies.
var titleStrategies = []titleStrategy{
	{"quoted", titleFromQuotes},
	{"author-end", titleAfterAuthors},
	{"venue-keyword", titleBeforeVenueKeyword},
	{"venue-separator", titleBeforeVenueSeparator},
	{"question-venue", titleBeforeQuestionVenue},
	{"comma-year", titleBeforeCommaYear},
	{"longest-sentence", titleLongestSentence},
	{"before-year", titleBeforeYear},
}

// ExtractTitle runs the title strategies in order and returns the first
// acceptable candidate, normalized. year is the extracted publication
// year or 0. Returns "" when no strategy succeeds.
func ExtractTitle(text string, year int) string {
	in := titleInput{text: text, year: year}
	for _, s := range titleStrategies {
		if cand := s.fn(in); acceptTitle(cand) {
			return normalize.Title(cand)
		}
	}
	return ""
}

func acceptTitle(cand string) bool {
	return utf8.RuneCountInString(cand) > minTitleLength && !looksLikeVenue(cand)
}

var (
	doubleQuoted = regexp.MustCompile(`["“”]([^"“”]+)["“”]`)
	curlyQuoted  = regexp.MustCompile(`[‘’]([^‘’]+)[‘’]`)
	singleQuoted = regexp.MustCompile(`(?:^|\s)'([^']+)'(?:[\s.,;:]|$)`)
)

func titleFromQuotes(in titleInput) string {
	for _, re := range []*regexp.Regexp{doubleQuoted, curlyQuoted, singleQuoted} {
		if m := re.FindStringSubmatch(in.text); m != nil {
			if t := strings.TrimSpace(m[1]); utf8.RuneCountInString(t) > minTitleLength {
				return t
			}
		}
	}
	return ""
}

// authorEnd finds "Lastname. Title. <venue token>".
var authorEnd = regexp.MustCompile(`(?i)(?:et\s+al\.|[A-Za-z\x{00C0}-\x{024F}][a-z\x{00C0}-\x{024F}]+)\.\s+([A-Z][^.]*(?:\.[^.]*)*?)(?:\.\s*(?:In\s|CoRR|arXiv|Proceedings|Journal|Trans\.|IEEE|ACM|\d{4}))`)

func titleAfterAuthors(in titleInput) string {
	m := authorEnd.FindStringSubmatch(in.text)
	if m == nil {
		return ""
	}
	return strings.TrimRight(strings.TrimSpace(m[1]), ".")
}

var (
	runTogetherPeriodIn = regexp.MustCompile(`\.In([A-Z])`)
	runTogetherIn       = regexp.MustCompile(`\bIn([A-Z])`)
	venueKeyword        = regexp.MustCompile(`(?i)In\s*(?:International|Proceedings|Conference|ICLR|Advances|Annual|Symposium|Empirical)\s`)
	gluedIn             = regexp.MustCompile(`[a-zA-Z]In$`)
	spaceRun            = regexp.MustCompile(`\s+`)
)

// venueText collapses whitespace and restores the space PDF extraction
// drops between a sentence and "In": "networks.InInternational" becomes
// "networks. In International".
func venueText(text string) string {
	t := spaceRun.ReplaceAllString(text, " ")
	t = runTogetherPeriodIn.ReplaceAllString(t, ". In $1")
	return runTogetherIn.ReplaceAllString(t, "In $1")
}

func titleBeforeVenueKeyword(in titleInput) string {
	t := venueText(in.text)
	loc := venueKeyword.FindStringIndex(t)
	if loc == nil {
		return ""
	}
	before := strings.TrimSpace(t[:loc[0]])
	if gluedIn.MatchString(before) {
		before = strings.TrimRight(before[:len(before)-2], " ")
	}
	return stripJournalVolume(lastSentence(before, "."))
}

func titleBeforeVenueSeparator(in titleInput) string {
	t := venueText(in.text)
	for _, sep := range []string{". In ", " In "} {
		if i := strings.Index(t, sep); i >= 0 {
			before := strings.TrimSpace(t[:i])
			return stripJournalVolume(lastSentence(before, "."))
		}
	}
	return ""
}

func titleBeforeQuestionVenue(in titleInput) string {
	i := strings.Index(in.text, "? In")
	if i < 0 {
		return ""
	}
	before := strings.TrimRight(strings.TrimSpace(in.text[:i]), "?")
	return stripJournalVolume(lastSentence(before, "?"))
}

// lastSentence returns the text after the last ". " in s with trailing
// cut characters removed, or s with a leading author block stripped when
// s holds no sentence break.
func lastSentence(s, cut string) string {
	if i := strings.LastIndex(s, ". "); i >= 0 {
		return strings.TrimRight(strings.TrimSpace(s[i+2:]), cut)
	}
	return stripLeadingAuthors(s)
}

var (
	commaYear     = regexp.MustCompile(`(?s)\.\s+(.+),\s*(?:19|20)\d{2}\s*\.?\s*$`)
	inVenueSplit  = regexp.MustCompile(`(?i)[.?]\s+In\s+`)
	sentenceBreak = regexp.MustCompile(`\.\s+`)
	volumeIssue   = regexp.MustCompile(`,\s*\d+\(\d+\):\s*\d+`)
	venueStart    = regexp.MustCompile(`(?i)^(?:In\s|Proceedings|Journal|Trans\.|IEEE|ACM|CoRR|arXiv)`)
)

func titleBeforeCommaYear(in titleInput) string {
	if in.year == 0 {
		return ""
	}
	m := commaYear.FindStringSubmatch(in.text)
	if m == nil {
		return ""
	}
	return stripJournalVolume(cutAtVenue(strings.TrimRight(strings.TrimSpace(m[1]), ".,")))
}

// cutAtVenue drops everything from a ". In " or "? In " venue marker.
func cutAtVenue(s string) string {
	if !strings.Contains(s, ". In ") && !strings.Contains(s, "? In ") {
		return s
	}
	head := inVenueSplit.Split(s, 2)[0]
	return strings.TrimRight(strings.TrimSpace(head), ".?")
}

// titleLongestSentence drops the first sentence (authors) and the last
// (venue and year) and picks the longest remaining capitalized sentence
// that is not a venue or volume fragment.
func titleLongestSentence(in titleInput) string {
	sentences := sentenceBreak.Split(in.text, -1)
	if len(sentences) <= 2 {
		return ""
	}
	var candidates []string
	for _, s := range sentences[1 : len(sentences)-1] {
		s = strings.TrimSpace(s)
		if s == "" || volumeIssue.MatchString(s) || venueStart.MatchString(s) {
			continue
		}
		r, _ := utf8.DecodeRuneInString(s)
		n := utf8.RuneCountInString(s)
		if unicode.IsUpper(r) && n > minTitleLength && n < 200 {
			candidates = append(candidates, s)
		}
	}
	if len(candidates) == 0 {
		return ""
	}
	sort.Slice(candidates, func(i, j int) bool {
		ni, nj := utf8.RuneCountInString(candidates[i]), utf8.RuneCountInString(candidates[j])
		if ni != nj {
			return ni > nj
		}
		return candidates[i] > candidates[j]
	})
	return stripJournalVolume(candidates[0])
}

// titleBeforeYear scans the sentences preceding the first occurrence of
// the year, last to first, skipping the author sentence.
func titleBeforeYear(in titleInput) string {
	if in.year == 0 {
		return ""
	}
	pos := strings.Index(in.text, strconv.Itoa(in.year))
	if pos <= 0 {
		return ""
	}
	segments := sentenceBreak.Split(in.text[:pos], -1)
	for i := len(segments) - 1; i >= 1; i-- {
		seg := strings.TrimRight(strings.TrimSpace(segments[i]), ".,")
		seg = stripJournalVolume(cutAtVenue(seg))
		if acceptTitle(seg) {
			return seg
		}
	}
	return ""
}

var (
	venuePrefix = regexp.MustCompile(`^(?:in\s+)?(?:international|proceedings|conference|advances|annual|symposium|journal|transactions|workshop)\s`)
	venueAbbrev = regexp.MustCompile(`^[^()]*\s*\((?:iclr|neurips|nips|icml|acl|emnlp|cvpr|eccv|iccv)\)\s*\.?$`)
)

// looksLikeVenue reports whether s is a venue name rather than a title.
func looksLikeVenue(s string) bool {
	if utf8.RuneCountInString(s) < 15 {
		return false
	}
	t := strings.ToLower(strings.TrimSpace(s))
	return venuePrefix.MatchString(t) || venueAbbrev.MatchString(t)
}

var journalVolume = regexp.MustCompile(`^(.+?)\.\s+[A-Za-z][^.]*,\s*\d+\(\d+\):\s*\d+`)

// stripJournalVolume removes a leading "In " and a trailing
// ". Journal, vol(issue):pages" fragment.
func stripJournalVolume(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return s
	}
	if len(s) >= 3 && strings.EqualFold(s[:3], "in ") {
		s = strings.TrimSpace(s[3:])
	}
	if m := journalVolume.FindStringSubmatch(s); m != nil {
		return strings.TrimRight(strings.TrimSpace(m[1]), ".")
	}
	return s
}

// stripLeadingAuthors handles "Name and First Last Title words" with no
// period after the authors: when the text after the first " and " starts
// with two capitalized words, those are taken as the last author's name.
func stripLeadingAuthors(s string) string {
	i := strings.Index(s, " and ")
	if i < 0 {
		return s
	}
	rest := strings.TrimSpace(s[i+5:])
	words := strings.Fields(rest)
	if len(words) >= 3 && startsUpper(words[0]) && startsUpper(words[1]) {
		return strings.TrimSpace(strings.Join(words[2:], " "))
	}
	return rest
}

func startsUpper(w string) bool {
	r, _ := utf8.DecodeRuneInString(w)
	return unicode.IsUpper(r)
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package normalize repairs text damaged by PDF extraction: ligatures,
// hyphenated line breaks, and words or short phrases whose separating
// spaces were dropped.
package normalize

import (
	"regexp"
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// MinSplitLength is the length above which a word not in the vocabulary
// is considered for dictionary-assisted splitting.
const MinSplitLength = 8

var (
	hyphenBreak   = regexp.MustCompile(`([\p{L}\p{N}_]+)-\s+([\p{L}\p{N}_]+)`)
	lineHyphen    = regexp.MustCompile(`(\p{L})-[ \t]*\r?\n[ \t]*(\p{Ll})`)
	whitespaceRun = regexp.MustCompile(`\s+`)
	keyStrip      = regexp.MustCompile(`[^\p{L}\p{N}\s]+`)
)

// phrases maps short concatenations to their spaced form. They are
// replaced as whole words, case-insensitively.
var phrases = map[string]string{
	"asa":     "as a",
	"inthe":   "in the",
	"ofthe":   "of the",
	"tothe":   "to the",
	"forthe":  "for the",
	"withthe": "with the",
	"aswell":  "as well",
	"suchas":  "such as",
}

var phrasePattern = regexp.MustCompile(`(?i)\b(asa|inthe|ofthe|tothe|forthe|withthe|aswell|suchas)\b`)

// vocabulary holds words that commonly end up glued to their neighbours
// in ML and CS bibliographies.
var vocabulary = map[string]bool{}

// bySize is the vocabulary ordered longest first, ties alphabetical.
var bySize []string

func init() {
	for _, w := range strings.Fields(`
		the and for with from that this which into over under about after
		before between through neural network networks learning learn learns
		deep machine machines model models attention transformer language
		natural processing sequence sequences recurrent convolutional training
		translation recognition generation classification grammars grammar
		parsing semantic syntactic encoder decoder embedding embeddings
		representation representations algorithms algorithm gpus gpu limits
		exploring international conference active memory replace overfitting`) {
		vocabulary[w] = true
		bySize = append(bySize, w)
	}
	sort.Slice(bySize, func(i, j int) bool {
		if len(bySize[i]) != len(bySize[j]) {
			return len(bySize[i]) > len(bySize[j])
		}
		return bySize[i] < bySize[j]
	})
}

// Text normalizes s: NFKC folding (ligatures such as "ﬁ"), rejoining
// "word- continuation" hyphen breaks, collapsing whitespace, expanding
// known phrase concatenations, and splitting long concatenated words.
//
// Text is a pure function and Text(Text(s)) == Text(s). The repair pass
// is repeated until the output stops changing; after the first pass only
// spaces between letters are inserted, so the loop terminates.
func Text(s string) string {
	for {
		next := pass(s)
		if next == s {
			return next
		}
		s = next
	}
}

// Title is Text followed by trimming citation punctuation (".,;:") from
// both ends. It is also idempotent.
func Title(s string) string {
	for {
		next := strings.Trim(Text(s), ".,;: ")
		if next == s {
			return next
		}
		s = next
	}
}

// Key reduces s to a comparison key: lowercase letters, digits and single
// spaces. Punctuation is removed, not replaced.
func Key(s string) string {
	s = strings.ToLower(norm.NFKC.String(s))
	s = keyStrip.ReplaceAllString(s, "")
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(s, " "))
}

// Layout repairs a multi-line block without flattening it: NFKC folding,
// CRLF line endings, and words hyphenated across a line break. Line
// structure is preserved for the segmenter.
func Layout(s string) string {
	s = norm.NFKC.String(s)
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return lineHyphen.ReplaceAllString(s, "$1$2")
}

func pass(s string) string {
	s = norm.NFKC.String(s)
	for {
		joined := hyphenBreak.ReplaceAllString(s, "$1$2")
		if joined == s {
			break
		}
		s = joined
	}
	s = strings.TrimSpace(whitespaceRun.ReplaceAllString(s, " "))
	s = expandPhrases(s)
	s = splitConcatenated(s)
	return expandPhrases(s)
}

func expandPhrases(s string) string {
	return phrasePattern.ReplaceAllStringFunc(s, func(m string) string {
		good := phrases[strings.ToLower(m)]
		if unicode.IsUpper(rune(m[0])) {
			return strings.ToUpper(good[:1]) + good[1:]
		}
		return good
	})
}

// splitConcatenated applies splitWord to the letter core of every
// whitespace-separated token, leaving surrounding punctuation in place.
func splitConcatenated(s string) string {
	if s == "" {
		return s
	}
	tokens := strings.Fields(s)
	for i, tok := range tokens {
		start, end := 0, len(tok)
		for start < end && !isASCIILetter(tok[start]) {
			start++
		}
		for end > start && !isASCIILetter(tok[end-1]) {
			end--
		}
		core := tok[start:end]
		if core == "" || !allASCIILetters(core) {
			continue
		}
		tokens[i] = tok[:start] + strings.Join(splitWord(core), " ") + tok[end:]
	}
	return strings.Join(tokens, " ")
}

// splitWord splits a run of ASCII letters at the longest vocabulary word
// it contains, recursing on both halves. Words of MinSplitLength letters
// or fewer and vocabulary words are kept whole. Splitting may miss rare
// words or break on coincidental substrings.
func splitWord(w string) []string {
	if len(w) <= MinSplitLength || vocabulary[strings.ToLower(w)] {
		return []string{w}
	}
	lw := strings.ToLower(w)
	for _, common := range bySize {
		if len(common) < 3 {
			continue
		}
		idx := strings.Index(lw, common)
		if idx < 0 {
			continue
		}
		before, after := w[:idx], w[idx:]
		switch {
		case idx > 2 && len(after) > 3:
			return append(splitWord(before), splitWord(after)...)
		case idx == 0 && len(after) > len(common)+2:
			rest := w[len(common):]
			if vocabulary[strings.ToLower(rest)] || len(rest) >= 4 {
				return append(splitWord(w[:len(common)]), splitWord(rest)...)
			}
		}
	}
	return []string{w}
}

func isASCIILetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func allASCIILetters(s string) bool {
	for i := 0; i < len(s); i++ {
		if !isASCIILetter(s[i]) {
			return false
		}
	}
	return true
}

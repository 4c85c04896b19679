// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/pdiddy/citeverify/internal/ident"
	"github.com/pdiddy/citeverify/pkg/types"
)

var (
	doiRe  = regexp.MustCompile(`10\.\d{4,}/[^\s)]+`)
	urlRe  = regexp.MustCompile(`https?://[^\s)]+`)
	yearRe = regexp.MustCompile(`\b(?:19|20)\d{2}\b`)

	pageBefore = regexp.MustCompile(`[:(]\s*$`)
	pageAfter  = regexp.MustCompile(`^[–\-]\s*\d`)
)

// arxivPatterns are tried in order; the first match wins.
var arxivPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)arXiv[:\s]+(\d{4}\.\d{4,5})(?:v\d+)?`),
	regexp.MustCompile(`(?i)arXiv\s+preprint\s+(\d{4}\.\d{4,5})`),
	regexp.MustCompile(`(?i)arxiv\.org/abs/(\d{4}\.\d{4,5})`),
	regexp.MustCompile(`(?i)abs/(\d{4}\.\d{4,5})`),
	regexp.MustCompile(`(?i)arXiv[:\s]+([a-z-]+(?:\.[A-Z]{2})?/\d{7})`),
}

// journalPatterns are tried in order; the first capture group is the venue.
var journalPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\bIn\s+([^,.]+)`),
	regexp.MustCompile(`\b((?:[A-Z][a-z]+\s+)*(?:Journal|Proceedings|Conference|Transactions)\b[^,.(]*)`),
	regexp.MustCompile(`\b(CoRR|arXiv)\b`),
}

var (
	andJoin      = regexp.MustCompile(`(?i),\s+and\s+`)
	andSplit     = regexp.MustCompile(`\s+and\s+`)
	commaSpace   = regexp.MustCompile(`,\s+`)
	initialChain = regexp.MustCompile(`^\.\s*[A-Z]\.`)
	titleStart   = regexp.MustCompile(`^\s*[A-Z]`)
	etAlSuffix   = regexp.MustCompile(`(?i)\s*\bet\s+al\.?$`)
)

// Fields extracts a Citation from one raw citation string. Each field is
// extracted independently; a field that cannot be recovered is left
// empty and never prevents the others. RawText is kept as given.
func Fields(raw, label string) types.Citation {
	c := types.Citation{Number: label, RawText: raw}
	text := stripLabel(raw)
	if text == "" {
		return c
	}

	if m := doiRe.FindString(text); m != "" {
		c.DOI = ident.NormalizeDOI(m)
	}
	c.ArxivID = ExtractArxivID(text)
	c.Year = ExtractYear(text)
	if m := urlRe.FindString(text); m != "" {
		c.URL = strings.TrimRight(m, ".,)")
	}
	c.Title = ExtractTitle(text, c.Year)
	c.Authors = ExtractAuthors(text)
	c.Journal = ExtractJournal(text)
	return c
}

// ExtractArxivID returns the first arXiv identifier found, without its
// version suffix.
func ExtractArxivID(text string) string {
	for _, re := range arxivPatterns {
		if m := re.FindStringSubmatch(text); m != nil {
			return ident.NormalizeArxivID(m[1])
		}
	}
	return ""
}

// ExtractYear returns the publication year, preferring the last 19xx/20xx
// token. A token preceded by ':' or '(' and followed by a dash and a
// digit is a page number ("15(1):1929–1958") and is skipped. If every
// token is skipped the last one is returned. Returns 0 when none exist.
func ExtractYear(text string) int {
	locs := yearRe.FindAllStringIndex(text, -1)
	if len(locs) == 0 {
		return 0
	}
	for i := len(locs) - 1; i >= 0; i-- {
		start, end := locs[i][0], locs[i][1]
		if pageBefore.MatchString(lastRunes(text[:start], 3)) &&
			pageAfter.MatchString(firstRunes(text[end:], 5)) {
			continue
		}
		y, _ := strconv.Atoi(text[start:end])
		return y
	}
	last := locs[len(locs)-1]
	y, _ := strconv.Atoi(text[last[0]:last[1]])
	return y
}

// ExtractJournal returns the venue, or "" when none is recognized.
func ExtractJournal(text string) string {
	for _, re := range journalPatterns {
		if m := re.FindStringSubmatch(text); m != nil {
			if v := strings.Trim(strings.TrimSpace(m[1]), ".,"); v != "" {
				return v
			}
		}
	}
	return ""
}

// ExtractAuthors returns up to types.MaxAuthors names from the author
// block: the text up to the first period followed by a capitalized word,
// or up to the first period when that fails. Middle-initial chains such
// as "J. R. R." are kept inside the block.
func ExtractAuthors(text string) []string {
	block, ok := authorBlock(text)
	if !ok {
		return nil
	}
	block = andJoin.ReplaceAllString(block, ", ")

	var authors []string
	for _, part := range splitAuthors(block) {
		part = strings.TrimRight(strings.TrimSpace(part), ".,")
		part = strings.TrimSpace(etAlSuffix.ReplaceAllString(part, ""))
		if utf8.RuneCountInString(part) <= 2 {
			continue
		}
		switch strings.ToLower(part) {
		case "et al", "et al.", "others":
			continue
		}
		authors = append(authors, part)
		if len(authors) == types.MaxAuthors {
			break
		}
	}
	return authors
}

// authorBlock finds the end of the author list. Starting from the first
// period it follows chains of ". X." initials, then accepts the next
// period if a capitalized word follows it. Longer chains are preferred.
func authorBlock(text string) (string, bool) {
	first := strings.IndexByte(text, '.')
	if first <= 0 {
		return "", false
	}

	ends := []int{first}
	p := first
	for {
		m := initialChain.FindStringIndex(text[p:])
		if m == nil {
			break
		}
		p += m[1]
		ends = append(ends, p)
	}

	for i := len(ends) - 1; i >= 0; i-- {
		q := ends[i]
		if i > 0 {
			next := strings.IndexByte(text[q:], '.')
			if next < 0 {
				continue
			}
			q += next
		}
		if titleStart.MatchString(text[q+1:]) {
			return text[:q], true
		}
	}
	return text[:first], true
}

// splitAuthors splits on " and " and on commas followed by a capital.
func splitAuthors(block string) []string {
	var parts []string
	for _, half := range andSplit.Split(block, -1) {
		start := 0
		for _, loc := range commaSpace.FindAllStringIndex(half, -1) {
			r, _ := utf8.DecodeRuneInString(half[loc[1]:])
			if !unicode.IsUpper(r) || r > unicode.MaxASCII {
				continue
			}
			parts = append(parts, half[start:loc[0]])
			start = loc[1]
		}
		parts = append(parts, half[start:])
	}
	return parts
}

func lastRunes(s string, n int) string {
	i := len(s)
	for ; n > 0 && i > 0; n-- {
		_, size := utf8.DecodeLastRuneInString(s[:i])
		i -= size
	}
	return s[i:]
}

func firstRunes(s string, n int) string {
	i := 0
	for ; n > 0 && i < len(s); n-- {
		_, size := utf8.DecodeRuneInString(s[i:])
		i += size
	}
	return s[:i]
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package verify

import (
	"strings"

	"github.com/pdiddy/citeverify/internal/normalize"
)

// DefaultPrefixScore is returned when one title is a word-prefix of the
// other, as happens with shortened or colloquial citation titles.
const DefaultPrefixScore = 0.95

// Similarity scores two titles in [0, 1] with DefaultPrefixScore.
func Similarity(a, b string) float64 {
	return similarity(a, b, DefaultPrefixScore)
}

// similarity compares the normalized keys of a and b (lowercase,
// punctuation removed, whitespace collapsed). Equal keys score 1; a
// word-prefix relationship in either direction scores prefixScore;
// otherwise the result is 2*LCS/(len(a)+len(b)) over runes. An empty key
// on either side scores 0. The function is symmetric.
func similarity(a, b string, prefixScore float64) float64 {
	ka, kb := normalize.Key(a), normalize.Key(b)
	if ka == "" || kb == "" {
		return 0
	}
	if ka == kb {
		return 1
	}
	if strings.HasPrefix(kb, ka+" ") || strings.HasPrefix(ka, kb+" ") {
		return prefixScore
	}
	return lcsRatio([]rune(ka), []rune(kb))
}

// lcsRatio returns 2*LCS(a, b)/(len(a)+len(b)) using two DP rows.
func lcsRatio(a, b []rune) float64 {
	total := len(a) + len(b)
	if total == 0 {
		return 0
	}
	if len(b) > len(a) {
		a, b = b, a
	}
	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			switch {
			case a[i-1] == b[j-1]:
				cur[j] = prev[j-1] + 1
			case prev[j] >= cur[j-1]:
				cur[j] = prev[j]
			default:
				cur[j] = cur[j-1]
			}
		}
		prev, cur = cur, prev
	}
	return 2 * float64(prev[len(b)]) / float64(total)
}

// SubtitlePhrase returns the text after the first colon with a leading
// article (The, A, An) removed, or "" when there is no colon or fewer
// than two words remain. "Building a large annotated corpus of english:
// The Penn Treebank" yields "Penn Treebank".
func SubtitlePhrase(title string) string {
	i := strings.Index(title, ":")
	if i < 0 {
		return ""
	}
	words := strings.Fields(title[i+1:])
	if len(words) > 0 {
		switch strings.ToLower(words[0]) {
		case "the", "a", "an":
			words = words[1:]
		}
	}
	if len(words) < 2 {
		return ""
	}
	return strings.TrimRight(strings.Join(words, " "), ".")
}

// venueQuery extends title with the citation's venue words, or returns
// "" when there is no venue or the title already contains it.
func venueQuery(title, venue string) string {
	venue = strings.TrimSpace(venue)
	if venue == "" || strings.Contains(strings.ToLower(title), strings.ToLower(venue)) {
		return ""
	}
	return title + " " + venue
}

// fallbackQueries lists the retry queries for title, without duplicates.
func fallbackQueries(title, venue string) []string {
	var out []string
	seen := map[string]bool{strings.ToLower(title): true}
	for _, q := range []string{SubtitlePhrase(title), venueQuery(title, venue)} {
		if q == "" || seen[strings.ToLower(q)] {
			continue
		}
		seen[strings.ToLower(q)] = true
		out = append(out, q)
	}
	return out
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"regexp"
	"strconv"
	"strings"
)

// Segment is one raw citation cut from a references block.
type Segment struct {
	Label string
	Text  string
}

var (
	bracketLabel   = regexp.MustCompile(`\[(\d+)\]`)
	lineLabel      = regexp.MustCompile(`(?m)^[ \t]*(\d{1,3})[.)]`)
	numberedLine   = regexp.MustCompile(`\n\s*\d{1,3}[.)]\s`)
	paragraphGap   = regexp.MustCompile(`\n\s*\n`)
	leadingBracket = regexp.MustCompile(`^\s*\[\d+\]\s*`)
)

// Split splits a references block into raw citations. Strategies are
// tried in order and the first that finds any label wins:
//
//  1. bracketed labels "[n]": content runs to the next "[n]" or to a
//     line starting with "n." / "n)";
//  2. line-leading labels "n." or "n)": content runs to the next such line;
//  3. blank-line separated paragraphs, labelled 1, 2, 3, ...
func Split(section string) []Segment {
	if segs := segmentBracketed(section); len(segs) > 0 {
		return segs
	}
	if segs := segmentNumberedLines(section); len(segs) > 0 {
		return segs
	}
	return segmentParagraphs(section)
}

func segmentBracketed(section string) []Segment {
	locs := bracketLabel.FindAllStringSubmatchIndex(section, -1)
	segs := make([]Segment, 0, len(locs))
	for i, loc := range locs {
		end := len(section)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		body := section[loc[1]:end]
		if m := numberedLine.FindStringIndex(body); m != nil {
			body = body[:m[0]]
		}
		segs = append(segs, Segment{
			Label: section[loc[2]:loc[3]],
			Text:  strings.TrimSpace(body),
		})
	}
	return segs
}

func segmentNumberedLines(section string) []Segment {
	locs := lineLabel.FindAllStringSubmatchIndex(section, -1)
	segs := make([]Segment, 0, len(locs))
	for i, loc := range locs {
		end := len(section)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		segs = append(segs, Segment{
			Label: section[loc[2]:loc[3]],
			Text:  strings.TrimSpace(section[loc[1]:end]),
		})
	}
	return segs
}

func segmentParagraphs(section string) []Segment {
	var segs []Segment
	for _, part := range paragraphGap.Split(section, -1) {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		segs = append(segs, Segment{
			Label: strconv.Itoa(len(segs) + 1),
			Text:  part,
		})
	}
	return segs
}

// stripLabel removes a leading "[n]" left in captured content.
func stripLabel(text string) string {
	return strings.TrimSpace(leadingBracket.ReplaceAllString(strings.TrimSpace(text), ""))
}

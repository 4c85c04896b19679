// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ident classifies and normalizes scholarly identifiers (DOIs and
// arXiv IDs) so that the same work always maps to the same lookup key.
package ident

import (
	"net/url"
	"regexp"
	"strings"
)

// IdentifierType classifies an input identifier.
type IdentifierType int

const (
	TypeUnknown IdentifierType = iota
	TypeArxiv
	TypeDOI
	TypeURL
)

func (t IdentifierType) String() string {
	switch t {
	case TypeArxiv:
		return "arxiv"
	case TypeDOI:
		return "doi"
	case TypeURL:
		return "url"
	default:
		return "unknown"
	}
}

// ArxivPDFBase is the arXiv PDF endpoint. Declared as a var so tests can
// substitute an httptest server.
var ArxivPDFBase = "https://arxiv.org/pdf/"

var (
	// arxivInputPattern matches a whole arXiv ID input: "2301.07041",
	// "arXiv:2301.07041", "2301.07041v2".
	arxivInputPattern = regexp.MustCompile(`^(?i:arxiv:)?(\d{4}\.\d{4,5})(?:v\d+)?$`)

	// arxivURLPattern matches abs/ and pdf/ links on arxiv.org.
	arxivURLPattern = regexp.MustCompile(`arxiv\.org/(?:abs|pdf)/(\d{4}\.\d{4,5})(?:v\d+)?(?:\.pdf)?/?$`)

	// modernArxiv finds the YYMM.NNNNN core of a modern arXiv ID.
	modernArxiv = regexp.MustCompile(`\d{4}\.\d{4,5}`)

	// legacyVersion strips a version suffix from legacy IDs ("hep-th/9901001v2").
	legacyVersion = regexp.MustCompile(`^([a-z-]+(?:\.[A-Za-z]{2})?/\d{7})v\d+$`)

	doiPattern = regexp.MustCompile(`^10\.\d{4,9}/[^\s]+$`)
)

// doiPrefixes are stripped, longest first, before a DOI is compared.
var doiPrefixes = []string{
	"https://dx.doi.org/",
	"http://dx.doi.org/",
	"https://doi.org/",
	"http://doi.org/",
	"doi.org/",
	"doi:",
	"DOI:",
	"DOI",
}

// NormalizeDOI strips resolver URL and "doi:" prefixes and trailing
// punctuation. "https://doi.org/10.1234/x", "doi:10.1234/x" and
// "10.1234/x" all yield "10.1234/x".
func NormalizeDOI(doi string) string {
	doi = strings.TrimSpace(doi)
	for _, p := range doiPrefixes {
		if len(doi) >= len(p) && strings.EqualFold(doi[:len(p)], p) {
			doi = strings.TrimSpace(doi[len(p):])
			break
		}
	}
	return strings.TrimRight(doi, ".,);:")
}

// NormalizeArxivID strips an "arXiv:" prefix and any version suffix.
// "arXiv:1234.5678v1" yields "1234.5678". Legacy IDs keep their category.
func NormalizeArxivID(id string) string {
	id = strings.TrimSpace(id)
	if len(id) >= 6 && strings.EqualFold(id[:6], "arxiv:") {
		id = strings.TrimSpace(id[6:])
	}
	if m := modernArxiv.FindString(id); m != "" {
		return m
	}
	if m := legacyVersion.FindStringSubmatch(id); m != nil {
		return m[1]
	}
	return id
}

// Classify determines the identifier type and returns the normalized form.
// arXiv abs/pdf URLs classify as TypeArxiv; doi.org URLs as TypeDOI.
func Classify(identifier string) (IdentifierType, string) {
	identifier = strings.TrimSpace(identifier)

	if m := arxivInputPattern.FindStringSubmatch(identifier); m != nil {
		return TypeArxiv, m[1]
	}

	if m := arxivURLPattern.FindStringSubmatch(identifier); m != nil {
		return TypeArxiv, m[1]
	}

	if d := NormalizeDOI(identifier); doiPattern.MatchString(d) {
		return TypeDOI, d
	}

	if u, err := url.Parse(identifier); err == nil && (u.Scheme == "http" || u.Scheme == "https") {
		return TypeURL, identifier
	}

	return TypeUnknown, identifier
}

// PDFURL returns the download URL for an arXiv ID. Other identifier types
// have no direct PDF endpoint and return "".
func PDFURL(idType IdentifierType, normalized string) string {
	switch idType {
	case TypeArxiv:
		return ArxivPDFBase + normalized
	case TypeURL:
		return normalized
	default:
		return ""
	}
}

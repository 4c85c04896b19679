// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ident

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeDOI(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"https://doi.org/10.1234/x", "10.1234/x"},
		{"http://doi.org/10.1234/x", "10.1234/x"},
		{"https://dx.doi.org/10.1234/x", "10.1234/x"},
		{"doi:10.1234/x", "10.1234/x"},
		{"DOI: 10.1234/x", "10.1234/x"},
		{"10.1234/x", "10.1234/x"},
		{"10.1234/x.", "10.1234/x"},
		{"10.1234/x);", "10.1234/x"},
		{"  10.1145/3292500.3330701, ", "10.1145/3292500.3330701"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeDOI(tt.in))
		})
	}
}

func TestNormalizeArxivID(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"arXiv:1234.5678v1", "1234.5678"},
		{"arxiv:2301.12345", "2301.12345"},
		{"2301.12345v3", "2301.12345"},
		{"1706.03762", "1706.03762"},
		{"hep-th/9901001", "hep-th/9901001"},
		{"hep-th/9901001v2", "hep-th/9901001"},
		{"math.GT/0309136", "math.GT/0309136"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeArxivID(tt.in))
		})
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantType IdentifierType
		wantNorm string
	}{
		{"bare arxiv", "2301.07041", TypeArxiv, "2301.07041"},
		{"prefixed arxiv", "arXiv:2301.07041v2", TypeArxiv, "2301.07041"},
		{"abs url", "https://arxiv.org/abs/1706.03762v5", TypeArxiv, "1706.03762"},
		{"pdf url", "https://arxiv.org/pdf/1706.03762.pdf", TypeArxiv, "1706.03762"},
		{"doi", "10.1145/1234567.1234568", TypeDOI, "10.1145/1234567.1234568"},
		{"doi url", "https://doi.org/10.1145/1234567", TypeDOI, "10.1145/1234567"},
		{"plain url", "https://example.com/paper.pdf", TypeURL, "https://example.com/paper.pdf"},
		{"file path", "paper.pdf", TypeUnknown, "paper.pdf"},
		{"empty", "", TypeUnknown, ""},
		{"whitespace", "  2301.07041  ", TypeArxiv, "2301.07041"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotType, gotNorm := Classify(tt.input)
			assert.Equal(t, tt.wantType, gotType)
			assert.Equal(t, tt.wantNorm, gotNorm)
		})
	}
}

func TestIdentifierTypeString(t *testing.T) {
	assert.Equal(t, "arxiv", TypeArxiv.String())
	assert.Equal(t, "doi", TypeDOI.String())
	assert.Equal(t, "url", TypeURL.String())
	assert.Equal(t, "unknown", TypeUnknown.String())
}

func TestPDFURL(t *testing.T) {
	assert.Equal(t, ArxivPDFBase+"1706.03762", PDFURL(TypeArxiv, "1706.03762"))
	assert.Equal(t, "https://x.org/a.pdf", PDFURL(TypeURL, "https://x.org/a.pdf"))
	assert.Empty(t, PDFURL(TypeDOI, "10.1/x"))
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package verify

import "testing"

func TestSimilarity(t *testing.T) {
	tests := []struct {
		a, b     string
		min, max float64
	}{
		{"Attention Is All You Need", "attention is all you need.", 1, 1},
		{"A decomposable attention model", "A Decomposable Attention Model for Natural Language Inference", 0.9, 0.95},
		{"", "anything", 0, 0},
		{"anything", "", 0, 0},
		{"...", "anything", 0, 0},
		{"Deep residual learning for image recognition", "Deep learning for image classification", 0.7, 0.8},
		{"Attention is all you need", "A survey of soil bacteria", 0, 0.5},
	}
	for _, tt := range tests {
		got := Similarity(tt.a, tt.b)
		if got < tt.min || got > tt.max {
			t.Errorf("Similarity(%q, %q) = %v, want in [%v, %v]", tt.a, tt.b, got, tt.min, tt.max)
		}
	}
}

func TestSimilaritySymmetricAndBounded(t *testing.T) {
	titles := []string{
		"",
		"Learning",
		"Learning to learn",
		"Neural machine translation by jointly learning to align and translate",
		"Sequence to sequence learning with neural networks",
		"Building a large annotated corpus of English: The Penn Treebank",
		"Über die Quantentheorie",
	}
	for _, a := range titles {
		for _, b := range titles {
			ab, ba := Similarity(a, b), Similarity(b, a)
			if ab != ba {
				t.Errorf("Similarity not symmetric for %q, %q: %v vs %v", a, b, ab, ba)
			}
			if ab < 0 || ab > 1 {
				t.Errorf("Similarity(%q, %q) = %v out of [0, 1]", a, b, ab)
			}
		}
	}
}

func TestSimilarityPrefixScoreTunable(t *testing.T) {
	if got := similarity("Learning", "Learning to learn", 0.5); got != 0.5 {
		t.Errorf("similarity with prefix score 0.5 = %v", got)
	}
}

func TestSubtitlePhrase(t *testing.T) {
	tests := map[string]string{
		"Building a large annotated corpus of English: The Penn Treebank": "Penn Treebank",
		"BERT: Pre-training of deep bidirectional transformers":            "Pre-training of deep bidirectional transformers",
		"GloVe: A vectors":              "",
		"Adam: A method for stochastic": "method for stochastic",
		"No colon here":                 "",
		"Trailing colon:":               "",
		"Word2vec: An explained view.":  "explained view",
	}
	for in, want := range tests {
		if got := SubtitlePhrase(in); got != want {
			t.Errorf("SubtitlePhrase(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestFallbackQueries(t *testing.T) {
	got := fallbackQueries("Corpus: The Penn Treebank", "Computational Linguistics")
	want := []string{"Penn Treebank", "Corpus: The Penn Treebank Computational Linguistics"}
	if len(got) != len(want) {
		t.Fatalf("fallbackQueries = %q, want %q", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("query %d = %q, want %q", i, got[i], want[i])
		}
	}

	if got := fallbackQueries("Plain title in Nature", "Nature"); len(got) != 0 {
		t.Errorf("venue already in title should give no retries, got %q", got)
	}
}

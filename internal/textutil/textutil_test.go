package textutil

import (
	"math"
	"strings"
	"testing"
)

func TestWordsFiltersShortTokens(t *testing.T) {
	words := Words("Go is a fun programming language")

	for _, w := range words {
		if len(w) <= 2 {
			t.Errorf("Expected words longer than 2 chars, got %q", w)
		}
	}

	found := false
	for _, w := range words {
		if w == "programming" {
			found = true
		}
	}
	if !found {
		t.Error("Expected 'programming' in tokenized words")
	}
}

func TestJaccardWordsIdentical(t *testing.T) {
	sim := JaccardWords("react hooks tutorial", "react hooks tutorial")
	if math.Abs(sim-1.0) > 1e-9 {
		t.Errorf("Expected identical texts to have overlap 1.0, got %.3f", sim)
	}
}

func TestJaccardWordsDisjoint(t *testing.T) {
	sim := JaccardWords("react hooks", "postgres indexing")
	if sim != 0 {
		t.Errorf("Expected disjoint texts to have overlap 0, got %.3f", sim)
	}
}

func TestJaccardWordsEmpty(t *testing.T) {
	if sim := JaccardWords("", "react"); sim != 0 {
		t.Errorf("Expected empty text to have overlap 0, got %.3f", sim)
	}
}

func TestJaccardStringsCaseInsensitive(t *testing.T) {
	sim := JaccardStrings([]string{"React", "Testing"}, []string{"react"})
	expected := 1.0 / 2.0
	if math.Abs(sim-expected) > 1e-9 {
		t.Errorf("Expected overlap %.3f, got %.3f", expected, sim)
	}
}

func TestNormalizeCollapsesWhitespace(t *testing.T) {
	got := Normalize("  React   Hooks\n\nTutorial ")
	want := "react hooks tutorial"
	if got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}

func TestHashStableAcrossFormatting(t *testing.T) {
	a := Hash("React Hooks Tutorial")
	b := Hash("  react   hooks tutorial ")
	if a != b {
		t.Error("Expected equal hashes for texts that normalize identically")
	}

	c := Hash("something else entirely")
	if a == c {
		t.Error("Expected different hashes for different content")
	}
}

func TestStripHTMLRemovesMarkup(t *testing.T) {
	stripped := StripHTML("<html><body><script>evil()</script><p>Real content here</p></body></html>")
	if stripped == "" {
		t.Fatal("Expected stripped text, got empty string")
	}
	if strings.Contains(stripped, "evil") {
		t.Error("Expected script contents to be removed")
	}
	if !strings.Contains(stripped, "Real content here") {
		t.Errorf("Expected body text to survive stripping, got %q", stripped)
	}
}

func TestStripHTMLPassesPlainText(t *testing.T) {
	plain := "Just a plain sentence about react."
	if got := StripHTML(plain); got != plain {
		t.Errorf("Expected plain text unchanged, got %q", got)
	}
}

func TestIntersection(t *testing.T) {
	shared := Intersection([]string{"React", "testing", "hooks"}, []string{"TESTING", "react"})
	if len(shared) != 2 {
		t.Fatalf("Expected 2 shared members, got %d: %v", len(shared), shared)
	}
	if shared[0] != "react" || shared[1] != "testing" {
		t.Errorf("Expected order to follow the first slice, got %v", shared)
	}
}

func TestContainsAny(t *testing.T) {
	if !ContainsAny("Building with Node.js and Express", []string{"node"}) {
		t.Error("Expected substring match for 'node'")
	}
	if ContainsAny("Building with Rust", []string{"node", "react"}) {
		t.Error("Expected no match for unrelated keywords")
	}
}

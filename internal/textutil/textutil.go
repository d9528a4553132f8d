package textutil

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var whitespaceRegex = regexp.MustCompile(`\s+`)

// StripHTML removes markup from body text that arrives from the ingestion
// pipeline still carrying HTML. Non-content elements are dropped entirely;
// plain text passes through unchanged.
func StripHTML(text string) string {
	if !strings.Contains(text, "<") {
		return text
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(text))
	if err != nil {
		return text
	}

	doc.Find("script, style, nav, footer, header, aside, form, iframe, noscript").Remove()

	stripped := doc.Text()
	if strings.TrimSpace(stripped) == "" {
		return text
	}
	return stripped
}

// Normalize lower-cases text, strips markup, and collapses whitespace so
// that equal content produces equal normalized blobs (and equal hashes).
func Normalize(text string) string {
	text = StripHTML(text)
	text = strings.ToLower(text)
	text = whitespaceRegex.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// Hash returns the hex SHA-256 of the normalized text, used as the cache
// key for embeddings and similarity records.
func Hash(text string) string {
	sum := sha256.Sum256([]byte(Normalize(text)))
	return hex.EncodeToString(sum[:])
}

var wordRegex = regexp.MustCompile(`[^\w\s]`)

// Words tokenizes text into lower-cased words longer than two characters,
// the unit used for diversity and overlap comparisons.
func Words(text string) []string {
	cleaned := wordRegex.ReplaceAllString(strings.ToLower(text), " ")

	var words []string
	for _, w := range strings.Fields(cleaned) {
		if len(w) > 2 {
			words = append(words, w)
		}
	}
	return words
}

// WordSet returns the distinct words of a text as a set.
func WordSet(text string) map[string]bool {
	set := make(map[string]bool)
	for _, w := range Words(text) {
		set[w] = true
	}
	return set
}

// JaccardWords computes the Jaccard index of the word sets of two texts.
// Returns 0 when either text has no usable words.
func JaccardWords(a, b string) float64 {
	return JaccardSets(WordSet(a), WordSet(b))
}

// JaccardStrings computes the Jaccard index over two string slices,
// lower-casing and de-duplicating members first. Used for topic-tag overlap.
func JaccardStrings(a, b []string) float64 {
	setA := make(map[string]bool, len(a))
	for _, s := range a {
		setA[strings.ToLower(strings.TrimSpace(s))] = true
	}
	setB := make(map[string]bool, len(b))
	for _, s := range b {
		setB[strings.ToLower(strings.TrimSpace(s))] = true
	}
	delete(setA, "")
	delete(setB, "")
	return JaccardSets(setA, setB)
}

// JaccardSets computes |A∩B| / |A∪B| for two sets. Two empty sets have
// zero overlap, not full overlap.
func JaccardSets(a, b map[string]bool) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	intersection := 0
	for w := range a {
		if b[w] {
			intersection++
		}
	}

	union := len(a) + len(b) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

// Intersection returns the lower-cased members present in both slices, in
// the order they appear in a.
func Intersection(a, b []string) []string {
	setB := make(map[string]bool, len(b))
	for _, s := range b {
		setB[strings.ToLower(strings.TrimSpace(s))] = true
	}

	seen := make(map[string]bool)
	var shared []string
	for _, s := range a {
		key := strings.ToLower(strings.TrimSpace(s))
		if key != "" && setB[key] && !seen[key] {
			seen[key] = true
			shared = append(shared, key)
		}
	}
	return shared
}

// ContainsAny reports whether any of the keywords appears as a substring of
// the lower-cased text.
func ContainsAny(text string, keywords []string) bool {
	text = strings.ToLower(text)
	for _, kw := range keywords {
		if kw != "" && strings.Contains(text, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

// CountMatches returns how many of the keywords appear as substrings of the
// lower-cased text.
func CountMatches(text string, keywords []string) int {
	text = strings.ToLower(text)
	count := 0
	for _, kw := range keywords {
		if kw != "" && strings.Contains(text, strings.ToLower(kw)) {
			count++
		}
	}
	return count
}

package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// defaultSynonyms widens keyword matching during relevance scoring. The
// table is configuration, not logic: a deployment replaces it wholesale via
// scoring.synonyms_file without touching the scorer.
var defaultSynonyms = map[string][]string{
	"javascript":              {"js", "node", "nodejs", "ecmascript"},
	"typescript":              {"ts"},
	"python":                  {"py"},
	"golang":                  {"go"},
	"kubernetes":              {"k8s"},
	"postgres":                {"postgresql", "pg"},
	"react":                   {"reactjs", "react.js"},
	"vue":                     {"vuejs", "vue.js"},
	"machine learning":        {"ml"},
	"artificial intelligence": {"ai"},
	"continuous integration":  {"ci", "ci/cd"},
	"infrastructure":          {"infra"},
	"database":                {"db"},
	"frontend":                {"front-end", "front end"},
	"backend":                 {"back-end", "back end"},
}

// synonymsFile is the YAML shape of an external synonym table.
type synonymsFile struct {
	Synonyms map[string][]string `yaml:"synonyms"`
}

// resolveSynonyms populates config.Scoring.Synonyms from the configured
// file, falling back to the built-in table.
func resolveSynonyms(config *Config) error {
	path := config.Scoring.SynonymsFile
	if path == "" {
		config.Scoring.Synonyms = normalizeSynonyms(defaultSynonyms)
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read synonyms file %s: %w", path, err)
	}

	var parsed synonymsFile
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("failed to parse synonyms file %s: %w", path, err)
	}
	if len(parsed.Synonyms) == 0 {
		return fmt.Errorf("synonyms file %s contains no entries", path)
	}

	config.Scoring.Synonyms = normalizeSynonyms(parsed.Synonyms)
	return nil
}

// normalizeSynonyms lower-cases keys and values so lookups never depend on
// the casing of the source table.
func normalizeSynonyms(table map[string][]string) map[string][]string {
	normalized := make(map[string][]string, len(table))
	for keyword, alts := range table {
		key := strings.ToLower(strings.TrimSpace(keyword))
		if key == "" {
			continue
		}
		cleaned := make([]string, 0, len(alts))
		for _, alt := range alts {
			if alt = strings.ToLower(strings.TrimSpace(alt)); alt != "" {
				cleaned = append(cleaned, alt)
			}
		}
		normalized[key] = cleaned
	}
	return normalized
}

// ExpandKeyword returns the keyword plus all of its configured synonyms.
// Matching any member counts as matching the keyword.
func (s Scoring) ExpandKeyword(keyword string) []string {
	keyword = strings.ToLower(strings.TrimSpace(keyword))
	if keyword == "" {
		return nil
	}

	expanded := []string{keyword}
	if alts, ok := s.Synonyms[keyword]; ok {
		expanded = append(expanded, alts...)
	}

	// Reverse lookup: the keyword may itself be a synonym of a canonical
	// entry ("js" should still match "javascript" content).
	for canonical, alts := range s.Synonyms {
		for _, alt := range alts {
			if alt == keyword {
				expanded = append(expanded, canonical)
				expanded = append(expanded, s.Synonyms[canonical]...)
			}
		}
	}

	seen := make(map[string]bool, len(expanded))
	var unique []string
	for _, kw := range expanded {
		if !seen[kw] {
			seen[kw] = true
			unique = append(unique, kw)
		}
	}
	return unique
}

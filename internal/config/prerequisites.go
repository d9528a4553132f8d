package config

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/forthing17-ops/signalcast-sub000/internal/core"
	"gopkg.in/yaml.v3"
)

// ErrCyclicPrerequisites is returned when the configured prerequisite graph
// contains a cycle. The engine refuses to start with a cyclic graph because
// learning-path ordering assumes a DAG.
type ErrCyclicPrerequisites struct {
	Cycle []string
}

func (e *ErrCyclicPrerequisites) Error() string {
	return fmt.Sprintf("prerequisite graph contains a cycle: %s", strings.Join(e.Cycle, " -> "))
}

// Prerequisites is the immutable, versioned topic-prerequisite graph.
// Loaded once at process start and injected into the gap analyzer; never a
// mutable global.
type Prerequisites struct {
	Version string
	byTopic map[string]core.TopicPrerequisite
	fanIn   map[string]int // How many topics list the key as a prerequisite
}

// prerequisitesFile is the YAML shape of an external graph definition.
type prerequisitesFile struct {
	Version string                   `yaml:"version"`
	Topics  []core.TopicPrerequisite `yaml:"topics"`
}

// defaultPrerequisites is the curated graph the engine ships with.
// Deployments extend it via gaps.prerequisites_file.
var defaultPrerequisites = []core.TopicPrerequisite{
	{Topic: "html", Prerequisites: nil, Difficulty: core.DepthBeginner, Importance: 0.9},
	{Topic: "css", Prerequisites: []string{"html"}, Difficulty: core.DepthBeginner, Importance: 0.8},
	{Topic: "javascript", Prerequisites: []string{"html"}, Difficulty: core.DepthBeginner, Importance: 0.9},
	{Topic: "typescript", Prerequisites: []string{"javascript"}, Difficulty: core.DepthIntermediate, Importance: 0.7},
	{Topic: "react", Prerequisites: []string{"javascript", "html", "css"}, Difficulty: core.DepthIntermediate, Importance: 0.8},
	{Topic: "nextjs", Prerequisites: []string{"react"}, Difficulty: core.DepthAdvanced, Importance: 0.6},
	{Topic: "nodejs", Prerequisites: []string{"javascript"}, Difficulty: core.DepthIntermediate, Importance: 0.8},
	{Topic: "express", Prerequisites: []string{"nodejs"}, Difficulty: core.DepthIntermediate, Importance: 0.5},
	{Topic: "sql", Prerequisites: nil, Difficulty: core.DepthBeginner, Importance: 0.9},
	{Topic: "postgres", Prerequisites: []string{"sql"}, Difficulty: core.DepthIntermediate, Importance: 0.7},
	{Topic: "docker", Prerequisites: []string{"linux"}, Difficulty: core.DepthIntermediate, Importance: 0.8},
	{Topic: "kubernetes", Prerequisites: []string{"docker"}, Difficulty: core.DepthAdvanced, Importance: 0.7},
	{Topic: "linux", Prerequisites: nil, Difficulty: core.DepthBeginner, Importance: 0.8},
	{Topic: "git", Prerequisites: nil, Difficulty: core.DepthBeginner, Importance: 0.9},
	{Topic: "python", Prerequisites: nil, Difficulty: core.DepthBeginner, Importance: 0.9},
	{Topic: "machine learning", Prerequisites: []string{"python", "statistics"}, Difficulty: core.DepthAdvanced, Importance: 0.7},
	{Topic: "statistics", Prerequisites: nil, Difficulty: core.DepthIntermediate, Importance: 0.8},
	{Topic: "data engineering", Prerequisites: []string{"sql", "python"}, Difficulty: core.DepthAdvanced, Importance: 0.6},
	{Topic: "testing", Prerequisites: nil, Difficulty: core.DepthBeginner, Importance: 0.8},
	{Topic: "ci/cd", Prerequisites: []string{"git", "testing"}, Difficulty: core.DepthIntermediate, Importance: 0.7},
	{Topic: "system design", Prerequisites: []string{"networking", "sql"}, Difficulty: core.DepthAdvanced, Importance: 0.8},
	{Topic: "networking", Prerequisites: nil, Difficulty: core.DepthIntermediate, Importance: 0.8},
	{Topic: "security", Prerequisites: []string{"networking", "linux"}, Difficulty: core.DepthAdvanced, Importance: 0.8},
	{Topic: "graphql", Prerequisites: []string{"javascript"}, Difficulty: core.DepthIntermediate, Importance: 0.5},
	{Topic: "rust", Prerequisites: nil, Difficulty: core.DepthAdvanced, Importance: 0.6},
	{Topic: "golang", Prerequisites: nil, Difficulty: core.DepthIntermediate, Importance: 0.7},
}

// LoadPrerequisites builds the prerequisite graph from the configured YAML
// file, falling back to the built-in curated graph. It fails fast on a
// cyclic graph.
func LoadPrerequisites(config *Config) (*Prerequisites, error) {
	topics := defaultPrerequisites
	version := "builtin"

	if path := config.Gaps.PrerequisitesFile; path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read prerequisites file %s: %w", path, err)
		}

		var parsed prerequisitesFile
		if err := yaml.Unmarshal(data, &parsed); err != nil {
			return nil, fmt.Errorf("failed to parse prerequisites file %s: %w", path, err)
		}
		if len(parsed.Topics) == 0 {
			return nil, fmt.Errorf("prerequisites file %s contains no topics", path)
		}

		topics = parsed.Topics
		version = parsed.Version
		if version == "" {
			version = path
		}
	}

	return NewPrerequisites(version, topics)
}

// NewPrerequisites builds and validates a graph from explicit records.
func NewPrerequisites(version string, topics []core.TopicPrerequisite) (*Prerequisites, error) {
	byTopic := make(map[string]core.TopicPrerequisite, len(topics))
	fanIn := make(map[string]int)

	for _, tp := range topics {
		name := strings.ToLower(strings.TrimSpace(tp.Topic))
		if name == "" {
			return nil, fmt.Errorf("prerequisite entry with empty topic name")
		}
		if _, exists := byTopic[name]; exists {
			return nil, fmt.Errorf("duplicate prerequisite entry for topic %q", name)
		}

		cleaned := tp
		cleaned.Topic = name
		cleaned.Prerequisites = nil
		for _, p := range tp.Prerequisites {
			if p = strings.ToLower(strings.TrimSpace(p)); p != "" && p != name {
				cleaned.Prerequisites = append(cleaned.Prerequisites, p)
				fanIn[p]++
			}
		}
		byTopic[name] = cleaned
	}

	prereqs := &Prerequisites{Version: version, byTopic: byTopic, fanIn: fanIn}
	if cycle := prereqs.findCycle(); cycle != nil {
		return nil, &ErrCyclicPrerequisites{Cycle: cycle}
	}
	return prereqs, nil
}

// Get returns the record for a topic. Unknown topics are valid: user
// interests may reference topics the curated graph has not covered yet, so
// they come back as leaf nodes with no prerequisites.
func (p *Prerequisites) Get(topic string) core.TopicPrerequisite {
	topic = strings.ToLower(strings.TrimSpace(topic))
	if tp, ok := p.byTopic[topic]; ok {
		return tp
	}
	return core.TopicPrerequisite{
		Topic:      topic,
		Difficulty: core.DepthBeginner,
		Importance: 0.5,
	}
}

// Known reports whether the topic has a curated entry.
func (p *Prerequisites) Known(topic string) bool {
	_, ok := p.byTopic[strings.ToLower(strings.TrimSpace(topic))]
	return ok
}

// DirectPrerequisites returns the immediate prerequisites of a topic.
func (p *Prerequisites) DirectPrerequisites(topic string) []string {
	return p.Get(topic).Prerequisites
}

// FanIn returns how many curated topics list the given topic as a
// prerequisite. Drives foundational-importance scoring.
func (p *Prerequisites) FanIn(topic string) int {
	return p.fanIn[strings.ToLower(strings.TrimSpace(topic))]
}

// Topics returns all curated topic names, sorted for deterministic walks.
func (p *Prerequisites) Topics() []string {
	names := make([]string, 0, len(p.byTopic))
	for name := range p.byTopic {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// TransitiveClosure returns the set of the given topics plus every
// prerequisite reachable from them.
func (p *Prerequisites) TransitiveClosure(topics []string) map[string]bool {
	closure := make(map[string]bool)
	var visit func(string)
	visit = func(topic string) {
		topic = strings.ToLower(strings.TrimSpace(topic))
		if topic == "" || closure[topic] {
			return
		}
		closure[topic] = true
		for _, prereq := range p.Get(topic).Prerequisites {
			visit(prereq)
		}
	}
	for _, topic := range topics {
		visit(topic)
	}
	return closure
}

// findCycle runs a depth-first search over the graph and returns one cycle
// if any exists.
func (p *Prerequisites) findCycle() []string {
	const (
		unvisited = 0
		inStack   = 1
		done      = 2
	)
	state := make(map[string]int, len(p.byTopic))

	var stack []string
	var cycle []string

	var visit func(string) bool
	visit = func(topic string) bool {
		state[topic] = inStack
		stack = append(stack, topic)

		for _, prereq := range p.Get(topic).Prerequisites {
			switch state[prereq] {
			case inStack:
				// Slice the current stack from the repeated node to close the loop.
				for i, name := range stack {
					if name == prereq {
						cycle = append(append([]string{}, stack[i:]...), prereq)
						return true
					}
				}
			case unvisited:
				if visit(prereq) {
					return true
				}
			}
		}

		stack = stack[:len(stack)-1]
		state[topic] = done
		return false
	}

	for _, topic := range p.Topics() {
		if state[topic] == unvisited {
			if visit(topic) {
				return cycle
			}
		}
	}
	return nil
}

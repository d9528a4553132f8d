package config

import (
	"errors"
	"testing"

	"github.com/forthing17-ops/signalcast-sub000/internal/core"
)

func TestNewPrerequisitesRejectsCycle(t *testing.T) {
	_, err := NewPrerequisites("test", []core.TopicPrerequisite{
		{Topic: "a", Prerequisites: []string{"b"}},
		{Topic: "b", Prerequisites: []string{"c"}},
		{Topic: "c", Prerequisites: []string{"a"}},
	})
	if err == nil {
		t.Fatal("Expected cyclic graph to be rejected at load time")
	}

	var cyclic *ErrCyclicPrerequisites
	if !errors.As(err, &cyclic) {
		t.Fatalf("Expected ErrCyclicPrerequisites, got %v", err)
	}
	if len(cyclic.Cycle) < 3 {
		t.Errorf("Expected the cycle to be reported, got %v", cyclic.Cycle)
	}
}

func TestNewPrerequisitesRejectsDuplicates(t *testing.T) {
	_, err := NewPrerequisites("test", []core.TopicPrerequisite{
		{Topic: "react"},
		{Topic: "React"},
	})
	if err == nil {
		t.Fatal("Expected duplicate topic entries to be rejected")
	}
}

func TestGetUnknownTopicIsLeaf(t *testing.T) {
	prereqs, err := NewPrerequisites("test", []core.TopicPrerequisite{
		{Topic: "react", Prerequisites: []string{"javascript"}, Importance: 0.8},
	})
	if err != nil {
		t.Fatalf("Failed to build graph: %v", err)
	}

	// User interests may reference topics the curated graph has not covered.
	unknown := prereqs.Get("quantum computing")
	if len(unknown.Prerequisites) != 0 {
		t.Errorf("Expected unknown topic to be a leaf, got prerequisites %v", unknown.Prerequisites)
	}
	if prereqs.Known("quantum computing") {
		t.Error("Expected unknown topic to be reported as not curated")
	}
}

func TestFanInCounts(t *testing.T) {
	prereqs, err := NewPrerequisites("test", []core.TopicPrerequisite{
		{Topic: "javascript", Prerequisites: []string{"html"}},
		{Topic: "css", Prerequisites: []string{"html"}},
		{Topic: "react", Prerequisites: []string{"javascript", "html", "css"}},
	})
	if err != nil {
		t.Fatalf("Failed to build graph: %v", err)
	}

	if got := prereqs.FanIn("html"); got != 3 {
		t.Errorf("Expected html fan-in 3, got %d", got)
	}
	if got := prereqs.FanIn("react"); got != 0 {
		t.Errorf("Expected react fan-in 0, got %d", got)
	}
}

func TestTransitiveClosure(t *testing.T) {
	prereqs, err := NewPrerequisites("test", []core.TopicPrerequisite{
		{Topic: "javascript", Prerequisites: []string{"html"}},
		{Topic: "react", Prerequisites: []string{"javascript", "css"}},
		{Topic: "css", Prerequisites: []string{"html"}},
	})
	if err != nil {
		t.Fatalf("Failed to build graph: %v", err)
	}

	closure := prereqs.TransitiveClosure([]string{"react"})
	for _, topic := range []string{"react", "javascript", "css", "html"} {
		if !closure[topic] {
			t.Errorf("Expected %q in transitive closure, got %v", topic, closure)
		}
	}
	if len(closure) != 4 {
		t.Errorf("Expected closure of size 4, got %d", len(closure))
	}
}

func TestBuiltinGraphIsAcyclic(t *testing.T) {
	if _, err := NewPrerequisites("builtin", defaultPrerequisites); err != nil {
		t.Fatalf("Built-in prerequisite graph failed validation: %v", err)
	}
}

package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/forthing17-ops/signalcast-sub000/internal/core"
)

// loadJSON reads one JSON fixture into the given target.
func loadJSON(path string, target any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, target); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}

// loadItems reads a JSON array of content items.
func loadItems(path string) ([]core.ContentItem, error) {
	var items []core.ContentItem
	if err := loadJSON(path, &items); err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("%s contains no content items", path)
	}
	for i, item := range items {
		if item.ID == "" {
			return nil, fmt.Errorf("%s: item %d has no id", path, i)
		}
	}
	return items, nil
}

// loadProfile reads a JSON user profile.
func loadProfile(path string) (core.UserProfile, error) {
	var profile core.UserProfile
	if err := loadJSON(path, &profile); err != nil {
		return core.UserProfile{}, err
	}
	if profile.UserID == "" {
		return core.UserProfile{}, fmt.Errorf("%s: profile has no user_id", path)
	}
	return profile, nil
}

// loadInteractions reads a JSON array of interactions.
func loadInteractions(path string) ([]core.Interaction, error) {
	var interactions []core.Interaction
	if err := loadJSON(path, &interactions); err != nil {
		return nil, err
	}
	if len(interactions) == 0 {
		return nil, fmt.Errorf("%s contains no interactions", path)
	}
	return interactions, nil
}

// printJSON writes any value as indented JSON to stdout.
func printJSON(value any) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

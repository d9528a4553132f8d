package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/forthing17-ops/signalcast-sub000/internal/config"
	"github.com/forthing17-ops/signalcast-sub000/internal/logger"
	"github.com/forthing17-ops/signalcast-sub000/internal/render"
	"github.com/forthing17-ops/signalcast-sub000/internal/similarity"
	"github.com/spf13/cobra"
)

var (
	relItemsFile  string
	relSave       bool
	relJSONOutput bool
)

var relationshipsCmd = &cobra.Command{
	Use:   "relationships",
	Short: "Discover relationships between content items",
	Long: `Relationships compares every viable pair in a JSON array of content
items, classifies how they relate (builds on, prerequisite, related,
contrasts), clusters them by topic, orders them into a reading path, and
surfaces cross-domain connections.

Pairs are compared by embedding when the Gemini provider is configured and
fall back to topic overlap when it is not. Pairwise similarities are cached
in the local store, so re-running over overlapping item sets is cheap.`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := runRelationships(cmd.Context()); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(relationshipsCmd)

	relationshipsCmd.Flags().StringVar(&relItemsFile, "items", "", "JSON file with content items (required)")
	relationshipsCmd.Flags().BoolVar(&relSave, "save", false, "persist discovered relationships to the local store")
	relationshipsCmd.Flags().BoolVar(&relJSONOutput, "json", false, "emit raw JSON instead of the rendered report")
	relationshipsCmd.MarkFlagRequired("items")
}

func runRelationships(ctx context.Context) error {
	items, err := loadItems(relItemsFile)
	if err != nil {
		return err
	}

	db, err := openStore()
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer db.Close()

	engine := similarity.NewEngine(config.Get().Similarity, embeddingProvider(), db)
	analysis, err := engine.Analyze(ctx, items)
	if err != nil {
		return fmt.Errorf("relationship analysis failed: %w", err)
	}

	logger.Info("analyzed relationships",
		"items", len(items),
		"relationships", len(analysis.Relationships),
		"clusters", len(analysis.Clusters),
		"cross_domain", len(analysis.CrossDomain))

	if relSave {
		for _, rel := range analysis.Relationships {
			if err := db.PutRelationship(rel); err != nil {
				return fmt.Errorf("failed to save relationship %s: %w", rel.ID, err)
			}
		}
		fmt.Printf("Saved %d relationships.\n", len(analysis.Relationships))
	}

	if relJSONOutput {
		return printJSON(analysis)
	}
	fmt.Print(render.RenderRelationshipAnalysis(analysis, items))
	return nil
}

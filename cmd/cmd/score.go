package cmd

import (
	"fmt"
	"os"

	"github.com/forthing17-ops/signalcast-sub000/internal/config"
	"github.com/forthing17-ops/signalcast-sub000/internal/logger"
	"github.com/forthing17-ops/signalcast-sub000/internal/render"
	"github.com/forthing17-ops/signalcast-sub000/internal/scoring"
	"github.com/spf13/cobra"
)

var (
	scoreItemsFile   string
	scoreProfileFile string
	scoreJSONOutput  bool
	scoreWRelevance  float64
	scoreWQuality    float64
	scoreWRecency    float64
	scoreWDiversity  float64
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Score content items against a user profile",
	Long: `Score reads a JSON array of content items and a JSON user profile,
scores every item on relevance, quality, recency, and diversity, and prints
the results ranked highest first.

Weight overrides shift the balance between factors; overrides are
re-normalized so the weights always sum to 1.`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := runScore(cmd); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(scoreCmd)

	scoreCmd.Flags().StringVar(&scoreItemsFile, "items", "", "JSON file with content items (required)")
	scoreCmd.Flags().StringVar(&scoreProfileFile, "profile", "", "JSON file with the user profile (required)")
	scoreCmd.Flags().BoolVar(&scoreJSONOutput, "json", false, "emit raw JSON instead of the rendered table")
	scoreCmd.Flags().Float64Var(&scoreWRelevance, "weight-relevance", 0, "relevance weight override")
	scoreCmd.Flags().Float64Var(&scoreWQuality, "weight-quality", 0, "quality weight override")
	scoreCmd.Flags().Float64Var(&scoreWRecency, "weight-recency", 0, "recency weight override")
	scoreCmd.Flags().Float64Var(&scoreWDiversity, "weight-diversity", 0, "diversity weight override")
	scoreCmd.MarkFlagRequired("items")
	scoreCmd.MarkFlagRequired("profile")
}

func runScore(cmd *cobra.Command) error {
	items, err := loadItems(scoreItemsFile)
	if err != nil {
		return err
	}
	profile, err := loadProfile(scoreProfileFile)
	if err != nil {
		return err
	}

	scorer := scoring.NewScorer(config.Get().Scoring)

	override := scoring.Weights{
		Relevance: scoreWRelevance,
		Quality:   scoreWQuality,
		Recency:   scoreWRecency,
		Diversity: scoreWDiversity,
	}
	hasOverride := scoreWRelevance+scoreWQuality+scoreWRecency+scoreWDiversity > 0

	var scores []scoring.Score
	if hasOverride {
		scores = make([]scoring.Score, 0, len(items))
		for i, item := range items {
			scores = append(scores, scorer.ScoreWithWeights(item, profile, items[:i], override))
		}
	} else {
		scores = scorer.ScoreBatch(items, profile)
	}

	logger.Info("scored content batch", "user", profile.UserID, "items", len(items), "override", hasOverride)

	if scoreJSONOutput {
		return printJSON(scores)
	}
	fmt.Print(render.RenderScores(scores, items))
	return nil
}

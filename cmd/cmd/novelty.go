package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/forthing17-ops/signalcast-sub000/internal/config"
	"github.com/forthing17-ops/signalcast-sub000/internal/core"
	"github.com/forthing17-ops/signalcast-sub000/internal/logger"
	"github.com/forthing17-ops/signalcast-sub000/internal/novelty"
	"github.com/forthing17-ops/signalcast-sub000/internal/render"
	"github.com/forthing17-ops/signalcast-sub000/internal/similarity"
	"github.com/forthing17-ops/signalcast-sub000/internal/store"
	"github.com/spf13/cobra"
)

var (
	noveltyUserID         string
	noveltyCandidatesFile string
	noveltyDeliveredFile  string
	noveltyPreference     float64
	noveltyItemsFile      string
	noveltyJSONOutput     bool
)

var noveltyCmd = &cobra.Command{
	Use:   "novelty",
	Short: "Filter repetitive content against the delivery history",
}

var noveltyCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Check candidate items for repetition",
	Long: `Check compares each candidate item against content already delivered to
the user and flags candidates too similar to something they have seen. The
similarity threshold tightens as the user's novelty preference rises.

Delivered items come from a JSON file when --delivered is given; otherwise
the delivery log in the local store decides which of the candidate file's
items count as already seen.`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := runNoveltyCheck(cmd.Context()); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

var noveltyMarkCmd = &cobra.Command{
	Use:   "mark",
	Short: "Mark content items as delivered to a user",
	Run: func(cmd *cobra.Command, args []string) {
		if err := runNoveltyMark(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(noveltyCmd)
	noveltyCmd.AddCommand(noveltyCheckCmd)
	noveltyCmd.AddCommand(noveltyMarkCmd)

	noveltyCmd.PersistentFlags().StringVar(&noveltyUserID, "user", "", "user ID (required)")
	noveltyCmd.MarkPersistentFlagRequired("user")

	noveltyCheckCmd.Flags().StringVar(&noveltyCandidatesFile, "candidates", "", "JSON file with candidate items (required)")
	noveltyCheckCmd.Flags().StringVar(&noveltyDeliveredFile, "delivered", "", "JSON file with already-delivered items (default: delivery log)")
	noveltyCheckCmd.Flags().Float64Var(&noveltyPreference, "novelty", 0.5, "novelty preference, 0 (lenient) to 1 (strict)")
	noveltyCheckCmd.Flags().BoolVar(&noveltyJSONOutput, "json", false, "emit raw JSON instead of the rendered verdicts")
	noveltyCheckCmd.MarkFlagRequired("candidates")

	noveltyMarkCmd.Flags().StringVar(&noveltyItemsFile, "items", "", "JSON file with the delivered items (required)")
	noveltyMarkCmd.MarkFlagRequired("items")
}

func runNoveltyCheck(ctx context.Context) error {
	candidates, err := loadItems(noveltyCandidatesFile)
	if err != nil {
		return err
	}

	db, err := openStore()
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer db.Close()

	var delivered []core.ContentItem
	var deliveries store.DeliveryLog = db
	if noveltyDeliveredFile != "" {
		delivered, err = loadItems(noveltyDeliveredFile)
		if err != nil {
			return err
		}
		// A delivered file overrides the persisted log entirely.
		log := store.NewMemoryStore()
		for _, item := range delivered {
			if err := log.MarkDelivered(noveltyUserID, item.ID); err != nil {
				return err
			}
		}
		deliveries = log
	} else {
		// The delivery log only stores IDs, so previously delivered
		// candidates stand in for their own history.
		deliveredIDs, err := db.ListDelivered(noveltyUserID)
		if err != nil {
			return fmt.Errorf("failed to list delivered content: %w", err)
		}
		seen := make(map[string]bool, len(deliveredIDs))
		for _, id := range deliveredIDs {
			seen[id] = true
		}
		for _, item := range candidates {
			if seen[item.ID] {
				delivered = append(delivered, item)
			}
		}
	}

	cfg := config.Get()
	engine := similarity.NewEngine(cfg.Similarity, embeddingProvider(), db)
	filter := novelty.NewFilter(cfg.Novelty, engine, deliveries)

	verdicts := make([]core.RepetitionVerdict, 0, len(candidates))
	blocked := 0
	for _, candidate := range candidates {
		verdict, err := filter.IsRepetitive(ctx, candidate, noveltyUserID, noveltyPreference, delivered)
		if err != nil {
			return fmt.Errorf("repetition check failed for %s: %w", candidate.ID, err)
		}
		if verdict.IsRepetitive {
			blocked++
		}
		verdicts = append(verdicts, verdict)
	}

	logger.Info("checked novelty", "user", noveltyUserID, "candidates", len(candidates), "blocked", blocked)

	if noveltyJSONOutput {
		return printJSON(verdicts)
	}
	fmt.Print(render.RenderVerdicts(verdicts, candidates))
	return nil
}

func runNoveltyMark() error {
	items, err := loadItems(noveltyItemsFile)
	if err != nil {
		return err
	}

	db, err := openStore()
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer db.Close()

	for _, item := range items {
		if err := db.MarkDelivered(noveltyUserID, item.ID); err != nil {
			return fmt.Errorf("failed to mark %s delivered: %w", item.ID, err)
		}
	}

	fmt.Printf("Marked %d items delivered to %s.\n", len(items), noveltyUserID)
	return nil
}

package cmd

import (
	"fmt"
	"os"

	"github.com/forthing17-ops/signalcast-sub000/internal/config"
	"github.com/forthing17-ops/signalcast-sub000/internal/knowledge"
	"github.com/forthing17-ops/signalcast-sub000/internal/logger"
	"github.com/forthing17-ops/signalcast-sub000/internal/render"
	"github.com/spf13/cobra"
)

var (
	progressUserID           string
	progressInteractionsFile string
	progressJSONOutput       bool
)

var progressCmd = &cobra.Command{
	Use:   "progress",
	Short: "Track and inspect per-topic knowledge state",
}

var progressRecordCmd = &cobra.Command{
	Use:   "record",
	Short: "Record content interactions for a user",
	Long: `Record reads a JSON array of interactions and applies each one to the
user's per-topic knowledge state. Confidence moves with interaction quality;
depth advances once confidence and interaction count clear the tier
thresholds.`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := runProgressRecord(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

var progressShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show a user's knowledge states and progression",
	Run: func(cmd *cobra.Command, args []string) {
		if err := runProgressShow(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(progressCmd)
	progressCmd.AddCommand(progressRecordCmd)
	progressCmd.AddCommand(progressShowCmd)

	progressCmd.PersistentFlags().StringVar(&progressUserID, "user", "", "user ID (required)")
	progressCmd.MarkPersistentFlagRequired("user")
	progressRecordCmd.Flags().StringVar(&progressInteractionsFile, "interactions", "", "JSON file with interactions (required)")
	progressRecordCmd.MarkFlagRequired("interactions")
	progressShowCmd.Flags().BoolVar(&progressJSONOutput, "json", false, "emit raw JSON instead of the rendered table")
}

func runProgressRecord() error {
	interactions, err := loadInteractions(progressInteractionsFile)
	if err != nil {
		return err
	}

	db, err := openStore()
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer db.Close()

	tracker := knowledge.NewTracker(config.Get().Knowledge, db)

	updated := 0
	for _, interaction := range interactions {
		states, err := tracker.RecordInteraction(progressUserID, interaction)
		if err != nil {
			return fmt.Errorf("failed to record interaction for %s: %w", interaction.ContentID, err)
		}
		updated += len(states)
	}

	logger.Info("recorded interactions", "user", progressUserID, "interactions", len(interactions), "states_touched", updated)
	fmt.Printf("Recorded %d interactions for %s (%d topic states touched).\n", len(interactions), progressUserID, updated)
	return nil
}

func runProgressShow() error {
	db, err := openStore()
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer db.Close()

	states, err := db.ListStates(progressUserID)
	if err != nil {
		return fmt.Errorf("failed to list knowledge states: %w", err)
	}

	tracker := knowledge.NewTracker(config.Get().Knowledge, db)

	rows := make([]render.KnowledgeRow, 0, len(states))
	for _, state := range states {
		canProgress, next := tracker.CanProgress(state)
		rows = append(rows, render.KnowledgeRow{
			State:       state,
			Progression: tracker.Progression(state),
			CanProgress: canProgress,
			NextDepth:   next,
		})
	}

	if progressJSONOutput {
		return printJSON(rows)
	}
	fmt.Print(render.RenderKnowledgeStates(progressUserID, rows))
	return nil
}

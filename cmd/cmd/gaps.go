package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/forthing17-ops/signalcast-sub000/internal/config"
	"github.com/forthing17-ops/signalcast-sub000/internal/core"
	"github.com/forthing17-ops/signalcast-sub000/internal/gaps"
	"github.com/forthing17-ops/signalcast-sub000/internal/logger"
	"github.com/forthing17-ops/signalcast-sub000/internal/render"
	"github.com/forthing17-ops/signalcast-sub000/internal/tui"
	"github.com/spf13/cobra"
)

var (
	gapsUserID      string
	gapsProfileFile string
	gapsStatesFile  string
	gapsReportDir   string
	gapsUseTUI      bool
	gapsJSONOutput  bool
)

var gapsCmd = &cobra.Command{
	Use:   "gaps",
	Short: "Analyze a user's knowledge gaps against the prerequisite graph",
	Long: `Gaps compares the user's knowledge states and declared interests against
the topic prerequisite graph. It reports missing foundations, shallow and
outdated knowledge, and untouched interests, with a topologically ordered
learning path for closing them.

Knowledge states come from the local store by default; --states reads them
from a JSON file instead.`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := runGaps(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(gapsCmd)

	gapsCmd.Flags().StringVar(&gapsUserID, "user", "", "user ID (required)")
	gapsCmd.Flags().StringVar(&gapsProfileFile, "profile", "", "JSON file with the user profile (required)")
	gapsCmd.Flags().StringVar(&gapsStatesFile, "states", "", "JSON file with knowledge states (default: local store)")
	gapsCmd.Flags().StringVar(&gapsReportDir, "report", "", "write a markdown gap report to this directory")
	gapsCmd.Flags().BoolVar(&gapsUseTUI, "tui", false, "browse the gaps in an interactive terminal UI")
	gapsCmd.Flags().BoolVar(&gapsJSONOutput, "json", false, "emit raw JSON instead of the rendered report")
	gapsCmd.MarkFlagRequired("user")
	gapsCmd.MarkFlagRequired("profile")
}

func runGaps() error {
	profile, err := loadProfile(gapsProfileFile)
	if err != nil {
		return err
	}

	states, err := loadOrFetchStates()
	if err != nil {
		return err
	}

	cfg := config.Get()
	prereqs, err := config.LoadPrerequisites(cfg)
	if err != nil {
		return fmt.Errorf("failed to load prerequisite graph: %w", err)
	}

	analyzer := gaps.NewAnalyzer(cfg.Gaps, prereqs)
	result, err := analyzer.Analyze(gapsUserID, states, profile)
	if err != nil {
		return fmt.Errorf("gap analysis failed: %w", err)
	}

	logger.Info("analyzed knowledge gaps", "user", gapsUserID, "states", len(states), "gaps", len(result.Gaps))

	if gapsReportDir != "" {
		path, err := render.WriteGapReport(result, gapsReportDir)
		if err != nil {
			return fmt.Errorf("failed to write gap report: %w", err)
		}
		fmt.Printf("Gap report written to %s\n", path)
	}

	if gapsUseTUI {
		tui.StartTUI(result)
		return nil
	}
	if gapsJSONOutput {
		return printJSON(result)
	}
	fmt.Print(render.RenderGapAnalysis(result))
	return nil
}

// loadOrFetchStates reads knowledge states from the --states file when
// given, otherwise from the local store.
func loadOrFetchStates() ([]core.KnowledgeState, error) {
	if gapsStatesFile != "" {
		data, err := os.ReadFile(gapsStatesFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", gapsStatesFile, err)
		}
		var states []core.KnowledgeState
		if err := json.Unmarshal(data, &states); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", gapsStatesFile, err)
		}
		return states, nil
	}

	db, err := openStore()
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	defer db.Close()
	return db.ListStates(gapsUserID)
}

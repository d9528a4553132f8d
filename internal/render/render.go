package render

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/forthing17-ops/signalcast-sub000/internal/core"
	"github.com/forthing17-ops/signalcast-sub000/internal/scoring"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	headerStyle  = lipgloss.NewStyle().Bold(true).Underline(true)
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	scoreStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	warnStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11"))
	noticeStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
	blockedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
)

var severityStyles = map[core.GapSeverity]lipgloss.Style{
	core.SeverityCritical: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9")),
	core.SeverityHigh:     lipgloss.NewStyle().Foreground(lipgloss.Color("208")),
	core.SeverityMedium:   lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
	core.SeverityLow:      dimStyle,
}

// RenderScores formats a scored batch for the terminal, highest score first.
func RenderScores(scores []scoring.Score, items []core.ContentItem) string {
	titleByID := make(map[string]string, len(items))
	for _, item := range items {
		titleByID[item.ID] = item.Title
	}

	ranked := append([]scoring.Score{}, scores...)
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Value > ranked[j].Value })

	var b strings.Builder
	b.WriteString(titleStyle.Render("Content Scores") + "\n\n")

	for i, score := range ranked {
		title := titleByID[score.ContentID]
		if title == "" {
			title = score.ContentID
		}
		b.WriteString(fmt.Sprintf("%2d. %s %s\n", i+1, scoreStyle.Render(fmt.Sprintf("%5.1f", score.Value)), title))
		b.WriteString("    " + dimStyle.Render(fmt.Sprintf(
			"relevance %.0f · quality %.0f · recency %.0f · diversity penalty %.0f",
			score.Factors["relevance"], score.Factors["quality"],
			score.Factors["recency"], score.Factors["diversity_penalty"])) + "\n")
		b.WriteString("    " + dimStyle.Render(score.Reasoning) + "\n")
	}

	if len(ranked) == 0 {
		b.WriteString(dimStyle.Render("No content to score.") + "\n")
	}
	return b.String()
}

// KnowledgeRow pairs a knowledge state with its derived progression values
// for display.
type KnowledgeRow struct {
	State       core.KnowledgeState
	Progression float64
	CanProgress bool
	NextDepth   core.KnowledgeDepth
}

// RenderKnowledgeStates formats a user's tracked topics for the terminal.
func RenderKnowledgeStates(userID string, rows []KnowledgeRow) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("Knowledge State · %s", userID)) + "\n\n")

	if len(rows) == 0 {
		b.WriteString(dimStyle.Render("No tracked topics yet.") + "\n")
		return b.String()
	}

	for _, row := range rows {
		status := dimStyle.Render(fmt.Sprintf("progression %.0f%%", row.Progression*100))
		if row.CanProgress {
			status = scoreStyle.Render(fmt.Sprintf("ready for %s", row.NextDepth))
		}
		b.WriteString(fmt.Sprintf("  %-24s %-12s conf %.2f  (%d items)  %s\n",
			row.State.Topic, row.State.KnowledgeDepth, row.State.ConfidenceLevel,
			row.State.ContentCount, status))
	}
	return b.String()
}

// RenderGapAnalysis formats a gap-analysis pass for the terminal.
func RenderGapAnalysis(result core.GapAnalysisResult) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("Knowledge Gaps · %s", result.UserID)) + "\n\n")

	if len(result.Gaps) == 0 {
		b.WriteString(scoreStyle.Render("No gaps detected.") + "\n")
		return b.String()
	}

	for _, severity := range []core.GapSeverity{core.SeverityCritical, core.SeverityHigh, core.SeverityMedium, core.SeverityLow} {
		if count := result.CountsBySeverity[severity]; count > 0 {
			b.WriteString(fmt.Sprintf("  %s: %d  ", severityStyles[severity].Render(string(severity)), count))
		}
	}
	b.WriteString("\n\n")

	for _, gap := range result.Gaps {
		style := severityStyles[gap.Severity]
		b.WriteString(fmt.Sprintf("  %s %s %s\n",
			style.Render(fmt.Sprintf("[%s]", gap.Severity)),
			headerStyle.Render(gap.Topic),
			dimStyle.Render(fmt.Sprintf("(%s, priority %.2f)", gap.Type, gap.Priority))))
		if len(gap.RelatedTopics) > 0 {
			b.WriteString("      " + dimStyle.Render("blocks: "+strings.Join(gap.RelatedTopics, ", ")) + "\n")
		}
		for _, suggestion := range gap.SuggestedContent {
			b.WriteString("      " + noticeStyle.Render("→ "+suggestion) + "\n")
		}
	}

	if len(result.LearningPath) > 0 {
		b.WriteString("\n" + headerStyle.Render("Learning path") + "\n")
		b.WriteString("  " + strings.Join(result.LearningPath, " → ") + "\n")
	}

	if len(result.RecommendedActions) > 0 {
		b.WriteString("\n" + headerStyle.Render("Recommended next steps") + "\n")
		for _, action := range result.RecommendedActions {
			b.WriteString("  • " + action + "\n")
		}
	}
	return b.String()
}

// RenderRelationshipAnalysis formats a relationship-discovery pass for the
// terminal.
func RenderRelationshipAnalysis(analysis core.RelationshipAnalysis, items []core.ContentItem) string {
	titleByID := make(map[string]string, len(items))
	for _, item := range items {
		titleByID[item.ID] = item.Title
	}
	label := func(id string) string {
		if title := titleByID[id]; title != "" {
			return title
		}
		return id
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Content Relationships") + "\n\n")

	if len(analysis.Relationships) == 0 {
		b.WriteString(dimStyle.Render("No relationships discovered.") + "\n")
	}
	for _, rel := range analysis.Relationships {
		b.WriteString(fmt.Sprintf("  %s %s %s %s\n",
			label(rel.ParentID),
			noticeStyle.Render(fmt.Sprintf("—%s→", rel.Type)),
			label(rel.ChildID),
			dimStyle.Render(fmt.Sprintf("(strength %.2f)", rel.Strength))))
	}

	if len(analysis.Clusters) > 0 {
		b.WriteString("\n" + headerStyle.Render("Clusters") + "\n")
		for _, cluster := range analysis.Clusters {
			b.WriteString(fmt.Sprintf("  %s: %d items, center %s, avg complexity %.2f\n",
				cluster.Topic, len(cluster.MemberIDs), label(cluster.CentralID), cluster.AvgComplexity))
		}
	}

	if len(analysis.LearningPath) > 0 {
		b.WriteString("\n" + headerStyle.Render("Reading order") + "\n")
		for i, id := range analysis.LearningPath {
			b.WriteString(fmt.Sprintf("  %d. %s\n", i+1, label(id)))
		}
	}

	if len(analysis.CrossDomain) > 0 {
		b.WriteString("\n" + headerStyle.Render("Cross-domain connections") + "\n")
		for _, conn := range analysis.CrossDomain {
			b.WriteString(fmt.Sprintf("  %s (%s) ↔ %s (%s): %s\n",
				label(conn.SourceID), conn.SourceDomain, label(conn.TargetID), conn.TargetDomain,
				warnStyle.Render(string(conn.Type))))
			if len(conn.BridgingConcepts) > 0 {
				b.WriteString("      " + dimStyle.Render("bridges: "+strings.Join(conn.BridgingConcepts, ", ")) + "\n")
			}
			b.WriteString("      " + dimStyle.Render(conn.Opportunity) + "\n")
			b.WriteString("      " + dimStyle.Render("synergy: "+conn.Synergy) + "\n")
			b.WriteString("      " + dimStyle.Render("risk: "+conn.Risk) + "\n")
		}
	}
	return b.String()
}

// RenderVerdicts formats anti-repetition decisions for the terminal.
func RenderVerdicts(verdicts []core.RepetitionVerdict, items []core.ContentItem) string {
	titleByID := make(map[string]string, len(items))
	for _, item := range items {
		titleByID[item.ID] = item.Title
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Repetition Check") + "\n\n")

	for _, verdict := range verdicts {
		title := titleByID[verdict.ContentID]
		if title == "" {
			title = verdict.ContentID
		}
		if verdict.IsRepetitive {
			b.WriteString(fmt.Sprintf("  %s %s %s\n",
				blockedStyle.Render("BLOCKED"), title,
				dimStyle.Render(fmt.Sprintf("(threshold %.2f)", verdict.ThresholdUsed))))
			for _, match := range verdict.Matches {
				matchTitle := titleByID[match.ContentID]
				if matchTitle == "" {
					matchTitle = match.ContentID
				}
				b.WriteString("      " + dimStyle.Render(fmt.Sprintf("%.0f%% similar to %s", match.Similarity*100, matchTitle)) + "\n")
			}
		} else {
			b.WriteString(fmt.Sprintf("  %s %s %s\n",
				scoreStyle.Render("FRESH  "), title,
				dimStyle.Render(fmt.Sprintf("(threshold %.2f)", verdict.ThresholdUsed))))
		}
	}
	return b.String()
}

// WriteGapReport creates a markdown gap-analysis report under outputDir and
// returns the file path.
func WriteGapReport(result core.GapAnalysisResult, outputDir string) (string, error) {
	dateStr := time.Now().UTC().Format("2006-01-02")
	filename := fmt.Sprintf("gaps_%s_%s.md", result.UserID, dateStr)

	if outputDir == "" {
		outputDir = "reports"
	}
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory %s: %w", outputDir, err)
	}

	filePath := filepath.Join(outputDir, filename)

	var md strings.Builder
	md.WriteString(fmt.Sprintf("# Knowledge Gap Report - %s\n\n", dateStr))
	md.WriteString(fmt.Sprintf("User: `%s`\n\n", result.UserID))

	if len(result.Gaps) == 0 {
		md.WriteString("No gaps detected.\n")
	} else {
		md.WriteString("## Gaps\n\n")
		md.WriteString("| Topic | Type | Severity | Priority | Blocks |\n")
		md.WriteString("|-------|------|----------|----------|--------|\n")
		for _, gap := range result.Gaps {
			md.WriteString(fmt.Sprintf("| %s | %s | %s | %.2f | %s |\n",
				gap.Topic, gap.Type, gap.Severity, gap.Priority, strings.Join(gap.RelatedTopics, ", ")))
		}
		md.WriteString("\n")

		if len(result.LearningPath) > 0 {
			md.WriteString("## Learning Path\n\n")
			for i, topic := range result.LearningPath {
				md.WriteString(fmt.Sprintf("%d. %s\n", i+1, topic))
			}
			md.WriteString("\n")
		}

		if len(result.RecommendedActions) > 0 {
			md.WriteString("## Recommended Actions\n\n")
			for _, action := range result.RecommendedActions {
				md.WriteString(fmt.Sprintf("- %s\n", action))
			}
			md.WriteString("\n")
		}
	}

	if err := os.WriteFile(filePath, []byte(md.String()), 0644); err != nil {
		return "", fmt.Errorf("failed to write report file %s: %w", filePath, err)
	}

	return filePath, nil
}

package tui

import (
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/forthing17-ops/signalcast-sub000/internal/core"
)

// model is the state of the gap-browser TUI: the gap list on the left, the
// selected gap's detail on the right.
type model struct {
	result      core.GapAnalysisResult
	selectedIdx int
	width       int
	height      int
	quitting    bool
}

// InitialModel returns the TUI model for one gap-analysis result.
func InitialModel(result core.GapAnalysisResult) model {
	return model{result: result}
}

// Init is the first command that will be run. We don't need any for now.
func (m model) Init() tea.Cmd {
	return nil
}

// Update handles messages and updates the model accordingly.
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			m.quitting = true
			return m, tea.Quit
		case "up", "k":
			if m.selectedIdx > 0 {
				m.selectedIdx--
			}
		case "down", "j":
			if m.selectedIdx < len(m.result.Gaps)-1 {
				m.selectedIdx++
			}
		}
	}

	return m, nil
}

// View renders the TUI.
func (m model) View() string {
	if m.quitting {
		return "Quitting...\n"
	}

	docStyle := lipgloss.NewStyle().Margin(1, 2)
	listStyle := lipgloss.NewStyle().Border(lipgloss.NormalBorder(), true).Padding(1).Width(m.width/2 - 5)
	detailStyle := lipgloss.NewStyle().Border(lipgloss.NormalBorder(), true).Padding(1).Width(m.width/2 - 5)

	listContent := fmt.Sprintf("Gaps for %s\n\n", m.result.UserID)
	if len(m.result.Gaps) == 0 {
		listContent += "No gaps detected."
	} else {
		for i, gap := range m.result.Gaps {
			cursor := " "
			if i == m.selectedIdx {
				cursor = ">"
			}
			listContent += fmt.Sprintf("%s [%s] %s\n", cursor, gap.Severity, gap.Topic)
		}
	}

	detailContent := "Gap Detail\n\n"
	if len(m.result.Gaps) == 0 || m.selectedIdx >= len(m.result.Gaps) {
		detailContent += "Nothing selected."
	} else {
		gap := m.result.Gaps[m.selectedIdx]
		detailContent += fmt.Sprintf("Topic:    %s\n", gap.Topic)
		detailContent += fmt.Sprintf("Type:     %s\n", gap.Type)
		detailContent += fmt.Sprintf("Severity: %s\n", gap.Severity)
		detailContent += fmt.Sprintf("Priority: %.2f\n", gap.Priority)
		if len(gap.RelatedTopics) > 0 {
			detailContent += fmt.Sprintf("Blocks:   %s\n", strings.Join(gap.RelatedTopics, ", "))
		}
		if len(gap.SuggestedContent) > 0 {
			detailContent += "\nSuggested content:\n"
			for _, suggestion := range gap.SuggestedContent {
				detailContent += "  - " + suggestion + "\n"
			}
		}
	}

	leftPane := listStyle.Render(listContent)
	rightPane := detailStyle.Render(detailContent)
	mainContent := lipgloss.JoinHorizontal(lipgloss.Top, leftPane, rightPane)

	footer := ""
	if len(m.result.LearningPath) > 0 {
		footer = "\nPath: " + strings.Join(m.result.LearningPath, " → ")
	}
	help := "\n\n[↑/k] Up | [↓/j] Down | [q] Quit"

	return docStyle.Render(mainContent + footer + help)
}

// StartTUI opens the interactive gap browser for one analysis result.
func StartTUI(result core.GapAnalysisResult) {
	p := tea.NewProgram(InitialModel(result), tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		fmt.Printf("Error running TUI: %v\n", err)
		os.Exit(1)
	}
}

package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/mpataki/slicer/internal/models"
	"github.com/mpataki/slicer/internal/pipeline"
	"github.com/mpataki/slicer/internal/report"
)

type View int

const (
	ViewSliceList View = iota
	ViewSliceDetail
	ViewWarnings
	ViewHistory
)

type App struct {
	pipeline *pipeline.Pipeline

	view         View
	source       string
	interp       *models.Interpretation
	findings     []string
	selectedIdx  int
	analyses     []*models.Analysis
	historyIdx   int
	historyLimit int
	pane         viewport.Model

	width  int
	height int
	err    error
}

// NewApp opens on res when given, otherwise on the saved history.
func NewApp(p *pipeline.Pipeline, res *pipeline.Result, historyLimit int) *App {
	a := &App{
		pipeline:     p,
		view:         ViewHistory,
		historyLimit: historyLimit,
		pane:         viewport.New(80, 20),
	}
	if res != nil {
		a.view = ViewSliceList
		a.source = res.Source.Path
		a.interp = res.Interpretation
		a.findings = res.RuleFindings
	}
	return a
}

func (a *App) Init() tea.Cmd {
	if a.view == ViewHistory {
		return a.loadHistory
	}
	return nil
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return a.handleKey(msg)

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.pane.Width = msg.Width
		a.pane.Height = max(msg.Height-4, 1)
		return a, nil

	case historyLoadedMsg:
		a.analyses = msg.analyses
		a.err = msg.err
		if a.historyIdx >= len(a.analyses) {
			a.historyIdx = max(len(a.analyses)-1, 0)
		}
		return a, nil

	case analysisLoadedMsg:
		a.err = msg.err
		if msg.err == nil {
			a.source = msg.analysis.SourcePath
			a.interp = msg.analysis.Result
			a.findings = msg.analysis.RuleFindings
			a.selectedIdx = 0
			a.view = ViewSliceList
		}
		return a, nil

	case analysisDeletedMsg:
		a.err = msg.err
		return a, a.loadHistory
	}

	return a, nil
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return a, tea.Quit
	}
	switch a.view {
	case ViewSliceList:
		return a.handleSliceListKey(msg)
	case ViewSliceDetail, ViewWarnings:
		return a.handlePaneKey(msg)
	case ViewHistory:
		return a.handleHistoryKey(msg)
	}
	return a, nil
}

func (a *App) handleSliceListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return a, tea.Quit

	case "up", "k":
		if a.selectedIdx > 0 {
			a.selectedIdx--
		}

	case "down", "j":
		if a.interp != nil && a.selectedIdx < len(a.interp.Slices)-1 {
			a.selectedIdx++
		}

	case "enter":
		if a.interp != nil && a.selectedIdx < len(a.interp.Slices) {
			var b strings.Builder
			report.SliceMarkdown(&b, a.interp.Slices[a.selectedIdx])
			a.openPane(ViewSliceDetail, b.String())
		}

	case "w":
		if a.interp != nil {
			a.openPane(ViewWarnings, a.warningsContent())
		}

	case "h":
		a.view = ViewHistory
		return a, a.loadHistory
	}

	return a, nil
}

func (a *App) handlePaneKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "esc":
		a.view = ViewSliceList
		return a, nil
	}

	var cmd tea.Cmd
	a.pane, cmd = a.pane.Update(msg)
	return a, cmd
}

func (a *App) handleHistoryKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return a, tea.Quit

	case "esc":
		if a.interp != nil {
			a.view = ViewSliceList
		}

	case "up", "k":
		if a.historyIdx > 0 {
			a.historyIdx--
		}

	case "down", "j":
		if a.historyIdx < len(a.analyses)-1 {
			a.historyIdx++
		}

	case "enter":
		if a.historyIdx < len(a.analyses) {
			return a, a.loadAnalysis(a.analyses[a.historyIdx].ID)
		}

	case "d":
		if a.historyIdx < len(a.analyses) {
			return a, a.deleteAnalysis(a.analyses[a.historyIdx].ID)
		}

	case "r":
		return a, a.loadHistory
	}

	return a, nil
}

func (a *App) openPane(v View, content string) {
	a.pane.SetContent(content)
	a.pane.GotoTop()
	a.view = v
}

func (a *App) View() string {
	switch a.view {
	case ViewSliceList:
		return a.viewSliceList()
	case ViewSliceDetail:
		return a.viewPane("Slice")
	case ViewWarnings:
		return a.viewPane("Warnings")
	case ViewHistory:
		return a.viewHistory()
	}
	return ""
}

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("229")).
			Background(lipgloss.Color("57"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	kindView       = lipgloss.NewStyle().Foreground(lipgloss.Color("46"))
	kindChange     = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	kindAutomation = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	kindSimulator  = lipgloss.NewStyle().Foreground(lipgloss.Color("208"))
	kindUnknown    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))

	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("208"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))
)

func (a *App) viewSliceList() string {
	s := titleStyle.Render("Slicer") + "  " + dimStyle.Render(a.source) + "\n\n"

	if a.err != nil {
		s += fmt.Sprintf("Error: %v\n", a.err)
	}
	if a.interp == nil {
		return s + "No document loaded.\n"
	}

	sum := a.interp.Summary
	s += dimStyle.Render(fmt.Sprintf("%d slices  %d commands  %d events  %d external  %d screens  %d read models  %d specs",
		sum.TotalSlices, sum.TotalCommands, sum.TotalEvents, sum.TotalExternalEvents,
		sum.TotalScreens, sum.TotalReadModels, sum.TotalSpecifications)) + "\n\n"

	if len(a.interp.Slices) == 0 {
		s += "(no slices)\n"
	}
	for i, sl := range a.interp.Slices {
		line := fmt.Sprintf("%2d. %-30s %s", sl.Index, truncate(sl.Title, 30), formatKind(sl.SliceType))
		if i == a.selectedIdx {
			line = selectedStyle.Render("▶ " + line)
		} else {
			line = "  " + line
		}
		s += line + "\n"
		if sl.VisualFlow != "" {
			s += "      " + dimStyle.Render(truncate(sl.VisualFlow, max(a.width-8, 40))) + "\n"
		}
	}

	if n := len(a.interp.Warnings) + len(a.findings); n > 0 {
		s += "\n" + warningStyle.Render(fmt.Sprintf("⚠ %d warnings", n)) + "\n"
	}

	s += "\n" + helpStyle.Render("[enter] view  [w] warnings  [h] history  [q] quit")
	return s
}

func formatKind(kind string) string {
	switch kind {
	case "STATE_VIEW":
		return kindView.Render(kind)
	case "STATE_CHANGE":
		return kindChange.Render(kind)
	case "AUTOMATION":
		return kindAutomation.Render(kind)
	case "EXTERNAL_SIMULATOR":
		return kindSimulator.Render(kind)
	case "":
		return kindUnknown.Render("(no type)")
	default:
		return kindUnknown.Render(kind)
	}
}

func (a *App) warningsContent() string {
	var b strings.Builder
	if len(a.interp.Warnings) == 0 && len(a.findings) == 0 {
		return "(no warnings)\n"
	}
	for _, w := range a.interp.Warnings {
		b.WriteString("• " + w + "\n")
	}
	if len(a.findings) > 0 {
		b.WriteString("\nRule findings\n")
		for _, f := range a.findings {
			b.WriteString("• " + f + "\n")
		}
	}
	return b.String()
}

func (a *App) viewPane(title string) string {
	s := titleStyle.Render(title) + "\n\n"
	s += a.pane.View() + "\n"
	s += helpStyle.Render(fmt.Sprintf("[↑/↓] scroll  %3.f%%  [esc] back", a.pane.ScrollPercent()*100))
	return s
}

func (a *App) viewHistory() string {
	s := titleStyle.Render("History") + "\n\n"

	if a.err != nil {
		s += fmt.Sprintf("Error: %v\n", a.err)
	}

	if len(a.analyses) == 0 {
		s += "No saved analyses. Run 'slicer interpret --save <document>' to record one.\n"
	} else {
		for i, an := range a.analyses {
			line := fmt.Sprintf("#%-3d %-30s %2d slices  %2d warnings  %s",
				an.ID, truncate(an.SourcePath, 30), an.SliceCount, an.WarningCount,
				humanize.Time(an.CreatedAt))
			if i == a.historyIdx {
				line = selectedStyle.Render("▶ " + line)
			} else {
				line = "  " + line
			}
			s += line + "\n"
		}
	}

	s += "\n" + helpStyle.Render("[enter] open  [d] delete  [r] refresh  [esc] back  [q] quit")
	return s
}

// Messages

type historyLoadedMsg struct {
	analyses []*models.Analysis
	err      error
}

type analysisLoadedMsg struct {
	analysis *models.Analysis
	err      error
}

type analysisDeletedMsg struct {
	id  int64
	err error
}

// Commands

func (a *App) loadHistory() tea.Msg {
	list, err := a.pipeline.ListAnalyses(a.historyLimit)
	return historyLoadedMsg{analyses: list, err: err}
}

func (a *App) loadAnalysis(id int64) tea.Cmd {
	return func() tea.Msg {
		an, err := a.pipeline.GetAnalysis(id)
		return analysisLoadedMsg{analysis: an, err: err}
	}
}

func (a *App) deleteAnalysis(id int64) tea.Cmd {
	return func() tea.Msg {
		return analysisDeletedMsg{id: id, err: a.pipeline.DeleteAnalysis(id)}
	}
}

func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-3]) + "..."
}

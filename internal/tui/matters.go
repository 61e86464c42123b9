package tui

import (
	"context"
	"fmt"

	"github.com/byro/cli/internal/api"
	"github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// MattersView lists all matters in the case system
type MattersView struct {
	app      *App
	matters  []api.Matter
	selected int
	loading  bool
	errMsg   string
}

// NewMattersView creates a new matters view
func NewMattersView(app *App) *MattersView {
	return &MattersView{app: app}
}

// Update handles updates
func (mv *MattersView) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case mattersPageMsg:
		mv.matters = msg.matters
		mv.loading = false
		mv.errMsg = ""
		if mv.selected >= len(mv.matters) {
			mv.selected = 0
		}
		return nil

	case mattersPageFailedMsg:
		mv.loading = false
		mv.errMsg = msg.err.Error()
		return nil

	case tea.KeyMsg:
		switch msg.String() {
		case "j", "down":
			if mv.selected < len(mv.matters)-1 {
				mv.selected++
			}
		case "k", "up":
			if mv.selected > 0 {
				mv.selected--
			}
		case "r":
			mv.loading = true
			return mv.load
		}
	}
	return nil
}

// View renders the matters view
func (mv *MattersView) View() string {
	var lines []string
	lines = append(lines, titleStyle.Render("Matters"))
	lines = append(lines, "")

	switch {
	case mv.loading:
		lines = append(lines, "Loading matters...")
	case mv.errMsg != "":
		lines = append(lines, errorStyle.Render("Error loading matters: "+mv.errMsg))
	case len(mv.matters) == 0:
		lines = append(lines, "No matters yet.")
	default:
		for i, m := range mv.matters {
			style := lipgloss.NewStyle()
			if i == mv.selected {
				style = style.Bold(true).Foreground(lipgloss.Color("205"))
			}
			line := fmt.Sprintf("%s  %s  %s",
				style.Render(m.Title),
				dimStyle.Render(m.Category),
				dimStyle.Render(m.CreatedAt.Format("2006-01-02")),
			)
			lines = append(lines, line)
		}
	}

	lines = append(lines, "")
	lines = append(lines, helpStyle.Render("j/k: Navigate | r: Reload | Esc: Back"))

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

// load fetches the matter list
func (mv *MattersView) load() tea.Msg {
	matters, err := mv.app.client.ListMatters(context.Background())
	if err != nil {
		return mattersPageFailedMsg{err: err}
	}
	return mattersPageMsg{matters: matters}
}

// mattersPageMsg carries the loaded matter list
type mattersPageMsg struct {
	matters []api.Matter
}

// mattersPageFailedMsg signals the matter list fetch failed
type mattersPageFailedMsg struct {
	err error
}

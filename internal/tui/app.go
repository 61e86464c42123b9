package tui

import (
	"context"
	"log/slog"

	"github.com/byro/cli/config"
	"github.com/byro/cli/internal/api"
	"github.com/byro/cli/internal/docview"
	"github.com/byro/cli/internal/inbox"
	"github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type page int

const (
	pageInbox page = iota
	pageTriage
	pageMatters
)

// App is the root TUI model. It owns the shared triage state and routes
// messages to the current page.
type App struct {
	cfg       *config.Config
	client    *api.Client
	store     *inbox.Store
	poller    *inbox.Poller
	previewer *docview.Previewer
	logger    *slog.Logger

	page        page
	inboxView   *InboxView
	triageView  *TriageView
	mattersView *MattersView

	// watchCancel stops the poll loop of the currently selected item.
	watchCancel context.CancelFunc

	width  int
	height int
}

// NewApp creates the TUI application
func NewApp(cfg *config.Config, logger *slog.Logger) *App {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	client := api.NewClient(cfg.API.BaseURL, cfg.APITimeout())

	app := &App{
		cfg:       cfg,
		client:    client,
		store:     inbox.NewStore(client),
		poller:    inbox.NewPoller(client, cfg.PollInterval(), logger),
		previewer: docview.NewPreviewer(client, cfg.Preview.MaxPages),
		logger:    logger,
		page:      pageInbox,
		width:     80,
		height:    24,
	}
	app.inboxView = NewInboxView(app)
	app.triageView = NewTriageView(app)
	app.mattersView = NewMattersView(app)
	return app
}

// Run starts the TUI application
func (a *App) Run() error {
	p := tea.NewProgram(a, tea.WithAltScreen())
	_, err := p.Run()
	if a.watchCancel != nil {
		a.watchCancel()
	}
	return err
}

// Init initializes the root model
func (a *App) Init() tea.Cmd {
	a.logger.Info("starting", "api", a.cfg.API.BaseURL)
	return a.inboxView.Init()
}

// Update handles all messages
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		return a, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return a, tea.Quit
		case "esc":
			switch a.page {
			case pageTriage:
				a.closeTriage()
				return a, a.inboxView.loadItems
			case pageMatters:
				a.page = pageInbox
				return a, nil
			default:
				if !a.inboxView.prompting {
					return a, tea.Quit
				}
			}
		}
		switch a.page {
		case pageTriage:
			return a, a.triageView.Update(msg)
		case pageMatters:
			return a, a.mattersView.Update(msg)
		default:
			return a, a.inboxView.Update(msg)
		}

	case itemSelectedMsg:
		return a, a.openTriage(msg.id)

	case itemUpdatedMsg:
		// The store is the single writer; the view reads back from it.
		if a.store.Apply(&msg.item) {
			a.triageView.observe(a.store.Active())
		}
		return a, listenForUpdates(msg.ch)

	case pollStoppedMsg:
		return a, nil

	case commitDoneMsg:
		a.logger.Info("commit succeeded", "detail", msg.detail)
		a.store.Invalidate()
		a.closeTriage()
		a.inboxView.notice = msg.detail
		a.inboxView.noticeErr = false
		return a, a.inboxView.loadItems

	case openMattersMsg:
		a.page = pageMatters
		a.mattersView.loading = true
		return a, a.mattersView.load
	}

	// Async results carry their own message types; let every view pick
	// out its own.
	cmds := []tea.Cmd{
		a.inboxView.Update(msg),
		a.triageView.Update(msg),
		a.mattersView.Update(msg),
	}
	return a, tea.Batch(cmds...)
}

// View renders the current page
func (a *App) View() string {
	switch a.page {
	case pageTriage:
		return a.triageView.View()
	case pageMatters:
		return a.mattersView.View()
	default:
		return a.inboxView.View()
	}
}

// openTriage selects an item and moves to the triage page. A processing
// item also gets a poll watch; any previous watch is canceled first.
func (a *App) openTriage(id string) tea.Cmd {
	item, ok := a.store.Select(id)
	if !ok {
		return nil
	}
	if a.watchCancel != nil {
		a.watchCancel()
		a.watchCancel = nil
	}

	a.page = pageTriage
	cmds := []tea.Cmd{a.triageView.setItem(item)}

	if item.Status.ShouldPoll() {
		ctx, cancel := context.WithCancel(context.Background())
		a.watchCancel = cancel
		cmds = append(cmds, listenForUpdates(a.poller.Watch(ctx, *item)))
	}
	return tea.Batch(cmds...)
}

// closeTriage deselects the active item, stops its poll loop and drops
// the in-progress form.
func (a *App) closeTriage() {
	if a.watchCancel != nil {
		a.watchCancel()
		a.watchCancel = nil
	}
	a.store.Deselect()
	a.triageView.reset()
	a.page = pageInbox
}

// listenForUpdates waits for the next record from a poll watch
func listenForUpdates(ch <-chan api.InboxItem) tea.Cmd {
	return func() tea.Msg {
		item, ok := <-ch
		if !ok {
			return pollStoppedMsg{}
		}
		return itemUpdatedMsg{item: item, ch: ch}
	}
}

// Shared styles
var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	noticeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))

	badgeProcessing = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	badgeReview     = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	badgeDone       = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	badgeError      = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

// statusBadge renders an item status with its color
func statusBadge(s api.Status) string {
	switch s {
	case api.StatusProcessing:
		return badgeProcessing.Render("processing")
	case api.StatusReview:
		return badgeReview.Render("review")
	case api.StatusDone:
		return badgeDone.Render("done")
	default:
		return badgeError.Render("error")
	}
}

// itemSelectedMsg signals the user picked an inbox item
type itemSelectedMsg struct {
	id string
}

// itemUpdatedMsg carries a fresh record from the poll watch
type itemUpdatedMsg struct {
	item api.InboxItem
	ch   <-chan api.InboxItem
}

// pollStoppedMsg signals the poll watch finished
type pollStoppedMsg struct{}

// commitDoneMsg signals a successful matter create or attach
type commitDoneMsg struct {
	detail string
}

// openMattersMsg switches to the matters page
type openMattersMsg struct{}

// errorMsg carries a non-fatal failure into a view
type errorMsg struct {
	error error
}

package tui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/byro/cli/internal/api"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// acceptedUploadExts is advisory only; the backend decides what it takes.
var acceptedUploadExts = []string{".pdf", ".txt"}

// InboxView lists uploaded documents and drives the upload flow
type InboxView struct {
	app      *App
	items    []api.InboxItem
	selected int
	loading  bool
	loadErr  error

	uploading bool
	prompting bool
	pathInput textinput.Model
	spin      spinner.Model

	notice    string
	noticeErr bool
}

// NewInboxView creates a new inbox view
func NewInboxView(app *App) *InboxView {
	ti := textinput.New()
	ti.Placeholder = "/path/to/document.pdf"
	ti.CharLimit = 512
	ti.Width = 60

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return &InboxView{
		app:       app,
		loading:   true,
		pathInput: ti,
		spin:      sp,
	}
}

// Init starts the initial inbox load
func (iv *InboxView) Init() tea.Cmd {
	iv.loading = true
	return tea.Batch(iv.loadItems, iv.spin.Tick)
}

// Update handles updates
func (iv *InboxView) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		var cmd tea.Cmd
		iv.spin, cmd = iv.spin.Update(msg)
		return cmd

	case itemsLoadedMsg:
		iv.items = msg.items
		iv.loading = false
		iv.loadErr = nil
		if iv.selected >= len(iv.items) {
			iv.selected = 0
		}
		return nil

	case inboxLoadFailedMsg:
		iv.loading = false
		iv.loadErr = msg.err
		return nil

	case uploadDoneMsg:
		iv.uploading = false
		iv.notice = fmt.Sprintf("Uploaded %s", msg.item.OriginalFilename)
		iv.noticeErr = false
		iv.app.store.Invalidate()
		iv.loading = true
		return iv.loadItems

	case uploadFailedMsg:
		// No invalidation on failure, so no phantom item shows up.
		iv.uploading = false
		iv.notice = fmt.Sprintf("Upload failed: %v", msg.err)
		iv.noticeErr = true
		return nil

	case tea.KeyMsg:
		return iv.handleKey(msg)
	}
	return nil
}

func (iv *InboxView) handleKey(msg tea.KeyMsg) tea.Cmd {
	if iv.prompting {
		switch msg.String() {
		case "esc":
			iv.prompting = false
			iv.pathInput.Blur()
			return nil
		case "enter":
			return iv.submitUpload()
		}
		var cmd tea.Cmd
		iv.pathInput, cmd = iv.pathInput.Update(msg)
		return cmd
	}

	if iv.loadErr != nil {
		if msg.String() == "r" {
			iv.loading = true
			iv.loadErr = nil
			return iv.loadItems
		}
		if msg.String() == "q" {
			return tea.Quit
		}
		return nil
	}

	switch msg.String() {
	case "j", "down":
		if iv.selected < len(iv.items)-1 {
			iv.selected++
		}
	case "k", "up":
		if iv.selected > 0 {
			iv.selected--
		}
	case "enter":
		if len(iv.items) > 0 {
			id := iv.items[iv.selected].ID
			return func() tea.Msg { return itemSelectedMsg{id: id} }
		}
	case "u":
		if !iv.uploading {
			iv.prompting = true
			iv.notice = ""
			iv.pathInput.SetValue("")
			return iv.pathInput.Focus()
		}
	case "m":
		return func() tea.Msg { return openMattersMsg{} }
	case "r":
		iv.app.store.Invalidate()
		iv.loading = true
		return iv.loadItems
	case "q":
		return tea.Quit
	}
	return nil
}

// submitUpload validates the prompted path and kicks off the upload
func (iv *InboxView) submitUpload() tea.Cmd {
	path := strings.TrimSpace(iv.pathInput.Value())
	iv.prompting = false
	iv.pathInput.Blur()
	if path == "" {
		return nil
	}

	ext := strings.ToLower(filepath.Ext(path))
	ok := false
	for _, accepted := range acceptedUploadExts {
		if ext == accepted {
			ok = true
			break
		}
	}
	if !ok {
		iv.notice = fmt.Sprintf("Unsupported file type %q (accepted: %s)", ext, strings.Join(acceptedUploadExts, ", "))
		iv.noticeErr = true
		return nil
	}

	iv.uploading = true
	iv.notice = ""
	return tea.Batch(iv.uploadFile(path), iv.spin.Tick)
}

// View renders the inbox view
func (iv *InboxView) View() string {
	var lines []string

	lines = append(lines, titleStyle.Render("Inbox"))
	lines = append(lines, "")

	if iv.loadErr != nil {
		// Initial load failure blocks the whole page; no stale data.
		lines = append(lines, errorStyle.Render(fmt.Sprintf("Error loading inbox: %v", iv.loadErr)))
		lines = append(lines, "")
		lines = append(lines, helpStyle.Render("r: Retry | q: Quit"))
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	if iv.loading {
		lines = append(lines, fmt.Sprintf("%s Loading inbox...", iv.spin.View()))
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	if iv.uploading {
		lines = append(lines, fmt.Sprintf("%s Uploading...", iv.spin.View()))
		lines = append(lines, "")
	}

	if iv.prompting {
		lines = append(lines, "Upload document (.pdf, .txt):")
		lines = append(lines, iv.pathInput.View())
		lines = append(lines, "")
	}

	if iv.notice != "" {
		style := noticeStyle
		if iv.noticeErr {
			style = errorStyle
		}
		lines = append(lines, style.Render(iv.notice))
		lines = append(lines, "")
	}

	if len(iv.items) == 0 {
		lines = append(lines, "Inbox is empty. Press 'u' to upload a document.")
	} else {
		for i, item := range iv.items {
			style := lipgloss.NewStyle()
			if i == iv.selected {
				style = style.Bold(true).Foreground(lipgloss.Color("205"))
			}
			line := fmt.Sprintf("%s  %s  %s",
				statusBadge(item.Status),
				style.Render(item.OriginalFilename),
				dimStyle.Render(item.CreatedAt.Format("2006-01-02")),
			)
			lines = append(lines, line)
		}
	}

	lines = append(lines, "")
	help := "j/k: Navigate | Enter: Open | u: Upload | m: Matters | r: Reload | q: Quit"
	lines = append(lines, helpStyle.Render(help))

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

// loadItems loads the inbox list through the store cache
func (iv *InboxView) loadItems() tea.Msg {
	items, err := iv.app.store.Items(context.Background())
	if err != nil {
		return inboxLoadFailedMsg{err: err}
	}
	return itemsLoadedMsg{items: items}
}

// uploadFile submits one file to the backend
func (iv *InboxView) uploadFile(path string) tea.Cmd {
	client := iv.app.client
	return func() tea.Msg {
		f, err := os.Open(path)
		if err != nil {
			return uploadFailedMsg{err: err}
		}
		defer f.Close()

		item, err := client.Upload(context.Background(), filepath.Base(path), f)
		if err != nil {
			return uploadFailedMsg{err: err}
		}
		return uploadDoneMsg{item: *item}
	}
}

// itemsLoadedMsg signals the inbox list has been loaded
type itemsLoadedMsg struct {
	items []api.InboxItem
}

// inboxLoadFailedMsg signals the initial or reloaded list fetch failed
type inboxLoadFailedMsg struct {
	err error
}

// uploadDoneMsg signals an upload was accepted
type uploadDoneMsg struct {
	item api.InboxItem
}

// uploadFailedMsg signals an upload was rejected or never arrived
type uploadFailedMsg struct {
	err error
}

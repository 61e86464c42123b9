package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/byro/cli/internal/api"
	"github.com/byro/cli/internal/triage"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	fieldTitle = iota
	fieldDate
	fieldAmount
	fieldCount
)

// TriageView shows the document preview next to the extraction form and
// drives both commit actions.
type TriageView struct {
	app  *App
	item *api.InboxItem
	form *triage.Form

	inputs [fieldCount]textinput.Model
	focus  int

	// Attach-to-existing target, fed by the real matter list.
	matters        []api.Matter
	mattersLoading bool
	mattersLoaded  bool
	matterSel      int

	preview        string
	previewErr     error
	previewLoading bool

	committing bool
	notice     string
	noticeErr  bool
	spin       spinner.Model
}

// NewTriageView creates a new triage view
func NewTriageView(app *App) *TriageView {
	tv := &TriageView{
		app:  app,
		form: triage.NewForm(),
		spin: spinner.New(),
	}
	tv.spin.Spinner = spinner.Dot

	labels := [fieldCount]string{"Document title", "YYYY-MM-DD", "0.00"}
	for i := range tv.inputs {
		ti := textinput.New()
		ti.Placeholder = labels[i]
		ti.CharLimit = 256
		ti.Width = 40
		tv.inputs[i] = ti
	}
	return tv
}

// setItem binds the view to a freshly selected item and starts the
// preview fetch. The form starts clean; hydration happens in observe.
func (tv *TriageView) setItem(item *api.InboxItem) tea.Cmd {
	tv.reset()
	tv.item = item
	tv.observe(item)
	tv.previewLoading = true
	return tea.Batch(tv.loadPreview(item), tv.spin.Tick, tv.inputs[fieldTitle].Focus())
}

// observe feeds the latest record into the form; a first entry into
// review fills the inputs, later identical ticks leave edits alone.
func (tv *TriageView) observe(item *api.InboxItem) {
	if item == nil {
		return
	}
	tv.item = item
	if tv.form.Observe(item) {
		tv.inputs[fieldTitle].SetValue(tv.form.Title)
		tv.inputs[fieldDate].SetValue(tv.form.Date)
		tv.inputs[fieldAmount].SetValue(tv.form.Amount)
	}
}

// reset clears all per-item state
func (tv *TriageView) reset() {
	tv.item = nil
	tv.form.Reset()
	for i := range tv.inputs {
		tv.inputs[i].SetValue("")
		tv.inputs[i].Blur()
	}
	tv.focus = fieldTitle
	tv.matters = nil
	tv.mattersLoaded = false
	tv.mattersLoading = false
	tv.matterSel = 0
	tv.preview = ""
	tv.previewErr = nil
	tv.previewLoading = false
	tv.committing = false
	tv.notice = ""
	tv.noticeErr = false
}

// Update handles updates
func (tv *TriageView) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		var cmd tea.Cmd
		tv.spin, cmd = tv.spin.Update(msg)
		return cmd

	case previewLoadedMsg:
		if tv.item != nil && msg.itemID == tv.item.ID {
			tv.preview = msg.text
			tv.previewErr = msg.err
			tv.previewLoading = false
		}
		return nil

	case matterChoicesMsg:
		tv.matters = msg.matters
		tv.mattersLoading = false
		tv.mattersLoaded = true
		if tv.matterSel >= len(tv.matters) {
			tv.matterSel = 0
		}
		return nil

	case matterChoicesFailedMsg:
		tv.mattersLoading = false
		tv.notice = fmt.Sprintf("Failed to load matters: %v", msg.err)
		tv.noticeErr = true
		return nil

	case commitFailedMsg:
		// The item stays in review and the form keeps its values so the
		// user can retry without re-entering anything.
		tv.committing = false
		tv.notice = fmt.Sprintf("Save failed: %v", msg.err)
		tv.noticeErr = true
		return nil

	case tea.KeyMsg:
		return tv.handleKey(msg)
	}
	return nil
}

func (tv *TriageView) handleKey(msg tea.KeyMsg) tea.Cmd {
	if tv.item == nil || tv.committing {
		return nil
	}

	switch msg.String() {
	case "tab":
		if tv.form.Mode == triage.ModeNew {
			tv.form.Mode = triage.ModeExisting
			tv.inputs[tv.focus].Blur()
			if !tv.mattersLoaded && !tv.mattersLoading {
				tv.mattersLoading = true
				return tea.Batch(tv.loadMatterChoices, tv.spin.Tick)
			}
		} else {
			tv.form.Mode = triage.ModeNew
			return tv.inputs[tv.focus].Focus()
		}
		return nil

	case "ctrl+s":
		return tv.commit()
	}

	if tv.form.Mode == triage.ModeExisting {
		switch msg.String() {
		case "j", "down":
			if tv.matterSel < len(tv.matters)-1 {
				tv.matterSel++
			}
		case "k", "up":
			if tv.matterSel > 0 {
				tv.matterSel--
			}
		case "enter":
			return tv.commit()
		}
		return nil
	}

	switch msg.String() {
	case "down", "enter":
		return tv.focusField((tv.focus + 1) % fieldCount)
	case "up", "shift+tab":
		return tv.focusField((tv.focus + fieldCount - 1) % fieldCount)
	}

	var cmd tea.Cmd
	tv.inputs[tv.focus], cmd = tv.inputs[tv.focus].Update(msg)
	tv.syncForm()
	return cmd
}

func (tv *TriageView) focusField(i int) tea.Cmd {
	tv.inputs[tv.focus].Blur()
	tv.focus = i
	return tv.inputs[tv.focus].Focus()
}

// syncForm mirrors the input widgets back into the form state
func (tv *TriageView) syncForm() {
	tv.form.Title = tv.inputs[fieldTitle].Value()
	tv.form.Date = tv.inputs[fieldDate].Value()
	tv.form.Amount = tv.inputs[fieldAmount].Value()
}

// commit runs the action of the current mode. Only reviewable items can
// be committed; both actions are issued once per explicit confirmation.
func (tv *TriageView) commit() tea.Cmd {
	if tv.item == nil || tv.committing {
		return nil
	}
	if !tv.item.Status.CanTriage() {
		tv.notice = "Document is not ready for review yet"
		tv.noticeErr = true
		return nil
	}

	tv.syncForm()
	tv.committing = true
	tv.notice = ""

	if tv.form.Mode == triage.ModeExisting {
		if len(tv.matters) == 0 {
			tv.committing = false
			tv.notice = "No matter selected"
			tv.noticeErr = true
			return nil
		}
		return tea.Batch(tv.commitAttach(tv.matters[tv.matterSel]), tv.spin.Tick)
	}
	return tea.Batch(tv.commitCreate(), tv.spin.Tick)
}

// commitCreate creates a new matter from the form
func (tv *TriageView) commitCreate() tea.Cmd {
	item := *tv.item
	body := tv.form.CreateRequest(&item, tv.app.cfg.Triage.DefaultCategory)
	client := tv.app.client
	return func() tea.Msg {
		matter, err := client.CreateMatter(context.Background(), item.ID, body)
		if err != nil {
			return commitFailedMsg{err: err}
		}
		return commitDoneMsg{detail: fmt.Sprintf("Matter %q created", matter.Title)}
	}
}

// commitAttach attaches the document to the chosen existing matter
func (tv *TriageView) commitAttach(matter api.Matter) tea.Cmd {
	item := *tv.item
	client := tv.app.client
	return func() tea.Msg {
		if err := client.AttachDocument(context.Background(), matter.ID, item.ID); err != nil {
			return commitFailedMsg{err: err}
		}
		return commitDoneMsg{detail: fmt.Sprintf("Document attached to %q", matter.Title)}
	}
}

// loadPreview fetches and extracts the document text
func (tv *TriageView) loadPreview(item *api.InboxItem) tea.Cmd {
	it := *item
	previewer := tv.app.previewer
	return func() tea.Msg {
		text, err := previewer.Preview(context.Background(), &it)
		return previewLoadedMsg{itemID: it.ID, text: text, err: err}
	}
}

// loadMatterChoices fetches the matter list for attach mode
func (tv *TriageView) loadMatterChoices() tea.Msg {
	matters, err := tv.app.client.ListMatters(context.Background())
	if err != nil {
		return matterChoicesFailedMsg{err: err}
	}
	return matterChoicesMsg{matters: matters}
}

// View renders the triage view
func (tv *TriageView) View() string {
	if tv.item == nil {
		return ""
	}

	left := tv.viewPreview()
	right := tv.viewForm()

	leftW := tv.app.width / 2
	if leftW < 20 {
		leftW = 20
	}
	leftStyle := lipgloss.NewStyle().
		Width(leftW).
		MaxHeight(tv.app.height - 1).
		BorderStyle(lipgloss.NormalBorder()).
		BorderRight(true)

	return lipgloss.JoinHorizontal(lipgloss.Top, leftStyle.Render(left), "  "+right)
}

func (tv *TriageView) viewPreview() string {
	var lines []string
	lines = append(lines, titleStyle.Render(tv.item.OriginalFilename))
	lines = append(lines, "")

	switch {
	case tv.previewLoading:
		lines = append(lines, fmt.Sprintf("%s Loading preview...", tv.spin.View()))
	case tv.previewErr != nil:
		lines = append(lines, errorStyle.Render(fmt.Sprintf("Preview unavailable: %v", tv.previewErr)))
	case strings.TrimSpace(tv.preview) == "":
		lines = append(lines, dimStyle.Render("No extractable text"))
	default:
		lines = append(lines, tv.preview)
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (tv *TriageView) viewForm() string {
	var lines []string
	lines = append(lines, titleStyle.Render("Extract Information"))
	lines = append(lines, fmt.Sprintf("Status: %s", statusBadge(tv.item.Status)))
	lines = append(lines, "")

	switch {
	case tv.item.Status == api.StatusProcessing:
		lines = append(lines, fmt.Sprintf("%s Extracting data...", tv.spin.View()))
	case tv.item.Status == api.StatusError:
		lines = append(lines, errorStyle.Render("Extraction failed. Re-upload the document to retry."))
	case tv.item.Status == api.StatusDone:
		lines = append(lines, dimStyle.Render("This document has already been filed."))
	default:
		lines = append(lines, tv.viewModeTabs())
		lines = append(lines, "")
		if tv.form.Mode == triage.ModeNew {
			lines = append(lines, tv.viewNewMatterForm()...)
		} else {
			lines = append(lines, tv.viewExistingMatters()...)
		}
		if extras := tv.viewExtractionExtras(); extras != "" {
			lines = append(lines, "", extras)
		}
	}

	if tv.committing {
		lines = append(lines, "", fmt.Sprintf("%s Saving...", tv.spin.View()))
	}
	if tv.notice != "" {
		style := noticeStyle
		if tv.noticeErr {
			style = errorStyle
		}
		lines = append(lines, "", style.Render(tv.notice))
	}

	lines = append(lines, "")
	help := "Tab: Mode | Ctrl+S: Confirm & Save | Esc: Back"
	if tv.form.Mode == triage.ModeExisting {
		help = "Tab: Mode | j/k: Select matter | Enter: Confirm & Save | Esc: Back"
	}
	lines = append(lines, helpStyle.Render(help))

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (tv *TriageView) viewModeTabs() string {
	active := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	inactive := dimStyle
	newTab := inactive.Render("Create New Matter")
	existingTab := inactive.Render("Attach to Existing")
	if tv.form.Mode == triage.ModeNew {
		newTab = active.Render("Create New Matter")
	} else {
		existingTab = active.Render("Attach to Existing")
	}
	return newTab + "   " + existingTab
}

func (tv *TriageView) viewNewMatterForm() []string {
	return []string{
		"Matter Title",
		tv.inputs[fieldTitle].View(),
		"Date",
		tv.inputs[fieldDate].View(),
		"Amount",
		tv.inputs[fieldAmount].View(),
	}
}

func (tv *TriageView) viewExistingMatters() []string {
	if tv.mattersLoading {
		return []string{fmt.Sprintf("%s Loading matters...", tv.spin.View())}
	}
	if len(tv.matters) == 0 {
		return []string{dimStyle.Render("No existing matters found.")}
	}
	lines := []string{"Select Existing Matter"}
	for i, m := range tv.matters {
		style := lipgloss.NewStyle()
		if i == tv.matterSel {
			style = style.Bold(true).Foreground(lipgloss.Color("205"))
		}
		lines = append(lines, style.Render(fmt.Sprintf("%s  (%s)", m.Title, m.Category)))
	}
	return lines
}

// viewExtractionExtras shows read-only payload fields the form never edits
func (tv *TriageView) viewExtractionExtras() string {
	var parts []string
	if cp := tv.item.PayloadString("counterparty"); cp != "" {
		parts = append(parts, fmt.Sprintf("Counterparty: %s", cp))
	}
	if sum := tv.item.PayloadString("summary"); sum != "" {
		parts = append(parts, fmt.Sprintf("Summary: %s", sum))
	}
	if len(parts) == 0 {
		return ""
	}
	return dimStyle.Render(strings.Join(parts, "\n"))
}

// previewLoadedMsg carries the extracted preview text
type previewLoadedMsg struct {
	itemID string
	text   string
	err    error
}

// matterChoicesMsg carries the matter list for attach mode
type matterChoicesMsg struct {
	matters []api.Matter
}

// matterChoicesFailedMsg signals the matter lookup failed
type matterChoicesFailedMsg struct {
	err error
}

// commitFailedMsg signals a create or attach request failed
type commitFailedMsg struct {
	err error
}

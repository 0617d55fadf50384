// Package ui is the interactive study screen. It renders the session state
// and maps every key to exactly one session action.
package ui

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"flashdeck/internal/config"
	"flashdeck/internal/deck"
	"flashdeck/internal/session"
)

type mode int

const (
	modeStudy mode = iota
	modeFilter
	modeLogin
	modeAdd
	modeFatal
)

type viewMode int

const (
	viewCard viewMode = iota
	viewList
)

// chrome is the number of lines around the list viewport.
const chrome = 8

// refreshMsg asks the model to refetch the deck if the cached one is stale.
type refreshMsg struct{}

type Model struct {
	session *session.Session
	loader  *deck.Loader
	cfg     config.Config
	logger  *zap.Logger
	st      styles

	mode   mode
	view   viewMode
	input  textinput.Model
	form   *cardForm
	filter *filterState
	list   viewport.Model
	status string
	fatal  error
	width  int

	markdown      *glamour.TermRenderer
	markdownStyle string
}

// New builds the model. Answers are shown as plain text until Run attaches
// a markdown renderer.
func New(sess *session.Session, loader *deck.Loader, cfg config.Config, logger *zap.Logger) Model {
	if logger == nil {
		logger = zap.NewNop()
	}
	ti := textinput.New()
	ti.CharLimit = 2048
	ti.Width = 60

	view := viewCard
	if cfg.DefaultView == "list" {
		view = viewList
	}
	m := Model{
		session: sess,
		loader:  loader,
		cfg:     cfg,
		logger:  logger,
		st:      newStyles(),
		mode:    modeStudy,
		view:    view,
		input:   ti,
		list:    viewport.New(defaultWidth, 20),
		width:   defaultWidth,
	}
	m.status = m.countStatus()
	m.refreshList()
	return m
}

func Run(sess *session.Session, loader *deck.Loader, cfg config.Config, logger *zap.Logger) error {
	m := New(sess, loader, cfg, logger)
	// Pick the markdown style before the program owns the terminal.
	m.markdownStyle = "light"
	if lipgloss.HasDarkBackground() {
		m.markdownStyle = "dark"
	}
	m.setMarkdownWidth(defaultWidth)
	m.refreshList()

	program := tea.NewProgram(m, tea.WithAltScreen())
	_, err := program.Run()
	return err
}

func (m Model) Init() tea.Cmd {
	return m.scheduleRefresh()
}

// scheduleRefresh ticks once per deck TTL. No TTL, no ticks.
func (m Model) scheduleRefresh() tea.Cmd {
	if m.loader == nil || m.loader.TTL() <= 0 {
		return nil
	}
	return tea.Tick(m.loader.TTL(), func(time.Time) tea.Msg { return refreshMsg{} })
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case refreshMsg:
		return m.refresh()
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.input.Width = msg.Width - 10
		m.list.Width = msg.Width
		m.list.Height = max(msg.Height-chrome, 3)
		m.setMarkdownWidth(msg.Width)
		m.refreshList()
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if key == "ctrl+c" {
		return m, tea.Quit
	}
	switch m.mode {
	case modeFatal:
		return m.updateFatalMode(key)
	case modeFilter:
		return m.updateFilterMode(key)
	case modeLogin:
		return m.updateLoginMode(key, msg)
	case modeAdd:
		return m.updateAddMode(key, msg)
	}
	return m.updateStudyMode(key, msg)
}

func (m Model) updateStudyMode(key string, msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	k := m.cfg.Keys
	switch key {
	case k.Quit:
		return m, tea.Quit
	case k.Next, "right":
		m.session.GoNext()
	case k.Previous, "left":
		m.session.GoPrevious()
	case k.Reveal:
		m.session.ToggleAnswer()
	case k.ToggleView:
		if m.view == viewCard {
			m.view = viewList
		} else {
			m.view = viewCard
		}
		m.refreshList()
		m.list.GotoTop()
	case k.Filter:
		m.filter = newFilterState(m.session.Deck(), m.session.Selection())
		m.mode = modeFilter
		m.status = "Select filters, enter to apply, esc to cancel"
	case k.Shuffle:
		sel := m.session.Selection()
		sel.Shuffle = !sel.Shuffle
		m.applySelection(sel)
	case k.Reshuffle:
		if !m.session.Selection().Shuffle {
			m.status = fmt.Sprintf("Shuffle is off. Press %s to turn it on.", k.Shuffle)
			return m, nil
		}
		m.session.Reshuffle()
		m.refreshList()
		m.status = fmt.Sprintf("Reshuffled %d flashcards", m.session.Len())
	case k.Reload:
		return m.reload()
	case k.Login:
		if m.session.IsAdmin() {
			m.status = "Already logged in as admin"
			return m, nil
		}
		return m.startLogin()
	case k.Logout:
		if m.session.IsAdmin() {
			m.session.Logout()
			m.status = "Logged out"
		}
	case k.Add:
		if !m.session.IsAdmin() {
			m.status = fmt.Sprintf("Admin login required (%s)", k.Login)
			return m, nil
		}
		return m.startAddForm()
	default:
		if m.view == viewList {
			var cmd tea.Cmd
			m.list, cmd = m.list.Update(msg)
			return m, cmd
		}
	}
	return m, nil
}

func (m *Model) applySelection(sel deck.Selection) {
	if !m.session.OnFilterChanged(sel) {
		m.status = "Filters unchanged"
		return
	}
	m.refreshList()
	m.list.GotoTop()
	m.status = m.countStatus()
}

func (m Model) updateFilterMode(key string) (tea.Model, tea.Cmd) {
	k := m.cfg.Keys
	switch key {
	case k.Cancel, "esc":
		m.filter = nil
		m.mode = modeStudy
		m.status = "Filter cancelled"
	case k.Confirm, k.Filter:
		sel := m.filter.selection()
		m.filter = nil
		m.mode = modeStudy
		m.applySelection(sel)
	case k.Up, "up":
		m.filter.move(-1)
	case k.Down, "down":
		m.filter.move(1)
	case k.Select:
		m.filter.toggle()
	case k.SelectAll:
		m.filter.toggleGroup()
	}
	return m, nil
}

func (m Model) reload() (tea.Model, tea.Cmd) {
	d, err := m.loader.Reload(context.Background())
	if err != nil {
		m.mode = modeFatal
		m.fatal = err
		m.status = "Reload failed"
		return m, nil
	}
	m.session.SetDeck(d)
	m.mode = modeStudy
	m.fatal = nil
	m.refreshList()
	m.list.GotoTop()
	m.status = fmt.Sprintf("Reloaded %d flashcards. %s", d.Len(), m.countStatus())
	return m, nil
}

// refresh loads through the cache. A refetched deck replaces the session deck
// only when its cards differ, so an unchanged store keeps the reader's place.
// Open forms and the filter panel postpone the refresh to the next tick.
func (m Model) refresh() (tea.Model, tea.Cmd) {
	next := m.scheduleRefresh()
	if m.mode != modeStudy {
		return m, next
	}
	before := m.loader.FetchedAt()
	d, err := m.loader.Load(context.Background())
	if err != nil {
		m.mode = modeFatal
		m.fatal = err
		m.status = "Refresh failed"
		return m, next
	}
	if m.loader.FetchedAt().Equal(before) || slices.Equal(d.Records, m.session.Deck().Records) {
		return m, next
	}
	m.session.SetDeck(d)
	m.refreshList()
	m.list.GotoTop()
	m.status = fmt.Sprintf("Deck refreshed: %d flashcards. %s", d.Len(), m.countStatus())
	m.logger.Debug("deck refreshed", zap.Int("cards", d.Len()))
	return m, next
}

func (m Model) updateFatalMode(key string) (tea.Model, tea.Cmd) {
	switch key {
	case m.cfg.Keys.Quit:
		return m, tea.Quit
	case m.cfg.Keys.Reload:
		return m.reload()
	}
	return m, nil
}

func (m Model) startLogin() (tea.Model, tea.Cmd) {
	m.input.SetValue("")
	m.input.Placeholder = "admin code"
	m.input.EchoMode = textinput.EchoPassword
	m.input.EchoCharacter = '•'
	m.mode = modeLogin
	m.status = "Enter admin code, esc to cancel"
	cmd := m.input.Focus()
	return m, cmd
}

func (m Model) updateLoginMode(key string, msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key {
	case m.cfg.Keys.Cancel, "esc":
		m.endInput()
		m.status = "Login cancelled"
		return m, nil
	case m.cfg.Keys.Confirm, "enter":
		code := m.input.Value()
		m.endInput()
		if err := m.session.Login(code); err != nil {
			m.status = "Incorrect code."
			return m, nil
		}
		m.status = "Admin access granted!"
		return m, nil
	default:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
}

func (m Model) startAddForm() (tea.Model, tea.Cmd) {
	m.form = &cardForm{}
	m.input.EchoMode = textinput.EchoNormal
	m.input.SetValue("")
	m.input.Placeholder = m.form.currentLabel()
	m.mode = modeAdd
	m.status = m.formPrompt()
	cmd := m.input.Focus()
	return m, cmd
}

func (m Model) updateAddMode(key string, msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key {
	case m.cfg.Keys.Cancel, "esc":
		m.form = nil
		m.endInput()
		m.status = "Add cancelled"
		return m, nil
	case "tab":
		if options := m.formOptions(); len(options) > 0 {
			m.input.SetValue(complete(m.input.Value(), options))
			m.input.CursorEnd()
		}
		return m, nil
	case "down":
		m.moveFormField(1)
		return m, nil
	case "shift+tab", "up":
		m.moveFormField(-1)
		return m, nil
	case m.cfg.Keys.Confirm, "enter":
		m.form.setCurrentValue(m.input.Value())
		if m.form.index >= len(formFields())-1 {
			return m.submitForm()
		}
		m.moveFormField(1)
		return m, nil
	default:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
}

func (m *Model) moveFormField(delta int) {
	m.form.setCurrentValue(m.input.Value())
	m.form.index = wrapIndex(m.form.index+delta, len(formFields()))
	m.input.SetValue(m.form.currentValue())
	m.input.Placeholder = m.form.currentLabel()
	m.input.CursorEnd()
	m.status = m.formPrompt()
}

func (m Model) submitForm() (tea.Model, tea.Cmd) {
	f := m.form
	err := m.session.AddFlashcard(context.Background(), f.question, f.answer, f.category, f.difficulty)
	switch {
	case errors.Is(err, session.ErrValidation):
		if i := f.firstEmpty(); i >= 0 {
			f.index = i
			m.input.SetValue(f.currentValue())
			m.input.Placeholder = f.currentLabel()
		}
		m.status = "Please complete all fields before submitting."
		return m, nil
	case err != nil:
		m.status = fmt.Sprintf("save failed: %v", err)
		return m, nil
	}
	m.form = nil
	m.endInput()
	m.status = fmt.Sprintf("Flashcard added successfully! Press %s to reload and view it.", m.cfg.Keys.Reload)
	return m, nil
}

// formOptions lists existing values for the category and difficulty fields.
func (m Model) formOptions() []string {
	d := m.session.Deck()
	switch m.form.index {
	case 2:
		return d.Categories
	case 3:
		return d.Difficulties
	}
	return nil
}

func (m Model) formPrompt() string {
	if m.form == nil {
		return ""
	}
	return fmt.Sprintf("Editing %s (field %d of %d). Enter to advance, shift+tab/up to go back, Esc to cancel.",
		m.form.currentLabel(), m.form.index+1, len(formFields()))
}

func (m *Model) endInput() {
	m.input.SetValue("")
	m.input.Blur()
	m.input.EchoMode = textinput.EchoNormal
	m.mode = modeStudy
}

func (m *Model) refreshList() {
	if m.session == nil {
		return
	}
	m.list.SetContent(renderList(m.st, m.session.WorkingSet(), m.width, m.renderAnswer))
}

func (m *Model) setMarkdownWidth(width int) {
	if m.markdownStyle == "" {
		return
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStylePath(m.markdownStyle),
		glamour.WithWordWrap(cardWidth(width)-4),
	)
	if err != nil {
		m.logger.Warn("markdown renderer", zap.Error(err))
		m.markdown = nil
		return
	}
	m.markdown = r
}

func (m Model) countStatus() string {
	if m.session.Len() == 0 {
		return "No flashcards match the selected filters."
	}
	return countLine(m.session.Len())
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(m.st.title.Render("Flashcards"))
	b.WriteString("\n")
	b.WriteString(m.renderSummary())
	b.WriteString("\n\n")

	switch m.mode {
	case modeFatal:
		b.WriteString(m.st.failure.Render(fmt.Sprintf("Cannot load flashcards: %v", m.fatal)))
		b.WriteString("\n")
		b.WriteString(fmt.Sprintf("Press %s to retry or %s to quit.", m.cfg.Keys.Reload, m.cfg.Keys.Quit))
	case modeFilter:
		b.WriteString(m.filter.render(m.st))
	case modeLogin:
		b.WriteString("Admin login\n\n")
		b.WriteString(m.input.View())
	case modeAdd:
		b.WriteString("Add a new flashcard\n\n")
		b.WriteString(m.form.render(m.st))
		b.WriteString("\n")
		b.WriteString("Field: " + m.form.currentLabel())
		b.WriteString("\n")
		b.WriteString(m.input.View())
		if options := m.formOptions(); len(options) > 0 {
			b.WriteString("\n")
			b.WriteString(m.st.help.Render("existing (tab): " + strings.Join(options, ", ")))
		}
	default:
		switch {
		case m.session.Len() == 0:
			b.WriteString(m.st.warning.Render("No flashcards match the selected filters."))
		case m.view == viewList:
			b.WriteString(m.list.View())
		default:
			b.WriteString(m.renderCard())
		}
	}

	b.WriteString("\n\n")
	b.WriteString(m.renderStatus())
	b.WriteString("\n")
	b.WriteString(m.st.help.Render(m.renderHelp()))

	return b.String()
}

func (m Model) renderSummary() string {
	parts := []string{m.st.summary.Render(countLine(m.session.Len()))}
	if m.session.Selection().Shuffle {
		parts = append(parts, "shuffled")
	}
	if m.view == viewList {
		parts = append(parts, "list view")
	} else {
		parts = append(parts, "card view")
	}
	if m.session.IsAdmin() {
		parts = append(parts, m.st.success.Render("admin"))
	}
	return strings.Join(parts, " • ")
}

func (m Model) renderCard() string {
	rec, ok := m.session.Current()
	if !ok {
		return ""
	}
	body := cardHeader(m.st, rec) + "\n" + m.st.question.Render(rec.Question)
	if m.session.Revealed() {
		body += "\n\n" + m.st.heading.Render("Answer") + "\n" + m.renderAnswer(rec.Answer)
	}
	var b strings.Builder
	b.WriteString(m.st.card.Width(cardWidth(m.width)).Render(body))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("Card %d of %d", m.session.Cursor()+1, m.session.Len()))
	b.WriteString("\n")

	k := m.cfg.Keys
	prev := m.st.control
	if !m.session.HasPrevious() {
		prev = m.st.disabled
	}
	next := m.st.control
	if !m.session.HasNext() {
		next = m.st.disabled
	}
	toggle := "Show Answer"
	if m.session.Revealed() {
		toggle = "Hide Answer"
	}
	b.WriteString(prev.Render(fmt.Sprintf("« Previous (%s)", k.Previous)))
	b.WriteString("   ")
	b.WriteString(m.st.control.Render(fmt.Sprintf("%s (%s)", toggle, keyLabel(k.Reveal))))
	b.WriteString("   ")
	b.WriteString(next.Render(fmt.Sprintf("Next (%s) »", k.Next)))
	return b.String()
}

func (m Model) renderAnswer(answer string) string {
	if m.markdown == nil {
		return answer
	}
	out, err := m.markdown.Render(answer)
	if err != nil {
		return answer
	}
	return strings.Trim(out, "\n")
}

func (m Model) renderStatus() string {
	switch {
	case m.mode == modeFatal:
		return m.st.failure.Render(m.status)
	case strings.HasPrefix(m.status, "No flashcards"):
		return m.st.warning.Render(m.status)
	}
	return m.status
}

func (m Model) renderHelp() string {
	k := m.cfg.Keys
	switch m.mode {
	case modeFatal:
		return fmt.Sprintf("%s retry • %s quit", k.Reload, k.Quit)
	case modeFilter:
		return fmt.Sprintf("%s/%s move • %s toggle • %s toggle group • %s apply • %s cancel",
			k.Up, k.Down, keyLabel(k.Select), k.SelectAll, k.Confirm, k.Cancel)
	case modeLogin:
		return fmt.Sprintf("%s submit • %s cancel", k.Confirm, k.Cancel)
	case modeAdd:
		return fmt.Sprintf("%s next/save • shift+tab back • tab complete • %s cancel", k.Confirm, k.Cancel)
	}
	help := fmt.Sprintf("%s/%s prev/next • %s answer • %s view • %s filter • %s shuffle • %s reshuffle • %s reload",
		k.Previous, k.Next, keyLabel(k.Reveal), k.ToggleView, k.Filter, k.Shuffle, k.Reshuffle, k.Reload)
	if m.session.IsAdmin() {
		help += fmt.Sprintf(" • %s add • %s logout", k.Add, k.Logout)
	} else {
		help += fmt.Sprintf(" • %s admin", k.Login)
	}
	return help + fmt.Sprintf(" • %s quit", k.Quit)
}

func keyLabel(k string) string {
	if k == " " {
		return "space"
	}
	return k
}

func clampCursor(cur, n int) int {
	if n <= 0 {
		return 0
	}
	if cur < 0 {
		return 0
	}
	if cur >= n {
		return n - 1
	}
	return cur
}

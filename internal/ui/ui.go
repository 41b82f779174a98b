package ui

import (
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"taskboard/internal/config"
	"taskboard/internal/form"
	"taskboard/internal/task"
	"taskboard/internal/theme"
	"taskboard/internal/view"
)

type mode int

const (
	modeList mode = iota
	modeSearch
	modeForm
)

type Model struct {
	coll       *task.Collection
	prefs      theme.KV
	cfg        config.Config
	cats       []task.Category
	rows       []task.Task
	query      view.Query
	cursor     int
	mode       mode
	form       form.Form
	search     textinput.Model
	theme      theme.Theme
	renderer   *view.Renderer
	status     string
	statusErr  bool
	confirmDel bool
	pendingDel *task.Task
	width      int
	height     int
}

// New builds the model around an already loaded collection. prefs holds the
// theme preference.
func New(coll *task.Collection, prefs theme.KV, cfg config.Config) (Model, error) {
	cats, err := cfg.TaskCategories()
	if err != nil {
		return Model{}, err
	}
	name, err := theme.Load(prefs)
	if err != nil {
		log.Printf("theme: %v", err)
	}
	th := theme.For(name)

	si := textinput.New()
	si.Prompt = "/ "
	si.Placeholder = "Search tasks..."
	si.CharLimit = 100
	si.Width = 40

	r := view.NewRenderer(th)
	r.EditKey = cfg.Keys.Edit
	r.DeleteKey = cfg.Keys.Delete

	m := Model{
		coll:     coll,
		prefs:    prefs,
		cfg:      cfg,
		cats:     cats,
		query:    cfg.Query(),
		mode:     modeList,
		form:     form.New(cats),
		search:   si,
		theme:    th,
		renderer: r,
		status:   fmt.Sprintf("Press '%s' to add, space to toggle, '%s' to edit, '%s' to delete.", cfg.Keys.Add, cfg.Keys.Edit, cfg.Keys.Delete),
	}
	m.refresh()
	return m, nil
}

// Run blocks until the program exits. The standard logger is redirected
// while the UI owns the terminal and restored before returning.
func Run(coll *task.Collection, prefs theme.KV, cfg config.Config) error {
	prevOut, prevPrefix := log.Writer(), log.Prefix()
	defer func() {
		log.SetOutput(prevOut)
		log.SetPrefix(prevPrefix)
	}()

	if cfg.LogPath != "" {
		f, err := tea.LogToFile(cfg.LogPath, "taskboard")
		if err != nil {
			return err
		}
		defer f.Close()
	} else {
		log.SetOutput(io.Discard)
	}

	m, err := New(coll, prefs, cfg)
	if err != nil {
		return err
	}
	program := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err = program.Run()
	return err
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.form.IsOpen() {
			return m.updateFormMode(msg)
		}
		if m.confirmDel {
			return m.updateDeleteConfirm(msg.String())
		}
		return m.handleKey(msg)
	case tea.MouseMsg:
		return m.handleMouse(msg)
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.renderer.Width = msg.Width - 4
		m.search.Width = msg.Width - 10
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.mode == modeSearch {
		return m.updateSearchMode(msg)
	}
	return m.updateListMode(msg.String())
}

func (m Model) updateListMode(key string) (tea.Model, tea.Cmd) {
	k := m.cfg.Keys
	switch key {
	case "ctrl+c", k.Quit:
		return m, tea.Quit
	case k.Down, "down":
		if len(m.rows) == 0 {
			return m, nil
		}
		m.cursor = clampCursor(m.cursor+1, len(m.rows))
		return m, nil
	case k.Up, "up":
		if m.cursor > 0 {
			m.cursor = clampCursor(m.cursor-1, len(m.rows))
		}
		return m, nil
	case k.Add:
		m.mode = modeForm
		m.info("Add mode: fill the fields and press Enter")
		return m, m.form.OpenCreate()
	case k.Search:
		m.mode = modeSearch
		m.info("Search: type to filter, Enter to keep, Esc to clear")
		return m, m.search.Focus()
	case k.Filter:
		m.query.Category = view.NextCategory(m.query.Category, view.FilterCategories(m.cats, m.coll.All()))
		m.refresh()
		m.info("Category: " + m.query.Category)
		return m, nil
	case k.Sort:
		m.query.Sort = m.query.Sort.Next()
		m.refresh()
		m.info("Sort: " + m.query.Sort.Label())
		return m, nil
	case k.Theme:
		return m.toggleTheme(), nil
	}

	a := Classify(k, key, m.selected())
	switch a.Kind {
	case ActionEdit:
		t, ok := m.coll.Get(a.ID)
		if !ok {
			m.fail("Task no longer exists")
			return m, nil
		}
		m.mode = modeForm
		m.info("Edit mode: change the fields and press Enter")
		return m, m.form.OpenEdit(t)
	case ActionDelete:
		t, _ := m.coll.Get(a.ID)
		m.confirmDel = true
		m.pendingDel = &t
		m.fail(fmt.Sprintf("Delete \"%s\"? y/n", t.Title))
	case ActionToggle:
		status, err := Dispatch(m.coll, a)
		if err != nil {
			m.fail(fmt.Sprintf("toggle failed: %v", err))
			log.Printf("toggle %d: %v", a.ID, err)
			return m, nil
		}
		m.refresh()
		m.info(status)
	}
	return m, nil
}

func (m Model) updateSearchMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case m.cfg.Keys.Cancel, "esc":
		m.search.SetValue("")
		m.search.Blur()
		m.mode = modeList
		m.query.Search = ""
		m.refresh()
		m.info("Search cleared")
		return m, nil
	case m.cfg.Keys.Confirm, "enter":
		m.search.Blur()
		m.mode = modeList
		m.info(fmt.Sprintf("%d matching", len(m.rows)))
		return m, nil
	}
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	m.query.Search = m.search.Value()
	m.refresh()
	return m, cmd
}

func (m Model) updateFormMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case m.cfg.Keys.Cancel, "esc":
		m.closeForm()
		m.info("Cancelled")
		return m, nil
	case m.cfg.Keys.Confirm, "enter":
		return m.submitForm()
	case "tab":
		return m, m.form.Next()
	case "shift+tab":
		return m, m.form.Prev()
	case "left", "right":
		if m.form.Focused() == form.FieldCategory {
			delta := 1
			if msg.String() == "left" {
				delta = -1
			}
			m.form.CycleCategory(delta)
			return m, nil
		}
	}
	return m, m.form.Update(msg)
}

func (m Model) submitForm() (tea.Model, tea.Cmd) {
	sub, err := m.form.Submit()
	if err != nil {
		m.fail(err.Error())
		return m, nil
	}

	var saved task.Task
	if sub.IsCreate() {
		saved, err = m.coll.Add(sub.Title, sub.Description, sub.DueDate, sub.Category)
	} else {
		saved, err = m.coll.Update(sub.ID, sub.Title, sub.Description, sub.DueDate, sub.Category)
	}
	if err != nil {
		log.Printf("save task: %v", err)
		m.form.SetErr(err.Error())
		if errors.Is(err, task.ErrNotFound) {
			m.fail("Task no longer exists")
		} else {
			m.fail(fmt.Sprintf("save failed: %v", err))
		}
		return m, nil
	}

	m.closeForm()
	m.refresh()
	m.selectID(saved.ID)
	if sub.IsCreate() {
		m.info("Added task")
	} else {
		m.info("Updated task")
	}
	return m, nil
}

func (m *Model) closeForm() {
	m.form.Close()
	m.mode = modeList
}

func (m Model) updateDeleteConfirm(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "n", "N", "esc":
		m.info("Delete cancelled")
		m.confirmDel = false
		m.pendingDel = nil
		return m, nil
	case "y", "Y":
		if m.pendingDel == nil {
			m.info("Nothing to delete")
			m.confirmDel = false
			return m, nil
		}
		status, err := Dispatch(m.coll, Action{Kind: ActionDelete, ID: m.pendingDel.ID})
		if err != nil {
			m.fail(fmt.Sprintf("delete failed: %v", err))
		} else {
			m.refresh()
			m.info(status)
		}
		m.confirmDel = false
		m.pendingDel = nil
		return m, nil
	default:
		return m, nil
	}
}

// handleMouse closes the dialog when a press lands outside it.
func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if !m.form.IsOpen() || m.width == 0 || m.height == 0 {
		return m, nil
	}
	if msg.Action != tea.MouseActionPress || msg.Button != tea.MouseButtonLeft {
		return m, nil
	}
	dlg := m.form.View(m.theme)
	w, h := lipgloss.Width(dlg), lipgloss.Height(dlg)
	x0, y0 := centeredOffset(m.width, w), centeredOffset(m.height, h)
	inside := msg.X >= x0 && msg.X < x0+w && msg.Y >= y0 && msg.Y < y0+h
	if !inside {
		m.closeForm()
		m.info("Cancelled")
	}
	return m, nil
}

func (m *Model) info(msg string) {
	m.status, m.statusErr = msg, false
}

func (m *Model) fail(msg string) {
	m.status, m.statusErr = msg, true
}

func centeredOffset(outer, inner int) int {
	gap := outer - inner
	if gap <= 0 {
		return 0
	}
	return gap / 2
}

func (m Model) toggleTheme() Model {
	next := m.theme.Name.Toggle()
	if err := theme.Save(m.prefs, next); err != nil {
		m.fail(fmt.Sprintf("theme save failed: %v", err))
		log.Printf("theme: %v", err)
		return m
	}
	m.theme = theme.For(next)
	m.renderer.Theme = m.theme
	m.info("Theme: " + string(next))
	return m
}

// refresh recomputes the projected rows. It runs after every mutation and
// every search, filter or sort change.
func (m *Model) refresh() {
	m.rows = view.Apply(m.coll.All(), m.query)
	m.cursor = clampCursor(m.cursor, len(m.rows))
}

func (m *Model) selectID(id int64) {
	for i, t := range m.rows {
		if t.ID == id {
			m.cursor = i
			return
		}
	}
}

func (m Model) selected() *task.Task {
	if len(m.rows) == 0 {
		return nil
	}
	t := m.rows[clampCursor(m.cursor, len(m.rows))]
	return &t
}

func (m Model) View() string {
	if m.form.IsOpen() {
		dlg := m.form.View(m.theme)
		if m.width > 0 && m.height > 0 {
			return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, dlg)
		}
		return dlg
	}

	var b strings.Builder
	b.WriteString(m.renderer.Header(m.coll.All()))
	b.WriteString("\n")
	b.WriteString(m.renderer.Controls(m.query))
	b.WriteString("  ")
	b.WriteString(m.themeSwitch())
	b.WriteString("\n")
	if m.mode == modeSearch || m.query.Search != "" {
		b.WriteString(m.search.View())
		b.WriteString("\n")
	}
	b.WriteString("\n")

	cursor := -1
	if m.mode == modeList {
		cursor = m.cursor
	}
	b.WriteString(m.renderer.RenderRows(m.rows, cursor))

	b.WriteString("\n\n")
	if m.statusErr {
		b.WriteString(m.theme.Error.Render(m.status))
	} else {
		b.WriteString(m.status)
	}
	b.WriteString("\n")
	b.WriteString(m.theme.Help.Render(renderHelp(m.cfg.Keys)))

	return m.theme.Panel.Render(b.String())
}

func (m Model) themeSwitch() string {
	box := m.theme.BoxUnchecked
	if m.theme.Name == theme.Dark {
		box = m.theme.BoxChecked
	}
	return m.theme.Muted.Render(box + " dark mode")
}

func renderHelp(k config.Keymap) string {
	return fmt.Sprintf("%s/%s move • %s add • %s edit • space toggle • %s delete • %s search • %s category • %s sort • %s theme • %s quit",
		k.Up, k.Down, k.Add, k.Edit, k.Delete, k.Search, k.Filter, k.Sort, k.Theme, k.Quit)
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

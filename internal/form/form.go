package form

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"taskboard/internal/task"
	"taskboard/internal/theme"
)

type State int

const (
	Closed State = iota
	OpenCreate
	OpenEdit
)

func (s State) String() string {
	switch s {
	case OpenCreate:
		return "open-create"
	case OpenEdit:
		return "open-edit"
	default:
		return "closed"
	}
}

type Field int

const (
	FieldTitle Field = iota
	FieldDescription
	FieldDueDate
	FieldCategory
	fieldCount
)

var (
	ErrTitleRequired = errors.New("title is required")
	ErrInvalidDate   = errors.New("due date must be YYYY-MM-DD")
	ErrClosed        = errors.New("form is closed")
)

const (
	createTitle  = "Add New Task"
	editTitle    = "Edit Task"
	createSubmit = "Save Task"
	editSubmit   = "Update Task"
)

// Submission is what a successful submit hands to the collection. ID is
// only meaningful for an edit.
type Submission struct {
	ID          int64
	Title       string
	Description string
	DueDate     task.Date
	Category    task.Category

	edit bool
}

func (s Submission) IsCreate() bool { return !s.edit }

// Form is the create/edit dialog. The zero value is not usable; call New.
type Form struct {
	state   State
	id      int64
	focus   Field
	base    []task.Category
	cats    []task.Category
	catIdx  int
	title   textinput.Model
	desc    textarea.Model
	due     textinput.Model
	errText string
}

func New(cats []task.Category) Form {
	if len(cats) == 0 {
		cats = task.Categories
	}

	title := textinput.New()
	title.Placeholder = "Task title"
	title.CharLimit = 256
	title.Width = 40

	desc := textarea.New()
	desc.Placeholder = "Description (optional)"
	desc.CharLimit = 1000
	desc.ShowLineNumbers = false
	desc.SetWidth(44)
	desc.SetHeight(3)
	desc.KeyMap.InsertNewline.SetEnabled(false)

	due := textinput.New()
	due.Placeholder = "YYYY-MM-DD"
	due.CharLimit = 10
	due.Width = 12

	return Form{
		base:  slices.Clone(cats),
		cats:  slices.Clone(cats),
		title: title,
		desc:  desc,
		due:   due,
	}
}

func (f *Form) State() State      { return f.state }
func (f *Form) IsOpen() bool      { return f.state != Closed }
func (f *Form) EditingID() int64  { return f.id }
func (f *Form) Focused() Field    { return f.focus }
func (f *Form) Err() string       { return f.errText }
func (f *Form) SetErr(msg string) { f.errText = msg }
func (f *Form) Category() task.Category {
	return f.cats[f.catIdx]
}

func (f *Form) Heading() string {
	if f.state == OpenEdit {
		return editTitle
	}
	return createTitle
}

func (f *Form) SubmitLabel() string {
	if f.state == OpenEdit {
		return editSubmit
	}
	return createSubmit
}

func (f *Form) OpenCreate() tea.Cmd {
	f.reset()
	f.state = OpenCreate
	return f.setFocus(FieldTitle)
}

// OpenEdit pre-fills the dialog from t. A category outside the configured
// set is offered as an extra choice so editing never rewrites it silently.
func (f *Form) OpenEdit(t task.Task) tea.Cmd {
	f.reset()
	f.state = OpenEdit
	f.id = t.ID
	f.title.SetValue(t.Title)
	f.title.CursorEnd()
	f.desc.SetValue(t.Description)
	f.due.SetValue(t.DueDate.String())
	if i := slices.Index(f.cats, t.Category); i >= 0 {
		f.catIdx = i
	} else if t.Category != "" {
		f.cats = append(f.cats, t.Category)
		f.catIdx = len(f.cats) - 1
	}
	return f.setFocus(FieldTitle)
}

// Close hides the dialog and resets it to the create state.
func (f *Form) Close() {
	f.reset()
	f.state = Closed
}

func (f *Form) reset() {
	f.id = 0
	f.title.SetValue("")
	f.desc.SetValue("")
	f.due.SetValue("")
	f.cats = slices.Clone(f.base)
	f.catIdx = 0
	f.errText = ""
	f.blurAll()
	f.focus = FieldTitle
}

func (f *Form) Next() tea.Cmd { return f.setFocus((f.focus + 1) % fieldCount) }
func (f *Form) Prev() tea.Cmd { return f.setFocus((f.focus + fieldCount - 1) % fieldCount) }

func (f *Form) CycleCategory(delta int) {
	n := len(f.cats)
	f.catIdx = ((f.catIdx+delta)%n + n) % n
}

func (f *Form) setFocus(field Field) tea.Cmd {
	f.blurAll()
	f.focus = field
	switch field {
	case FieldTitle:
		return f.title.Focus()
	case FieldDescription:
		return f.desc.Focus()
	case FieldDueDate:
		return f.due.Focus()
	}
	return nil
}

func (f *Form) blurAll() {
	f.title.Blur()
	f.desc.Blur()
	f.due.Blur()
}

// Submit validates the fields. The form stays open; the caller closes it
// once the collection accepted the submission.
func (f *Form) Submit() (Submission, error) {
	if f.state == Closed {
		return Submission{}, ErrClosed
	}
	title := strings.TrimSpace(f.title.Value())
	if title == "" {
		f.errText = ErrTitleRequired.Error()
		return Submission{}, ErrTitleRequired
	}
	due, err := task.ParseDate(f.due.Value())
	if err != nil {
		f.errText = ErrInvalidDate.Error()
		return Submission{}, fmt.Errorf("%w: %q", ErrInvalidDate, f.due.Value())
	}
	f.errText = ""
	return Submission{
		ID:          f.id,
		Title:       title,
		Description: strings.TrimSpace(f.desc.Value()),
		DueDate:     due,
		Category:    f.Category(),
		edit:        f.state == OpenEdit,
	}, nil
}

// Update forwards msg to the focused input.
func (f *Form) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch f.focus {
	case FieldTitle:
		f.title, cmd = f.title.Update(msg)
	case FieldDescription:
		f.desc, cmd = f.desc.Update(msg)
	case FieldDueDate:
		f.due, cmd = f.due.Update(msg)
	}
	return cmd
}

func (f *Form) View(th theme.Theme) string {
	var b strings.Builder
	b.WriteString(th.Title.Render(f.Heading()))
	b.WriteString("\n\n")

	b.WriteString(f.label(th, FieldTitle, "Title"))
	b.WriteString(f.title.View())
	b.WriteString("\n")
	b.WriteString(f.label(th, FieldDescription, "Description"))
	b.WriteString("\n")
	b.WriteString(f.desc.View())
	b.WriteString("\n")
	b.WriteString(f.label(th, FieldDueDate, "Due date"))
	b.WriteString(f.due.View())
	b.WriteString("\n")
	b.WriteString(f.label(th, FieldCategory, "Category"))
	b.WriteString(f.categoryView(th))
	b.WriteString("\n\n")

	b.WriteString(th.Accent.Render("[enter] " + f.SubmitLabel()))
	b.WriteString("  ")
	b.WriteString(th.Help.Render("tab next • shift+tab prev • ←/→ category • esc close"))
	if f.errText != "" {
		b.WriteString("\n")
		b.WriteString(th.Error.Render(f.errText))
	}
	return th.Dialog.Render(b.String())
}

func (f *Form) label(th theme.Theme, field Field, name string) string {
	if f.focus == field {
		return th.Selected.Render(name) + " "
	}
	return th.Muted.Render(name) + " "
}

func (f *Form) categoryView(th theme.Theme) string {
	parts := make([]string, 0, len(f.cats))
	for i, c := range f.cats {
		if i == f.catIdx {
			parts = append(parts, th.Tag(string(c)).Render(string(c)))
			continue
		}
		parts = append(parts, th.Muted.Render(string(c)))
	}
	return strings.Join(parts, " ")
}

package view

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"taskboard/internal/task"
	"taskboard/internal/theme"
)

const (
	Placeholder   = "No tasks found. Try adding one!"
	NoDescription = "No description."
	NoDueDate     = "No due date"
	dueLayout     = "Jan 2, 2006"
)

// Renderer turns a projected task list into the list body. It holds no
// task state; every call rebuilds the whole output.
type Renderer struct {
	Theme     theme.Theme
	Width     int
	EditKey   string
	DeleteKey string
	// ShowIDs prefixes each row with the task id, for the CLI listing.
	ShowIDs bool
}

func NewRenderer(th theme.Theme) *Renderer {
	return &Renderer{Theme: th, EditKey: "e", DeleteKey: "d"}
}

// Render applies q to tasks and draws the result. cursor indexes the
// projected rows; -1 selects nothing.
func (r *Renderer) Render(tasks []task.Task, q Query, cursor int) string {
	return r.RenderRows(Apply(tasks, q), cursor)
}

func (r *Renderer) RenderRows(rows []task.Task, cursor int) string {
	if len(rows) == 0 {
		return r.Theme.Muted.Render(Placeholder)
	}
	var b strings.Builder
	for i, t := range rows {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(r.row(t, i == cursor))
	}
	return b.String()
}

func (r *Renderer) row(t task.Task, selected bool) string {
	th := r.Theme

	prefix := "  "
	if selected {
		prefix = th.Selected.Render(">") + " "
	}

	box := th.Muted.Render(th.BoxUnchecked)
	title := t.Title
	if t.Completed {
		box = th.Success.Render(th.BoxChecked)
		title = th.Done.Render(title)
	}

	meta := th.Tag(string(t.Category)).Render(string(t.Category)) + "  " + th.Accent.Render(FormatDue(t.DueDate))
	head := fmt.Sprintf("%s%s %s", prefix, box, title)
	if r.ShowIDs {
		head = fmt.Sprintf("%s%s %s %s", prefix, th.Muted.Render(fmt.Sprintf("#%d", t.ID)), box, title)
	}
	if r.Width > 0 {
		gap := r.Width - lipgloss.Width(head) - lipgloss.Width(meta)
		if gap < 2 {
			gap = 2
		}
		head += strings.Repeat(" ", gap) + meta
	} else {
		head += "  " + meta
	}

	desc := t.Description
	if desc == "" {
		desc = NoDescription
	}
	line2 := "    " + th.Muted.Render(desc)
	if selected {
		line2 += "  " + th.Help.Render(fmt.Sprintf("[%s] edit  [%s] delete", r.EditKey, r.DeleteKey))
	}
	return head + "\n" + line2
}

func FormatDue(d task.Date) string {
	if d.IsZero() {
		return NoDueDate
	}
	return "Due: " + d.Time().Format(dueLayout)
}

// Header is the title line with live counts.
func (r *Renderer) Header(all []task.Task) string {
	s := Summary(all)
	th := r.Theme
	return fmt.Sprintf("%s   %s %d  %s %d  %s %d",
		th.Title.Render("Tasks"),
		th.Success.Render("✔"), s.Done,
		th.Pending.Render("•"), s.Pending,
		th.Accent.Render("Total"), s.Total(),
	)
}

// Controls describes the active search, filter and sort.
func (r *Renderer) Controls(q Query) string {
	search := q.Search
	if search == "" {
		search = "(none)"
	}
	cat := q.Category
	if cat == "" {
		cat = AllCategories
	}
	return r.Theme.Muted.Render(fmt.Sprintf("search: %s   category: %s   sort: %s", search, cat, q.Sort.Label()))
}

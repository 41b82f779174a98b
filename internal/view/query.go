package view

import (
	"fmt"
	"slices"
	"strings"

	"taskboard/internal/task"
)

const AllCategories = "all"

type SortMode string

const (
	SortNone    SortMode = "none"
	SortDueDate SortMode = "due-date"
	SortStatus  SortMode = "status"
)

var sortModes = []SortMode{SortNone, SortDueDate, SortStatus}

func ParseSort(v string) (SortMode, error) {
	v = strings.ToLower(strings.TrimSpace(v))
	if v == "" {
		return SortNone, nil
	}
	for _, m := range sortModes {
		if string(m) == v {
			return m, nil
		}
	}
	return SortNone, fmt.Errorf("unknown sort mode %q", v)
}

func (m SortMode) Next() SortMode {
	i := slices.Index(sortModes, m)
	return sortModes[(i+1)%len(sortModes)]
}

func (m SortMode) Label() string {
	switch m {
	case SortDueDate:
		return "Due date"
	case SortStatus:
		return "Status"
	default:
		return "Default"
	}
}

// NextCategory cycles "all" -> cats[0] -> ... -> cats[n-1] -> "all".
func NextCategory(current string, cats []task.Category) string {
	if current == AllCategories {
		if len(cats) == 0 {
			return AllCategories
		}
		return string(cats[0])
	}
	i := slices.Index(cats, task.Category(current))
	if i < 0 || i == len(cats)-1 {
		return AllCategories
	}
	return string(cats[i+1])
}

// FilterCategories is cats followed by any other category found in tasks,
// in first-seen order, so hand-edited categories can still be filtered on.
func FilterCategories(cats []task.Category, tasks []task.Task) []task.Category {
	out := slices.Clone(cats)
	for _, t := range tasks {
		if t.Category != "" && !slices.Contains(out, t.Category) {
			out = append(out, t.Category)
		}
	}
	return out
}

type Query struct {
	Search   string
	Category string
	Sort     SortMode
}

// Apply filters and sorts a copy of tasks; the input order is untouched.
func Apply(tasks []task.Task, q Query) []task.Task {
	out := make([]task.Task, 0, len(tasks))
	needle := strings.ToLower(q.Search)
	for _, t := range tasks {
		if needle != "" &&
			!strings.Contains(strings.ToLower(t.Title), needle) &&
			!strings.Contains(strings.ToLower(t.Description), needle) {
			continue
		}
		if q.Category != "" && q.Category != AllCategories && string(t.Category) != q.Category {
			continue
		}
		out = append(out, t)
	}

	switch q.Sort {
	case SortDueDate:
		slices.SortStableFunc(out, compareDue)
	case SortStatus:
		slices.SortStableFunc(out, func(a, b task.Task) int {
			return boolRank(a.Completed) - boolRank(b.Completed)
		})
	}
	return out
}

// compareDue orders ascending by due date with undated tasks last.
func compareDue(a, b task.Task) int {
	switch {
	case a.DueDate.IsZero() && b.DueDate.IsZero():
		return 0
	case a.DueDate.IsZero():
		return 1
	case b.DueDate.IsZero():
		return -1
	}
	return a.DueDate.Time().Compare(b.DueDate.Time())
}

func boolRank(b bool) int {
	if b {
		return 1
	}
	return 0
}

type Stats struct {
	Done, Pending int
}

func (s Stats) Total() int { return s.Done + s.Pending }

func Summary(tasks []task.Task) Stats {
	var s Stats
	for _, t := range tasks {
		if t.Completed {
			s.Done++
		} else {
			s.Pending++
		}
	}
	return s
}

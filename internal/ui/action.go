package ui

import (
	"fmt"

	"taskboard/internal/config"
	"taskboard/internal/task"
)

type ActionKind int

const (
	ActionNone ActionKind = iota
	ActionToggle
	ActionEdit
	ActionDelete
)

func (k ActionKind) String() string {
	switch k {
	case ActionToggle:
		return "toggle-complete"
	case ActionEdit:
		return "edit"
	case ActionDelete:
		return "delete"
	default:
		return "none"
	}
}

// Action is a row-level intent resolved from a key press.
type Action struct {
	Kind ActionKind
	ID   int64
}

// Classify maps a list-mode key and the selected row to an Action. With no
// row selected every key classifies as ActionNone.
func Classify(k config.Keymap, key string, selected *task.Task) Action {
	if selected == nil {
		return Action{}
	}
	switch key {
	case k.Toggle:
		return Action{Kind: ActionToggle, ID: selected.ID}
	case k.Edit:
		return Action{Kind: ActionEdit, ID: selected.ID}
	case k.Delete:
		return Action{Kind: ActionDelete, ID: selected.ID}
	}
	return Action{}
}

// Dispatch applies the mutating actions to c and returns a status line.
// ActionEdit and ActionNone do not touch the collection.
func Dispatch(c *task.Collection, a Action) (string, error) {
	switch a.Kind {
	case ActionToggle:
		t, ok := c.Get(a.ID)
		if !ok {
			return "", fmt.Errorf("toggle %d: %w", a.ID, task.ErrNotFound)
		}
		updated, err := c.SetCompleted(a.ID, !t.Completed)
		if err != nil {
			return "", err
		}
		if updated.Completed {
			return fmt.Sprintf("Completed %q", updated.Title), nil
		}
		return fmt.Sprintf("Reopened %q", updated.Title), nil
	case ActionDelete:
		if err := c.Remove(a.ID); err != nil {
			return "", err
		}
		return "Deleted task", nil
	}
	return "", nil
}

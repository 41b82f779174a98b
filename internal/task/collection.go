package task

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"slices"
	"strings"
	"time"
)

const StorageKey = "tasks"

var (
	ErrNotFound        = errors.New("task not found")
	ErrEmptyTitle      = errors.New("title cannot be empty")
	ErrUnknownCategory = errors.New("unknown category")
)

// KV is the subset of the persistent store the collection needs.
type KV interface {
	Load(key string) (string, bool, error)
	Save(key, value string) error
}

// Collection owns the ordered task list for one session. Every mutation
// writes the whole list back to the store before returning.
type Collection struct {
	kv    KV
	now   func() time.Time
	tasks []Task
}

type Option func(*Collection)

func WithClock(now func() time.Time) Option {
	return func(c *Collection) { c.now = now }
}

func NewCollection(kv KV, opts ...Option) *Collection {
	c := &Collection{kv: kv, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Load replaces the in-memory list with what the store holds. A missing or
// unreadable value yields an empty list.
func (c *Collection) Load() error {
	raw, found, err := c.kv.Load(StorageKey)
	if err != nil {
		return err
	}
	c.tasks = nil
	if !found || strings.TrimSpace(raw) == "" {
		return nil
	}
	var tasks []Task
	if err := json.Unmarshal([]byte(raw), &tasks); err != nil {
		log.Printf("discarding stored tasks: %v", err)
		return nil
	}
	if len(tasks) > 0 {
		c.tasks = tasks
	}
	return nil
}

func (c *Collection) All() []Task {
	return slices.Clone(c.tasks)
}

func (c *Collection) Len() int { return len(c.tasks) }

func (c *Collection) Get(id int64) (Task, bool) {
	i := c.index(id)
	if i < 0 {
		return Task{}, false
	}
	return c.tasks[i], true
}

func (c *Collection) Add(title, description string, due Date, category Category) (Task, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return Task{}, ErrEmptyTitle
	}
	t := Task{
		ID:          c.nextID(),
		Title:       title,
		Description: strings.TrimSpace(description),
		DueDate:     due,
		Category:    category,
	}
	prev := c.tasks
	c.tasks = append(slices.Clone(c.tasks), t)
	if err := c.persist(prev); err != nil {
		return Task{}, err
	}
	return t, nil
}

// Update replaces every field except ID and Completed.
func (c *Collection) Update(id int64, title, description string, due Date, category Category) (Task, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return Task{}, ErrEmptyTitle
	}
	i := c.index(id)
	if i < 0 {
		return Task{}, fmt.Errorf("update %d: %w", id, ErrNotFound)
	}
	prev := c.tasks
	c.tasks = slices.Clone(c.tasks)
	t := &c.tasks[i]
	t.Title = title
	t.Description = strings.TrimSpace(description)
	t.DueDate = due
	t.Category = category
	updated := *t
	if err := c.persist(prev); err != nil {
		return Task{}, err
	}
	return updated, nil
}

func (c *Collection) SetCompleted(id int64, completed bool) (Task, error) {
	i := c.index(id)
	if i < 0 {
		return Task{}, fmt.Errorf("set completed %d: %w", id, ErrNotFound)
	}
	prev := c.tasks
	c.tasks = slices.Clone(c.tasks)
	c.tasks[i].Completed = completed
	updated := c.tasks[i]
	if err := c.persist(prev); err != nil {
		return Task{}, err
	}
	return updated, nil
}

// Remove drops every task carrying id. Removing an unknown id leaves the
// list unchanged.
func (c *Collection) Remove(id int64) error {
	prev := c.tasks
	c.tasks = slices.DeleteFunc(slices.Clone(c.tasks), func(t Task) bool { return t.ID == id })
	if len(c.tasks) == 0 {
		c.tasks = nil
	}
	return c.persist(prev)
}

func (c *Collection) index(id int64) int {
	return slices.IndexFunc(c.tasks, func(t Task) bool { return t.ID == id })
}

// nextID uses the wall clock in milliseconds, bumped past the largest id in
// use so two adds in the same millisecond never collide.
func (c *Collection) nextID() int64 {
	id := c.now().UnixMilli()
	for _, t := range c.tasks {
		if t.ID >= id {
			id = t.ID + 1
		}
	}
	return id
}

// persist writes the current list; on failure the list is reset to prev.
func (c *Collection) persist(prev []Task) error {
	tasks := c.tasks
	if tasks == nil {
		tasks = []Task{}
	}
	data, err := json.Marshal(tasks)
	if err != nil {
		c.tasks = prev
		return fmt.Errorf("encode tasks: %w", err)
	}
	if err := c.kv.Save(StorageKey, string(data)); err != nil {
		c.tasks = prev
		return fmt.Errorf("persist tasks: %w", err)
	}
	return nil
}

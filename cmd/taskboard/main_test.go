package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskboard/internal/config"
	"taskboard/internal/storage"
	"taskboard/internal/task"
	"taskboard/internal/view"
)

type cli struct {
	t       *testing.T
	cfgPath string
	dbPath  string
}

func newCLI(t *testing.T) *cli {
	t.Helper()
	t.Setenv(config.EnvDB, "")
	t.Setenv(config.EnvLog, "")
	dir := t.TempDir()
	return &cli{t: t, cfgPath: filepath.Join(dir, "config.toml"), dbPath: filepath.Join(dir, "tasks.db")}
}

func (c *cli) run(args ...string) (string, error) {
	var out, errb bytes.Buffer
	cmd := newRootCmd(&out, &errb)
	cmd.SetArgs(append([]string{"--config", c.cfgPath, "--db", c.dbPath}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func (c *cli) mustRun(args ...string) string {
	c.t.Helper()
	out, err := c.run(args...)
	require.NoError(c.t, err)
	return out
}

func (c *cli) add(args ...string) int64 {
	c.t.Helper()
	out := c.mustRun(append([]string{"add"}, args...)...)
	var id int64
	_, err := fmt.Sscanf(out, "added #%d", &id)
	require.NoError(c.t, err)
	return id
}

func TestAddListEditDoneRemove(t *testing.T) {
	c := newCLI(t)

	id := c.add("Buy", "milk", "--category", "errand", "--due", "2024-01-01")
	out := c.mustRun("ls")
	assert.Contains(t, out, "Buy milk")
	assert.Contains(t, out, fmt.Sprintf("#%d", id))
	assert.Contains(t, out, "Due: Jan 1, 2024")

	out = c.mustRun("edit", fmt.Sprint(id), "--desc", "2%")
	assert.Contains(t, out, "updated")
	assert.Contains(t, c.mustRun("ls", "--search", "2%"), "Buy milk")

	c.mustRun("done", fmt.Sprint(id))
	exported := c.mustRun("export", "--format", "json")
	var tasks []task.Task
	require.NoError(t, json.Unmarshal([]byte(exported), &tasks))
	require.Len(t, tasks, 1)
	assert.True(t, tasks[0].Completed)
	assert.Equal(t, "2%", tasks[0].Description)
	assert.Equal(t, task.CategoryErrand, tasks[0].Category)

	c.mustRun("undone", fmt.Sprint(id))
	c.mustRun("rm", fmt.Sprint(id))
	assert.Contains(t, c.mustRun("ls"), view.Placeholder)
	assert.Contains(t, c.mustRun("rm", fmt.Sprint(id)), "no task")
}

func TestAddDefaultsToFirstCategory(t *testing.T) {
	c := newCLI(t)
	c.add("call mom")
	assert.Contains(t, c.mustRun("ls", "--category", "personal"), "call mom")
	assert.Contains(t, c.mustRun("ls", "--category", "work"), view.Placeholder)
}

func TestListSortAndFilterFlags(t *testing.T) {
	c := newCLI(t)
	c.add("later", "--due", "2024-05-01")
	c.add("undated")
	c.add("sooner", "--due", "2024-02-01")

	out := c.mustRun("ls", "--sort", "due-date")
	assert.Less(t, bytes.Index([]byte(out), []byte("sooner")), bytes.Index([]byte(out), []byte("later")))
	assert.Less(t, bytes.Index([]byte(out), []byte("later")), bytes.Index([]byte(out), []byte("undated")))

	_, err := c.run("ls", "--sort", "priority")
	assert.Error(t, err)
	_, err = c.run("ls", "--category", "garden")
	assert.ErrorIs(t, err, task.ErrUnknownCategory)
}

func TestErrors(t *testing.T) {
	c := newCLI(t)

	_, err := c.run("done", "abc")
	assert.ErrorContains(t, err, "not a task id")

	_, err = c.run("done", "42")
	assert.ErrorIs(t, err, task.ErrNotFound)

	_, err = c.run("edit", "42", "--title", "x")
	assert.ErrorIs(t, err, task.ErrNotFound)

	_, err = c.run("add", "x", "--due", "tomorrow")
	assert.ErrorContains(t, err, "--due")

	_, err = c.run("add", "   ")
	assert.ErrorIs(t, err, task.ErrEmptyTitle)
}

func TestThemeCommandPersists(t *testing.T) {
	c := newCLI(t)
	assert.Equal(t, "light\n", c.mustRun("theme"))
	assert.Equal(t, "dark\n", c.mustRun("theme", "dark"))
	assert.Equal(t, "dark\n", c.mustRun("theme"))

	_, err := c.run("theme", "blue")
	assert.Error(t, err)
}

func TestExportToFile(t *testing.T) {
	c := newCLI(t)
	c.add("report", "--category", "work")
	c.add("groceries", "--category", "shopping")

	path := filepath.Join(t.TempDir(), "tasks.pdf")
	out := c.mustRun("export", "--format", "pdf", "--out", path, "--category", "work")
	assert.Contains(t, out, path)
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(b, []byte("%PDF-")))

	csvOut := c.mustRun("export", "--format", "csv", "--category", "shopping")
	assert.Contains(t, csvOut, "groceries")
	assert.NotContains(t, csvOut, "report")
}

func TestResetClearsTasksAndTheme(t *testing.T) {
	c := newCLI(t)
	c.add("one")
	c.add("two")
	c.mustRun("theme", "dark")

	_, err := c.run("reset")
	assert.ErrorContains(t, err, "--yes")
	assert.NotContains(t, c.mustRun("ls"), view.Placeholder)

	assert.Equal(t, "cleared 2 keys\n", c.mustRun("reset", "--yes"))
	assert.Contains(t, c.mustRun("ls"), view.Placeholder)
	assert.Equal(t, "light\n", c.mustRun("theme"))
	assert.Equal(t, "cleared 0 keys\n", c.mustRun("reset", "--yes"))
}

func TestMemoryRunLeavesNoDatabase(t *testing.T) {
	c := newCLI(t)
	t.Setenv(config.EnvDB, c.dbPath)
	memory := func(args ...string) string {
		var out, errb bytes.Buffer
		cmd := newRootCmd(&out, &errb)
		cmd.SetArgs(append([]string{"--config", c.cfgPath, "--memory"}, args...))
		require.NoError(t, cmd.Execute())
		return out.String()
	}

	assert.Contains(t, memory("add", "scratch"), "added #")
	assert.Contains(t, memory("ls"), view.Placeholder)
	assert.NoFileExists(t, c.dbPath)

	_, err := c.run("--memory", "ls")
	assert.Error(t, err)
}

func TestListFiltersOnStoredUnknownCategory(t *testing.T) {
	c := newCLI(t)
	store, err := storage.Open(c.dbPath)
	require.NoError(t, err)
	require.NoError(t, store.Save(task.StorageKey,
		`[{"id":1,"title":"Weed beds","description":"","dueDate":"","category":"garden","completed":false}]`))
	require.NoError(t, store.Close())
	c.add("report", "--category", "work")

	out := c.mustRun("ls", "--category", "garden")
	assert.Contains(t, out, "Weed beds")
	assert.NotContains(t, out, "report")

	_, err = c.run("ls", "--category", "orchard")
	assert.ErrorIs(t, err, task.ErrUnknownCategory)
}

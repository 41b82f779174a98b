package main

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"taskboard/internal/export"
	"taskboard/internal/task"
	"taskboard/internal/theme"
	"taskboard/internal/view"
)

func parseID(v string) (int64, error) {
	id, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("not a task id: %s", v)
	}
	return id, nil
}

type queryFlags struct {
	search, category, sort string
}

func (q *queryFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&q.search, "search", "", "keep tasks whose title or description contains this text")
	cmd.Flags().StringVar(&q.category, "category", "", "category to show, or \"all\" (default from config)")
	cmd.Flags().StringVar(&q.sort, "sort", "", "none, due-date or status (default from config)")
}

func (q *queryFlags) build(a *app) (view.Query, error) {
	out := a.cfg.Query()
	out.Search = q.search
	if q.category != "" {
		if strings.EqualFold(q.category, view.AllCategories) {
			out.Category = view.AllCategories
		} else {
			c, err := task.ParseCategory(q.category)
			if err != nil {
				stored := view.FilterCategories(nil, a.coll.All())
				if !slices.Contains(stored, task.Category(q.category)) {
					return out, err
				}
				c = task.Category(q.category)
			}
			out.Category = string(c)
		}
	}
	if q.sort != "" {
		mode, err := view.ParseSort(q.sort)
		if err != nil {
			return out, err
		}
		out.Sort = mode
	}
	return out, nil
}

func newAddCmd(a *app) *cobra.Command {
	var desc, due, category string
	cmd := &cobra.Command{
		Use:   "add <title...>",
		Short: "Add a new task (title can be multiple words)",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(func() error {
				d, err := task.ParseDate(due)
				if err != nil {
					return fmt.Errorf("--due: %w", err)
				}
				cat, err := a.categoryOrDefault(category)
				if err != nil {
					return err
				}
				t, err := a.coll.Add(strings.Join(args, " "), desc, d, cat)
				if err != nil {
					return err
				}
				fmt.Fprintf(a.stdout, "added #%d %s\n", t.ID, t.Title)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&desc, "desc", "", "description")
	cmd.Flags().StringVar(&due, "due", "", "due date, YYYY-MM-DD")
	cmd.Flags().StringVar(&category, "category", "", "category (default: first configured)")
	return cmd
}

func (a *app) categoryOrDefault(v string) (task.Category, error) {
	if v != "" {
		return task.ParseCategory(v)
	}
	cats, err := a.cfg.TaskCategories()
	if err != nil {
		return "", err
	}
	return cats[0], nil
}

func newListCmd(a *app) *cobra.Command {
	var q queryFlags
	cmd := &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List tasks",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(func() error {
				query, err := q.build(a)
				if err != nil {
					return err
				}
				name, err := theme.Load(a.store)
				if err != nil {
					return err
				}
				r := view.NewRenderer(theme.For(name))
				r.ShowIDs = true
				fmt.Fprintln(a.stdout, r.Header(a.coll.All()))
				fmt.Fprintln(a.stdout, r.Controls(query))
				fmt.Fprintln(a.stdout)
				fmt.Fprintln(a.stdout, r.Render(a.coll.All(), query, -1))
				return nil
			})
		},
	}
	q.register(cmd)
	return cmd
}

func newDoneCmd(a *app, completed bool) *cobra.Command {
	use, short, verb := "done <id>", "Mark a task as completed", "completed"
	if !completed {
		use, short, verb = "undone <id>", "Mark a task as not completed", "reopened"
	}
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return a.run(func() error {
				t, err := a.coll.SetCompleted(id, completed)
				if err != nil {
					return err
				}
				fmt.Fprintf(a.stdout, "%s #%d %s\n", verb, t.ID, t.Title)
				return nil
			})
		},
	}
}

func newEditCmd(a *app) *cobra.Command {
	var title, desc, due, category string
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change a task's title, description, due date or category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return a.run(func() error {
				cur, ok := a.coll.Get(id)
				if !ok {
					return fmt.Errorf("edit %d: %w", id, task.ErrNotFound)
				}
				flags := cmd.Flags()
				if flags.Changed("title") {
					cur.Title = title
				}
				if flags.Changed("desc") {
					cur.Description = desc
				}
				if flags.Changed("due") {
					d, err := task.ParseDate(due)
					if err != nil {
						return fmt.Errorf("--due: %w", err)
					}
					cur.DueDate = d
				}
				if flags.Changed("category") {
					c, err := task.ParseCategory(category)
					if err != nil {
						return err
					}
					cur.Category = c
				}
				t, err := a.coll.Update(id, cur.Title, cur.Description, cur.DueDate, cur.Category)
				if err != nil {
					return err
				}
				fmt.Fprintf(a.stdout, "updated #%d %s\n", t.ID, t.Title)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "new title")
	cmd.Flags().StringVar(&desc, "desc", "", "new description")
	cmd.Flags().StringVar(&due, "due", "", "new due date, YYYY-MM-DD (empty clears it)")
	cmd.Flags().StringVar(&category, "category", "", "new category")
	return cmd
}

func newRemoveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Delete a task",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return a.run(func() error {
				if _, ok := a.coll.Get(id); !ok {
					fmt.Fprintf(a.stdout, "no task #%d\n", id)
					return nil
				}
				if err := a.coll.Remove(id); err != nil {
					return err
				}
				fmt.Fprintf(a.stdout, "removed #%d\n", id)
				return nil
			})
		},
	}
}

func newThemeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:       "theme [dark|light]",
		Short:     "Show or set the color theme",
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{string(theme.Dark), string(theme.Light)},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(func() error {
				if len(args) == 1 {
					if err := theme.Save(a.store, theme.Parse(args[0])); err != nil {
						return err
					}
				}
				name, err := theme.Load(a.store)
				if err != nil {
					return err
				}
				fmt.Fprintln(a.stdout, name)
				return nil
			})
		},
	}
}

func newExportCmd(a *app) *cobra.Command {
	var q queryFlags
	var format, out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the filtered task list as json, csv or pdf",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(func() error {
				query, err := q.build(a)
				if err != nil {
					return err
				}
				rows := view.Apply(a.coll.All(), query)
				if out == "" || out == "-" {
					if err := export.Write(a.stdout, rows, format); err != nil {
						return fmt.Errorf("export: %w", err)
					}
					return nil
				}
				b, err := export.Export(rows, format)
				if err != nil {
					return fmt.Errorf("export: %w", err)
				}
				if err := os.WriteFile(out, b, 0o644); err != nil {
					return fmt.Errorf("write: %w", err)
				}
				fmt.Fprintf(a.stdout, "Exported -> %s\n", out)
				return nil
			})
		},
	}
	q.register(cmd)
	cmd.Flags().StringVar(&format, "format", export.FormatJSON, "json, csv or pdf")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output path (default stdout)")
	return cmd
}

func newResetCmd(a *app) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete every stored task and the theme preference",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return errors.New("reset deletes all tasks; pass --yes to confirm")
			}
			return a.run(func() error {
				keys, err := a.store.Keys()
				if err != nil {
					return err
				}
				for _, k := range keys {
					if err := a.store.Delete(k); err != nil {
						return fmt.Errorf("reset: %w", err)
					}
				}
				fmt.Fprintf(a.stdout, "cleared %d keys\n", len(keys))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm the reset")
	return cmd
}

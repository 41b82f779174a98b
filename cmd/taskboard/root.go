package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"taskboard/internal/config"
	"taskboard/internal/storage"
	"taskboard/internal/task"
	"taskboard/internal/ui"
)

// app is the per-invocation state shared by every subcommand.
type app struct {
	stdout, stderr io.Writer
	configPath     string
	dbPath         string
	memory         bool

	cfg   config.Config
	store storage.Backend
	coll  *task.Collection
}

func (a *app) open() error {
	path := a.configPath
	if path == "" {
		path = config.ResolveConfigPath()
	}
	cfg, err := config.LoadOrCreate(path)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if a.dbPath != "" {
		cfg.DBPath = a.dbPath
	}

	var store storage.Backend
	if a.memory {
		store = storage.NewMemory()
	} else {
		db, err := storage.Open(cfg.DBPath)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		store = db
	}
	coll := task.NewCollection(store)
	if err := coll.Load(); err != nil {
		store.Close()
		return fmt.Errorf("failed to load tasks: %w", err)
	}

	a.cfg, a.store, a.coll = cfg, store, coll
	return nil
}

func (a *app) close() {
	if a.store != nil {
		a.store.Close()
		a.store = nil
	}
}

// run opens the store around fn.
func (a *app) run(fn func() error) error {
	if err := a.open(); err != nil {
		return err
	}
	defer a.close()
	return fn()
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	a := &app{stdout: stdout, stderr: stderr}

	root := &cobra.Command{
		Use:           "taskboard",
		Short:         "Create, complete, filter and search tasks",
		Long:          "taskboard keeps a personal task list in a local SQLite file.\nRun without arguments for the interactive view.",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(func() error {
				if err := ui.Run(a.coll, a.store, a.cfg); err != nil {
					return fmt.Errorf("error running program: %w", err)
				}
				return nil
			})
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/taskboard/config.toml)")
	root.PersistentFlags().StringVar(&a.dbPath, "db", "", "database file (overrides db_path)")
	root.PersistentFlags().BoolVar(&a.memory, "memory", false, "keep everything in memory for this run; nothing is saved")
	root.MarkFlagsMutuallyExclusive("db", "memory")

	root.AddCommand(
		newAddCmd(a),
		newListCmd(a),
		newDoneCmd(a, true),
		newDoneCmd(a, false),
		newEditCmd(a),
		newRemoveCmd(a),
		newThemeCmd(a),
		newExportCmd(a),
		newResetCmd(a),
	)
	return root
}

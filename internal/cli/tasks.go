package cli

import (
	"errors"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"tugestor-cli/internal/api"
	"tugestor-cli/internal/tasklist"
)

func newTasksCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "tasks",
		Aliases: []string{"tareas"},
		Short:   "Task commands",
	}

	cmd.AddCommand(newTasksListCmd(app))
	cmd.AddCommand(newTasksShowCmd(app))
	cmd.AddCommand(newTasksStateCmd(app))
	cmd.AddCommand(newTasksCreateCmd(app))
	cmd.AddCommand(newTasksUpdateCmd(app))
	cmd.AddCommand(newTasksCompleteCmd(app))
	cmd.AddCommand(newTasksDeleteCmd(app))
	cmd.AddCommand(newTasksPublishCmd(app))

	return cmd
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id <= 0 {
		return 0, errInvalidArg("id", s, "a positive integer")
	}
	return id, nil
}

func sortKeyNames() string {
	names := make([]string, 0, len(api.SortKeys))
	for _, k := range api.SortKeys {
		names = append(names, string(k))
	}
	return strings.Join(names, "|")
}

func filterKindNames() string {
	names := make([]string, 0, len(api.FilterKinds))
	for _, k := range api.FilterKinds {
		names = append(names, string(k))
	}
	return strings.Join(names, "|")
}

func newTasksListCmd(app *App) *cobra.Command {
	var sortKey string
	var filterKind string
	var filterValue string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks (server-side sort or filter, never both)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if sortKey != "" && (filterKind != "" || filterValue != "") {
				return writeErr(cmd, errors.New("--sort cannot be combined with --filter"))
			}
			if (filterKind == "") != (filterValue == "") {
				return writeErr(cmd, errors.New("--filter and --value must be given together"))
			}
			ctl, _, err := app.controller()
			if err != nil {
				return writeErr(cmd, err)
			}

			var req tasklist.Request
			switch {
			case sortKey != "":
				key := api.SortKey(strings.ToLower(strings.TrimSpace(sortKey)))
				if !key.Valid() {
					return writeErr(cmd, errInvalidArg("--sort", sortKey, sortKeyNames()))
				}
				req, _ = ctl.SetSort(key)
			case filterKind != "":
				kind := api.FilterKind(strings.ToLower(strings.TrimSpace(filterKind)))
				if !kind.Valid() {
					return writeErr(cmd, errInvalidArg("--filter", filterKind, filterKindNames()))
				}
				v, err := tasklist.NormalizeFilterValue(kind, filterValue)
				if err != nil {
					return writeErr(cmd, err)
				}
				req, _ = ctl.SetFilter(kind, v)
			default:
				req, _ = ctl.Mount()
			}

			res := ctl.Fetch(ctxOf(cmd), req)
			ctl.Apply(res)
			if res.Err != nil {
				return writeErr(cmd, res.Err)
			}
			return writeOut(cmd, app, map[string]any{"data": taskRows(ctl.Tasks())})
		},
	}
	cmd.Flags().StringVar(&sortKey, "sort", "", "Sort key ("+sortKeyNames()+")")
	cmd.Flags().StringVar(&filterKind, "filter", "", "Filter kind ("+filterKindNames()+")")
	cmd.Flags().StringVar(&filterValue, "value", "", "Filter value")
	return cmd
}

func newTasksShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <task-id>",
		Short: "Show a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			c, err := app.client()
			if err != nil {
				return writeErr(cmd, err)
			}
			t, err := c.GetTask(ctxOf(cmd), id)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": oneTask(t)})
		},
	}
}

func newTasksStateCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "state <task-id>",
		Short: "Show the server-derived state of a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			c, err := app.client()
			if err != nil {
				return writeErr(cmd, err)
			}
			st, err := c.TaskState(ctxOf(cmd), id)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": st})
		},
	}
}

type taskFlags struct {
	form tasklist.TaskForm
}

func (f *taskFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.form.Title, "title", "", "Title")
	cmd.Flags().StringVar(&f.form.Description, "description", "", "Description (markdown)")
	cmd.Flags().StringVar(&f.form.Time, "time", "", "Estimated time in minutes")
	cmd.Flags().StringVar(&f.form.Priority, "priority", "", "Priority (BAJA|MEDIA|ALTA|IMPRESCINDIBLE)")
	cmd.Flags().StringVar(&f.form.DueDate, "due", "", "Due date (YYYY-MM-DDTHH:MM[:SS])")
	cmd.Flags().StringVar(&f.form.CategoryID, "category", "", "Category id")
}

// overlay copies the flags the user set onto base.
func (f *taskFlags) overlay(cmd *cobra.Command, base tasklist.TaskForm) tasklist.TaskForm {
	set := func(name string, dst *string, v string) {
		if cmd.Flags().Changed(name) {
			*dst = v
		}
	}
	set("title", &base.Title, f.form.Title)
	set("description", &base.Description, f.form.Description)
	set("time", &base.Time, f.form.Time)
	set("priority", &base.Priority, f.form.Priority)
	set("due", &base.DueDate, f.form.DueDate)
	set("category", &base.CategoryID, f.form.CategoryID)
	return base
}

func saveTask(cmd *cobra.Command, app *App, id int64, form tasklist.TaskForm) error {
	ctl, _, err := app.controller()
	if err != nil {
		return writeErr(cmd, err)
	}
	t, msg, err := ctl.Save(ctxOf(cmd), id, form)
	if err != nil {
		return writeErr(cmd, errors.New(msg))
	}
	return writeOut(cmd, app, map[string]any{"data": oneTask(t)})
}

func newTasksCreateCmd(app *App) *cobra.Command {
	var f taskFlags
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a task",
		RunE: func(cmd *cobra.Command, args []string) error {
			return saveTask(cmd, app, 0, f.form)
		},
	}
	f.bind(cmd)
	return cmd
}

func newTasksUpdateCmd(app *App) *cobra.Command {
	var f taskFlags
	cmd := &cobra.Command{
		Use:   "update <task-id>",
		Short: "Update a task (unset flags keep their current value)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			c, err := app.client()
			if err != nil {
				return writeErr(cmd, err)
			}
			cur, err := c.GetTask(ctxOf(cmd), id)
			if err != nil {
				return writeErr(cmd, err)
			}
			return saveTask(cmd, app, id, f.overlay(cmd, tasklist.FormFromTask(cur)))
		},
	}
	f.bind(cmd)
	return cmd
}

func newTasksCompleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "complete <task-id>",
		Short: "Mark a task as completed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			c, err := app.client()
			if err != nil {
				return writeErr(cmd, err)
			}
			t, err := c.CompleteTask(ctxOf(cmd), id)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": oneTask(t)})
		},
	}
}

func newTasksDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <task-id>",
		Short: "Delete a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			ctl, _, err := app.controller()
			if err != nil {
				return writeErr(cmd, err)
			}
			if msg, err := ctl.Delete(ctxOf(cmd), id); err != nil {
				return writeErr(cmd, errors.New(msg))
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"idTarea": id, "deleted": true}})
		},
	}
}

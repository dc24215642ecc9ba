package cli

import (
	"github.com/spf13/cobra"

	"tugestor-cli/internal/publish"
)

func newTasksPublishCmd(app *App) *cobra.Command {
	var to string
	var opt publish.WriteOptions

	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Write the task list as markdown (index.md + tasks/<id>.md)",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := app.client()
			if err != nil {
				return writeErr(cmd, err)
			}
			ctx := ctxOf(cmd)
			tasks, err := c.ListTasks(ctx)
			if err != nil {
				return writeErr(cmd, err)
			}
			cats, err := c.ListCategories(ctx)
			if err != nil {
				return writeErr(cmd, err)
			}
			res, err := publish.WriteTasks(tasks, cats, to, opt)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": res})
		},
	}
	cmd.Flags().StringVar(&to, "to", "", "Output directory")
	cmd.Flags().BoolVar(&opt.IncludeDone, "include-done", false, "Include completed tasks")
	cmd.Flags().BoolVar(&opt.Overwrite, "overwrite", false, "Replace existing files")
	return cmd
}

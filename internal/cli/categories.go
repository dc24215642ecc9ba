package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"tugestor-cli/internal/model"
)

func newCategoriesCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "categories",
		Aliases: []string{"categorias"},
		Short:   "Category commands",
	}

	cmd.AddCommand(newCategoriesListCmd(app))
	cmd.AddCommand(newCategoriesCreateCmd(app))
	cmd.AddCommand(newCategoriesUpdateCmd(app))
	cmd.AddCommand(newCategoriesDeleteCmd(app))
	cmd.AddCommand(newCategoriesSearchCmd(app))

	return cmd
}

func newCategoriesListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List categories",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := app.client()
			if err != nil {
				return writeErr(cmd, err)
			}
			cats, err := c.ListCategories(ctxOf(cmd))
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": categoryRows(cats)})
		},
	}
}

func newCategoriesSearchCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "search <partial-name>",
		Short: "Search categories by name (server-side)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := app.client()
			if err != nil {
				return writeErr(cmd, err)
			}
			cats, err := c.SearchCategories(ctxOf(cmd), args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": categoryRows(cats)})
		},
	}
}

func newCategoriesCreateCmd(app *App) *cobra.Command {
	var req model.CategoryRequest
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a category",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := app.client()
			if err != nil {
				return writeErr(cmd, err)
			}
			req.Name = strings.TrimSpace(req.Name)
			cat, err := c.CreateCategory(ctxOf(cmd), req)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": cat})
		},
	}
	cmd.Flags().StringVar(&req.Name, "name", "", "Name (required)")
	cmd.Flags().StringVar(&req.Color, "color", "", "Color, e.g. #22c55e")
	cmd.Flags().StringVar(&req.Icon, "icon", "", "Icon glyph")
	return cmd
}

func newCategoriesUpdateCmd(app *App) *cobra.Command {
	var req model.CategoryRequest
	cmd := &cobra.Command{
		Use:   "update <category-id>",
		Short: "Replace a category's name, color and icon",
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
			req.Name = strings.TrimSpace(req.Name)
			cat, err := c.UpdateCategory(ctxOf(cmd), id, req)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": cat})
		},
	}
	cmd.Flags().StringVar(&req.Name, "name", "", "Name (required)")
	cmd.Flags().StringVar(&req.Color, "color", "", "Color (cleared when omitted)")
	cmd.Flags().StringVar(&req.Icon, "icon", "", "Icon glyph (cleared when omitted)")
	return cmd
}

func newCategoriesDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <category-id>",
		Short: "Delete a category (its tasks are kept without a category)",
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
			if err := c.DeleteCategory(ctxOf(cmd), id); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"idCategoria": id, "deleted": true}})
		},
	}
}

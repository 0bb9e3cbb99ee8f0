package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"spendgate/internal/cli"
	"spendgate/internal/ledger"
)

func categoriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "categories",
		Short: "Manage spending categories",
		Long:  `List, add, update, and delete the spending categories that define purchase policy.`,
	}

	cmd.AddCommand(listCategoriesCmd())
	cmd.AddCommand(addCategoryCmd())
	cmd.AddCommand(updateCategoryCmd())
	cmd.AddCommand(deleteCategoryCmd())

	return cmd
}

func listCategoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all categories",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			categories, err := store.GetCategories(ctx)
			if err != nil {
				return fmt.Errorf("failed to get categories: %w", err)
			}

			if len(categories) == 0 {
				fmt.Println(cli.InfoStyle.Render("No categories found. Use 'spendgate categories add' to create one."))
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			defer func() { _ = w.Flush() }()

			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
				cli.HeaderStyle.Render("Name"),
				cli.HeaderStyle.Render("Limit"),
				cli.HeaderStyle.Render("Remaining"),
				cli.HeaderStyle.Render("Approved Domains"))
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
				strings.Repeat("-", 16),
				strings.Repeat("-", 10),
				strings.Repeat("-", 10),
				strings.Repeat("-", 40))

			for _, cat := range categories {
				domains := strings.Join(cat.Domains, ", ")
				if domains == "" {
					domains = cli.SubtleStyle.Render("(none)")
				}
				fmt.Fprintf(w, "%s\t%.2f\t%.2f\t%s\n",
					cat.Name, cat.InitialLimit, cat.RemainingBudget, domains)
			}

			return nil
		},
	}
}

func addCategoryCmd() *cobra.Command {
	var (
		limit   float64
		domains []string
	)

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a new category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			cat, err := store.CreateCategory(ctx, args[0], limit, domains)
			if err != nil {
				return fmt.Errorf("failed to create category: %w", err)
			}

			fmt.Println(cli.SuccessStyle.Render(
				fmt.Sprintf("Created category %q with limit %.2f", cat.Name, cat.InitialLimit)))
			return nil
		},
	}

	cmd.Flags().Float64VarP(&limit, "limit", "l", 0, "initial spending limit")
	cmd.Flags().StringSliceVarP(&domains, "domains", "d", nil, "approved domains (comma separated)")

	return cmd
}

func updateCategoryCmd() *cobra.Command {
	var (
		newName string
		limit   float64
		domains []string
	)

	cmd := &cobra.Command{
		Use:   "update <name>",
		Short: "Update a category's name, limit, or approved domains",
		Long: `Update a category. A limit change rescales the remaining budget to
preserve what has already been spent, never reset. Domains given with
--domains replace the approved set wholesale.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			name := args[0]

			if !cmd.Flags().Changed("rename") &&
				!cmd.Flags().Changed("limit") &&
				!cmd.Flags().Changed("domains") {
				return fmt.Errorf("nothing to update: pass --rename, --limit, or --domains")
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if cmd.Flags().Changed("limit") {
				ldg := ledger.New(store)
				cat, err := ldg.SetLimit(ctx, name, limit)
				if err != nil {
					return fmt.Errorf("failed to update limit: %w", err)
				}
				fmt.Println(cli.SuccessStyle.Render(
					fmt.Sprintf("Updated %q: limit %.2f, remaining %.2f", cat.Name, cat.InitialLimit, cat.RemainingBudget)))
			}

			if cmd.Flags().Changed("domains") {
				if err := store.ReplaceCategoryDomains(ctx, name, domains); err != nil {
					return fmt.Errorf("failed to replace domains: %w", err)
				}
				fmt.Println(cli.SuccessStyle.Render(
					fmt.Sprintf("Replaced approved domains for %q (%d domains)", name, len(domains))))
			}

			// Rename last so the other updates address the existing name.
			if cmd.Flags().Changed("rename") {
				if err := store.RenameCategory(ctx, name, newName); err != nil {
					return fmt.Errorf("failed to rename category: %w", err)
				}
				fmt.Println(cli.SuccessStyle.Render(
					fmt.Sprintf("Renamed %q to %q", name, newName)))
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&newName, "rename", "", "new category name")
	cmd.Flags().Float64VarP(&limit, "limit", "l", 0, "new spending limit (remaining budget is rescaled)")
	cmd.Flags().StringSliceVarP(&domains, "domains", "d", nil, "replacement approved domains (comma separated)")

	return cmd
}

func deleteCategoryCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			if !force {
				return fmt.Errorf("deleting a category removes its whitelist and budget; re-run with --force to confirm")
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if err := store.DeleteCategory(ctx, args[0]); err != nil {
				return fmt.Errorf("failed to delete category: %w", err)
			}

			fmt.Println(cli.SuccessStyle.Render(fmt.Sprintf("Deleted category %q", args[0])))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "skip confirmation")

	return cmd
}

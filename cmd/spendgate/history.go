package main

import (
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"spendgate/internal/cli"
	"spendgate/internal/sheets"
)

func historyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect the audit trail",
		Long:  `List past authorization decisions or export them to Google Sheets.`,
	}

	cmd.AddCommand(listHistoryCmd())
	cmd.AddCommand(exportHistoryCmd())

	return cmd
}

func listHistoryCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List past decisions, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			records, err := store.GetHistory(ctx, limit)
			if err != nil {
				return fmt.Errorf("failed to get history: %w", err)
			}

			if len(records) == 0 {
				fmt.Println(cli.InfoStyle.Render("No decisions recorded yet."))
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			defer func() { _ = w.Flush() }()

			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				cli.HeaderStyle.Render("Time"),
				cli.HeaderStyle.Render("Category"),
				cli.HeaderStyle.Render("Amount"),
				cli.HeaderStyle.Render("Decision"),
				cli.HeaderStyle.Render("Task"))

			for _, rec := range records {
				task := rec.Task
				if len(task) > 60 {
					task = task[:57] + "..."
				}
				fmt.Fprintf(w, "%s\t%s\t%.2f\t%s\t%s\n",
					parseTimestamp(rec.Timestamp),
					rec.Category,
					rec.Amount,
					cli.DecisionStyle(rec.Decision == "ALLOW").Render(string(rec.Decision)),
					task)
			}

			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 50, "maximum records to show (0 for all)")

	return cmd
}

func exportHistoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export",
		Short: "Export the audit trail to Google Sheets",
		Long: `Export all recorded decisions and current category balances to a Google
spreadsheet. Requires Google Sheets credentials in the environment; see
GOOGLE_SHEETS_* variables.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			logger := slog.Default()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			records, err := store.GetHistory(ctx, 0)
			if err != nil {
				return fmt.Errorf("failed to get history: %w", err)
			}
			categories, err := store.GetCategories(ctx)
			if err != nil {
				return fmt.Errorf("failed to get categories: %w", err)
			}

			cfg := sheets.DefaultConfig()
			if err := cfg.LoadFromEnv(); err != nil {
				return err
			}

			writer, err := sheets.NewWriter(ctx, cfg, logger)
			if err != nil {
				return fmt.Errorf("failed to create sheets writer: %w", err)
			}

			if err := writer.Write(ctx, records, categories); err != nil {
				return fmt.Errorf("export failed: %w", err)
			}

			fmt.Println(cli.SuccessStyle.Render(
				fmt.Sprintf("Exported %d decisions across %d categories", len(records), len(categories))))
			return nil
		},
	}
}

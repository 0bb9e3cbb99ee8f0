package main

import (
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"spendgate/internal/cli"
	"spendgate/internal/engine"
)

func checkCmd() *cobra.Command {
	var (
		category string
		amount   float64
	)

	cmd := &cobra.Command{
		Use:   "check <task>",
		Short: "Evaluate a single proposed purchase",
		Long: `Run one proposed purchase through the policy engine and print the
verdict. The evaluation is real: an ALLOW deducts from the category's
remaining budget and both outcomes are recorded in the audit trail.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := slog.Default()
			task := args[0]

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			classifier, closeClassifier, err := newClassifier(logger)
			if err != nil {
				return err
			}
			if closeClassifier != nil {
				defer closeClassifier()
			}

			eng, _ := newEngine(store, classifier, logger)

			verdict, err := eng.Evaluate(ctx, engine.Request{
				Task:     task,
				Category: category,
				Amount:   amount,
			})
			if err != nil {
				return fmt.Errorf("evaluation failed: %w", err)
			}

			fmt.Println(cli.DecisionStyle(verdict.Allowed()).Bold(true).Render(string(verdict.Decision)))
			fmt.Println(cli.SubtleStyle.Render(verdict.SecuritySummary))
			fmt.Println()

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "Domain:\t%s\n", verdict.ExtractedData.TargetDomain)
			fmt.Fprintf(w, "Category:\t%s\n", verdict.ContextVerification.AccountCategory)
			fmt.Fprintf(w, "Context:\t%s\n", verdict.ContextVerification.ContextReasoning)
			fmt.Fprintf(w, "Whitelist:\t%s\n", verdict.WhitelistVerification.WhitelistReasoning)
			fmt.Fprintf(w, "Limit:\t%.2f\n", verdict.LimitVerification.InitialLimit)
			fmt.Fprintf(w, "Remaining:\t%.2f\n", verdict.LimitVerification.RemainingBudget)
			return w.Flush()
		},
	}

	cmd.Flags().StringVarP(&category, "category", "c", "", "active account category (required)")
	cmd.Flags().Float64VarP(&amount, "amount", "a", 0, "transaction amount")
	_ = cmd.MarkFlagRequired("category")

	return cmd
}

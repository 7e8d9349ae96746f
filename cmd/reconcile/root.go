package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/wichananm65/inventory-dashboard/internal/recommendation"
)

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"table", "json", "csv"}

type options struct {
	RulesPath string
	MLPath    string
	Format    string
}

// NewRootCommand creates the reconcile command.
func NewRootCommand() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Compare rule engine and ML stock recommendations",
		Long: "Reads a rule engine payload and an ML payload (bare arrays or objects with\n" +
			"items/content), counts both feeds per category and lists the products\n" +
			"on which they disagree.",
		SilenceUsage: true,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReconcile(cmd.OutOrStdout(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.RulesPath, "rules", "", "path to the rule engine payload (required)")
	cmd.Flags().StringVar(&opts.MLPath, "ml", "", "path to the ML payload (required)")
	cmd.Flags().StringVar(&opts.Format, "format", "table", "output format (table|json|csv)")
	_ = cmd.MarkFlagRequired("rules")
	_ = cmd.MarkFlagRequired("ml")

	return cmd
}

func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

func runReconcile(w io.Writer, opts *options) error {
	rulesData, err := os.ReadFile(opts.RulesPath)
	if err != nil {
		return fmt.Errorf("read rules: %w", err)
	}
	mlData, err := os.ReadFile(opts.MLPath)
	if err != nil {
		return fmt.Errorf("read ml: %w", err)
	}

	cmp := recommendation.Compare(
		recommendation.NormalizeRules(recommendation.ParseItems(rulesData)),
		recommendation.NormalizeMLs(recommendation.ParseItems(mlData)),
	)

	switch opts.Format {
	case "json":
		out, err := json.MarshalIndent(cmp, "", "  ")
		if err != nil {
			return fmt.Errorf("encode comparison: %w", err)
		}
		_, err = fmt.Fprintf(w, "%s\n", out)
		return err
	case "csv":
		return recommendation.WriteConflictsCSV(w, cmp.Conflicts)
	default:
		return writeTable(w, cmp)
	}
}

func writeTable(w io.Writer, cmp recommendation.Comparison) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "CATEGORY\tRULE\tML")
	for _, c := range recommendation.Categories {
		fmt.Fprintf(tw, "%s\t%d\t%d\n", c, cmp.RuleCounts[c], cmp.MLCounts[c])
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(w, "\nmatched: %d  agreements: %d  conflicts: %d\n", cmp.Matched, cmp.Agreements, len(cmp.Conflicts))
	if len(cmp.Conflicts) == 0 {
		return nil
	}

	fmt.Fprintln(w)
	fmt.Fprintln(tw, "PRODUCT ID\tPRODUCT\tRULE\tML")
	for _, c := range cmp.Conflicts {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", c.ProductID, c.ProductName, c.RuleCategory, c.MLCategory)
	}
	return tw.Flush()
}

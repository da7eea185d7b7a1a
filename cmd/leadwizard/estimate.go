package main

import (
	"fmt"
	"strconv"

	"charm.land/lipgloss/v2"
	"charm.land/lipgloss/v2/table"
	"github.com/mark3labs/leadwizard/internal/config"
	"github.com/mark3labs/leadwizard/internal/pricing"
	"github.com/mark3labs/leadwizard/internal/product"
	"github.com/spf13/cobra"
)

var estimateFlags struct {
	product    string
	smoker     bool
	dependents int
}

var estimateCmd = &cobra.Command{
	Use:   "estimate",
	Short: "Print the illustrative monthly premium estimate",
	Long: `Print the illustrative monthly premium estimate used by the quote wizard.

Without --product, prints the estimate for every product. The figure is a
heuristic for illustration only and is not an offer of coverage.`,
	RunE: runEstimate,
}

func init() {
	estimateCmd.Flags().StringVarP(&estimateFlags.product, "product", "p", "", "Product to estimate")
	estimateCmd.Flags().BoolVar(&estimateFlags.smoker, "smoker", false, "Apply the tobacco surcharge")
	estimateCmd.Flags().IntVarP(&estimateFlags.dependents, "dependents", "d", 0, "Number of dependents")
}

func runEstimate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	products := product.All()
	if estimateFlags.product != "" {
		p, err := product.Parse(estimateFlags.product)
		if err != nil {
			return err
		}
		products = []product.Product{p}
	}

	out, err := estimateTable(cfg.Pricing, products, estimateFlags.smoker, estimateFlags.dependents)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), out)
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), pricing.Disclaimer)
	return nil
}

// estimateTable renders one row per product.
func estimateTable(t pricing.Table, products []product.Product, smoker bool, dependents int) (string, error) {
	tbl := table.New().
		Border(lipgloss.RoundedBorder()).
		Headers("Product", "Base", "Tobacco", "Dependents", "Estimate")

	for _, p := range products {
		amount, err := t.Estimate(p, smoker, dependents)
		if err != nil {
			return "", err
		}
		tbl.Row(
			p.Label(),
			pricing.Format(int(t.Base[p])),
			yesNo(smoker),
			strconv.Itoa(max(dependents, 0)),
			pricing.Format(amount),
		)
	}
	return tbl.String(), nil
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

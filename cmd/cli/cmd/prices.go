package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"tariff-engine/internal/config"
)

// pricesCmd shows current commodity prices
var pricesCmd = &cobra.Command{
	Use:   "prices",
	Short: "Show current commodity prices",
	Long: `Show the current per-kg USD price of every tracked commodity.
Prices come from the live feed, falling back to the cache and then the
configured static prices when the feed is unreachable.`,
	RunE: runPrices,
}

// pricesStatusCmd shows the price cache state
var pricesStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show price cache status",
	RunE:  runPricesStatus,
}

// pricesRefreshCmd clears the cache and refetches
var pricesRefreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Clear the price cache and fetch fresh prices",
	RunE:  runPricesRefresh,
}

func init() {
	pricesCmd.AddCommand(pricesStatusCmd)
	pricesCmd.AddCommand(pricesRefreshCmd)
}

func runPrices(cmd *cobra.Command, args []string) error {
	oracle := buildOracle(config.Get())
	prices := oracle.AllPrices(context.Background())

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "COMMODITY\tPRICE (USD/kg)")
	for _, name := range oracle.Tracked() {
		price, ok := prices[name]
		if !ok {
			fmt.Fprintf(w, "%s\tunavailable\n", name)
			continue
		}
		fmt.Fprintf(w, "%s\t%s\n", name, price.StringFixed(2))
	}
	return w.Flush()
}

func runPricesStatus(cmd *cobra.Command, args []string) error {
	oracle := buildOracle(config.Get())
	status := oracle.CacheStatus()

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "COMMODITY\tCACHED\tPRICE\tAGE (h)\tEXPIRED")
	for _, name := range oracle.Tracked() {
		s := status[name]
		if !s.Cached {
			fmt.Fprintf(w, "%s\tno\t-\t-\t-\n", name)
			continue
		}
		fmt.Fprintf(w, "%s\tyes\t%s\t%d\t%t\n", name, s.Price.StringFixed(2), s.AgeHours, s.Expired)
	}
	return w.Flush()
}

func runPricesRefresh(cmd *cobra.Command, args []string) error {
	oracle := buildOracle(config.Get())
	oracle.ClearCache()
	prices := oracle.AllPrices(context.Background())
	fmt.Printf("Cache cleared, %d prices refetched\n", len(prices))
	return nil
}

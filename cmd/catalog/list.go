package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"product-catalog/internal/app"
	"product-catalog/internal/config"
	"product-catalog/internal/model"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
)

var (
	listSearch string
	listPrice  string
	listStart  string
	listEnd    string
	listJSON   bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Print the visible product list once",
	Example: `  catalog list --search phone --price below-50
  catalog list --start 2026-10-01 --end 2026-10-15 --json`,
	RunE: runList,
}

func init() {
	listCmd.Flags().StringVarP(&listSearch, "search", "s", "", "case-insensitive title search")
	listCmd.Flags().StringVarP(&listPrice, "price", "p", "all", "price bucket: all, below-50, 50-to-100, above-100")
	listCmd.Flags().StringVar(&listStart, "start", "", "start date (YYYY-MM-DD), defaults to 7 days ago")
	listCmd.Flags().StringVar(&listEnd, "end", "", "end date (YYYY-MM-DD), defaults to today")
	listCmd.Flags().BoolVar(&listJSON, "json", false, "print JSON instead of a table")
}

func runList(cmd *cobra.Command, args []string) error {
	bucket, err := model.ParsePriceBucket(listPrice)
	if err != nil {
		return err
	}

	dateRange, err := model.ParseDateRange(listStart, listEnd, time.Now())
	if err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	logger := config.NewLoggerTo(cfg.Logger, os.Stderr)

	ctx := cmd.Context()
	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer application.Close()

	list, err := application.Products.Visible(ctx, model.FilterState{
		Range:  dateRange,
		Search: listSearch,
		Bucket: bucket,
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if listJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(list)
	}
	return printList(out, list)
}

func printList(w io.Writer, list *model.ProductList) error {
	start, end := list.Filter.Range.Strings()
	fmt.Fprintf(w, "Date range: %s → %s   %s\n", start, end, list.Filter.Bucket.Label())

	if list.RemoteError != "" {
		fmt.Fprintf(w, "Error: %s\n", list.RemoteError)
	}

	if len(list.Products) == 0 {
		_, err := fmt.Fprintln(w, "No products found.")
		return err
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "Title", "Category", "Price", "Stock")
	for _, p := range list.Products {
		t.Row(string(p.ID), p.Title, p.Category, strconv.FormatFloat(p.Price, 'f', 2, 64), strconv.Itoa(p.Stock))
	}

	_, err := fmt.Fprintf(w, "%s\n%d added locally, %d from catalogue\n", t.Render(), list.LocalCount, list.RemoteCount)
	return err
}

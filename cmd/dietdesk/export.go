package main

import (
	"fmt"
	"io"
	"net/url"

	"github.com/spf13/cobra"

	"github.com/dukerupert/dietdesk/internal/export"
	"github.com/dukerupert/dietdesk/internal/filter"
	"github.com/dukerupert/dietdesk/internal/server"
)

type exportFlags struct {
	search   string
	category string
	from     string
	to       string
	html     bool
}

func exportCmd(configPath *string) *cobra.Command {
	var f exportFlags

	cmd := &cobra.Command{
		Use:       "export <food-items|diet-plans|orders>",
		Short:     "Write the matching records as CSV (or a print page) to stdout",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"food-items", "diet-plans", "orders"},
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(*configPath)
			if err != nil {
				return err
			}
			defer a.Close()
			return runExport(cmd.OutOrStdout(), a.srv, args[0], f)
		},
	}
	cmd.Flags().StringVar(&f.search, "search", "", "Case-insensitive search term")
	cmd.Flags().StringVar(&f.category, "category", "", "Food type, diet type or order status")
	cmd.Flags().StringVar(&f.from, "from", "", "Earliest created date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&f.to, "to", "", "Latest created date (YYYY-MM-DD)")
	cmd.Flags().BoolVar(&f.html, "html", false, "Write the printable HTML page instead of CSV")
	return cmd
}

func runExport(w io.Writer, srv *server.Server, entity string, f exportFlags) error {
	c, err := filter.FromQuery(url.Values{
		"search":   {f.search},
		"category": {f.category},
		"from":     {f.from},
		"to":       {f.to},
	})
	if err != nil {
		return err
	}

	var t export.Table
	switch entity {
	case "food-items":
		t = export.FoodItemsTable(srv.FoodItems().List(c))
	case "diet-plans":
		t = export.DietPlansTable(srv.DietPlans().List(c))
	case "orders":
		t = export.DietOrdersTable(srv.DietOrders().List(c))
	default:
		return fmt.Errorf("unknown collection %q (want food-items, diet-plans or orders)", entity)
	}

	if f.html {
		return export.Print(w, t)
	}
	return export.WriteCSV(w, t)
}

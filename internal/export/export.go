// Package export turns filtered record lists into CSV downloads and
// printable HTML tables.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dukerupert/dietdesk/internal/model"
)

// Download filenames.
const (
	FoodItemsFilename  = "food_items.csv"
	DietPlansFilename  = "diet_plans.csv"
	DietOrdersFilename = "diet_orders.csv"
)

var (
	FoodItemsHeader  = []string{"Food Name", "Type", "Unit", "Calories", "Fat", "Carbs", "Protein", "Rate", "Days Available"}
	DietPlansHeader  = []string{"Package Name", "Diet Type", "Breakfast", "Lunch", "Evening", "Dinner", "Total Rate"}
	DietOrdersHeader = []string{"OP/Card No", "Patient Name", "Doctor", "Sex", "Age", "Mobile", "Address", "Diet Plan", "Status", "Customizations"}
)

// Table is a titled grid of display strings.
type Table struct {
	Title    string
	Filename string
	Header   []string
	Rows     [][]string
}

func number(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func FoodItemsTable(items []model.FoodItem) Table {
	t := Table{Title: "Food Items", Filename: FoodItemsFilename, Header: FoodItemsHeader, Rows: make([][]string, 0, len(items))}
	for _, it := range items {
		t.Rows = append(t.Rows, []string{
			it.Name, string(it.Type), it.Unit,
			number(it.Calories), number(it.Fat), number(it.Carbs), number(it.Protein), number(it.Rate),
			strings.Join(it.DaysAvailable, ", "),
		})
	}
	return t
}

func DietPlansTable(plans []model.DietPlan) Table {
	t := Table{Title: "Diet Plans", Filename: DietPlansFilename, Header: DietPlansHeader, Rows: make([][]string, 0, len(plans))}
	for _, p := range plans {
		t.Rows = append(t.Rows, []string{
			p.PackageName, string(p.DietType),
			p.Breakfast.Morning, p.Lunch, p.Breakfast.Afternoon, p.Dinner,
			number(p.TotalRate),
		})
	}
	return t
}

func DietOrdersTable(orders []model.DietOrder) Table {
	t := Table{Title: "Diet Orders", Filename: DietOrdersFilename, Header: DietOrdersHeader, Rows: make([][]string, 0, len(orders))}
	for _, o := range orders {
		t.Rows = append(t.Rows, []string{
			o.OPCardNo, o.PatientName, o.DoctorName, string(o.Sex), o.Age, o.Mobile, o.Address,
			o.DietPlan, string(o.Status), o.Customizations,
		})
	}
	return t
}

// WriteCSV writes the header row and one row per record. Fields containing
// commas, quotes or newlines are quoted.
func WriteCSV(w io.Writer, t Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Header); err != nil {
		return fmt.Errorf("write %s header: %w", t.Filename, err)
	}
	if err := cw.WriteAll(t.Rows); err != nil {
		return fmt.Errorf("write %s rows: %w", t.Filename, err)
	}
	return nil
}

func WriteFoodItemsCSV(w io.Writer, items []model.FoodItem) error {
	return WriteCSV(w, FoodItemsTable(items))
}

func WriteDietPlansCSV(w io.Writer, plans []model.DietPlan) error {
	return WriteCSV(w, DietPlansTable(plans))
}

func WriteDietOrdersCSV(w io.Writer, orders []model.DietOrder) error {
	return WriteCSV(w, DietOrdersTable(orders))
}

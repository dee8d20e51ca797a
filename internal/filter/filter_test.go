package filter

import (
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dukerupert/dietdesk/internal/model"
)

func date(y int, m time.Month, d int) model.Date {
	return model.NewDate(time.Date(y, m, d, 0, 0, 0, 0, time.UTC))
}

func ids[T interface{ RecordID() int64 }](items []T) []int64 {
	out := make([]int64, 0, len(items))
	for _, it := range items {
		out = append(out, it.RecordID())
	}
	return out
}

func foodItems() []model.FoodItem {
	return []model.FoodItem{
		{ID: 1, Name: "Brown Rice", Type: model.FoodTypeVegetarian, Unit: "grams", DaysAvailable: []string{"Mon", "Tue"}, CreatedDate: date(2025, 6, 9)},
		{ID: 2, Name: "Grilled Chicken", Type: model.FoodTypeNonVegetarian, Unit: "grams", DaysAvailable: []string{"Sat", "Sun"}, CreatedDate: date(2025, 6, 10)},
		{ID: 3, Name: "Fruit Bowl", Type: model.FoodTypeLowCalorie, Unit: "bowl", DaysAvailable: []string{"Wed"}, CreatedDate: date(2025, 6, 12)},
	}
}

func TestApplySearchFields(t *testing.T) {
	items := foodItems()

	tests := []struct {
		search string
		want   []int64
	}{
		{"", []int64{1, 2, 3}},
		{"ric", []int64{1}},
		{"CHICKEN", []int64{2}},
		{"vegetarian", []int64{1, 2}},
		{"bowl", []int64{3}},
		{"sun", []int64{2}},
		{"gram", []int64{1, 2}},
		{"pizza", []int64{}},
	}
	for _, tt := range tests {
		got := Apply(items, Criteria{Search: tt.search})
		assert.Equal(t, tt.want, ids(got), "search %q", tt.search)
	}
}

func TestApplySearchKeepsWhitespace(t *testing.T) {
	items := append(foodItems(), model.FoodItem{ID: 4, Name: "Curd", Type: model.FoodTypeVegetarian, Unit: "cup", CreatedDate: date(2025, 6, 12)})

	c, err := FromQuery(url.Values{"search": {" "}})
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2, 3}, ids(Apply(items, c)))

	c, err = FromQuery(url.Values{"search": {"rice "}})
	require.NoError(t, err)
	assert.Empty(t, Apply(items, c))

	c, err = FromQuery(url.Values{"search": {" rice"}})
	require.NoError(t, err)
	assert.Equal(t, []int64{1}, ids(Apply(items, c)))
}

func TestApplyCategory(t *testing.T) {
	items := foodItems()

	assert.Equal(t, []int64{1, 2, 3}, ids(Apply(items, Criteria{Category: All})))
	assert.Equal(t, []int64{1, 2, 3}, ids(Apply(items, Criteria{})))
	assert.Equal(t, []int64{2}, ids(Apply(items, Criteria{Category: "Non-Vegetarian"})))
	assert.Equal(t, []int64{3}, ids(Apply(items, Criteria{Category: "low calorie"})))
	assert.Empty(t, Apply(items, Criteria{Category: "High Calorie"}))
}

func TestApplyDateRangeInclusive(t *testing.T) {
	items := foodItems()

	got := Apply(items, Criteria{From: date(2025, 6, 10), To: date(2025, 6, 12)})
	assert.Equal(t, []int64{2, 3}, ids(got))

	got = Apply(items, Criteria{From: date(2025, 6, 9), To: date(2025, 6, 9)})
	assert.Equal(t, []int64{1}, ids(got))

	got = Apply(items, Criteria{To: date(2025, 6, 10)})
	assert.Equal(t, []int64{1, 2}, ids(got))

	got = Apply(items, Criteria{From: date(2025, 6, 11)})
	assert.Equal(t, []int64{3}, ids(got))
}

func TestApplyPredicatesAreAnded(t *testing.T) {
	items := foodItems()

	got := Apply(items, Criteria{Search: "grams", Category: "Vegetarian", From: date(2025, 6, 1), To: date(2025, 6, 30)})
	assert.Equal(t, []int64{1}, ids(got))
}

func TestApplyIsSubsequence(t *testing.T) {
	items := foodItems()
	criteria := []Criteria{
		{},
		{Search: "r"},
		{Category: "Vegetarian"},
		{From: date(2025, 6, 10)},
		{Search: "e", To: date(2025, 6, 10)},
	}
	for _, c := range criteria {
		got := Apply(items, c)
		j := 0
		for _, g := range got {
			for j < len(items) && items[j].ID != g.ID {
				j++
			}
			require.Less(t, j, len(items), "record %d out of order or fabricated for %+v", g.ID, c)
			j++
		}
	}
}

func TestOrderStatusCategory(t *testing.T) {
	orders := model.SampleDietOrders()
	orders[0].Status = model.OrderStatusInCafeteria

	assert.Equal(t, []int64{1}, ids(Apply(orders, Criteria{Category: "In-Cafeteria"})))
	assert.Equal(t, []int64{2}, ids(Apply(orders, Criteria{Category: "Approved"})))
}

func TestFromQuery(t *testing.T) {
	q := url.Values{}
	q.Set("search", " rice ")
	q.Set("status", "Approved")
	q.Set("from", "2025-06-01")
	q.Set("to", "2025-06-30")

	c, err := FromQuery(q, "category", "status")
	require.NoError(t, err)
	assert.Equal(t, " rice ", c.Search)
	assert.Equal(t, "Approved", c.Category)
	assert.Equal(t, date(2025, 6, 1), c.From)
	assert.Equal(t, date(2025, 6, 30), c.To)

	q.Set("from", "06/01/2025")
	_, err = FromQuery(q)
	assert.Error(t, err)
}

func TestMemoRecomputesOnlyOnChange(t *testing.T) {
	items := foodItems()
	loads := 0
	load := func() []model.FoodItem {
		loads++
		return items
	}

	var m Memo[model.FoodItem]
	c := Criteria{Search: "rice"}

	first := m.Get(1, c, load)
	second := m.Get(1, c, load)
	assert.Equal(t, 1, loads)
	assert.Equal(t, first, second)

	m.Get(1, Criteria{Search: "chicken"}, load)
	assert.Equal(t, 2, loads)

	m.Get(2, Criteria{Search: "chicken"}, load)
	assert.Equal(t, 3, loads)

	// Only the last inputs are remembered.
	m.Get(2, c, load)
	assert.Equal(t, 4, loads)
}

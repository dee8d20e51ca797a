package controller

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/dukerupert/dietdesk/internal/collection"
	"github.com/dukerupert/dietdesk/internal/model"
)

// FoodItemForm is the editable state of a food item.
type FoodItemForm struct {
	Name          string         `json:"name"`
	Type          model.FoodType `json:"type"`
	Unit          string         `json:"unit"`
	Calories      Amount         `json:"calories"`
	Fat           Amount         `json:"fat"`
	Carbs         Amount         `json:"carbs"`
	Protein       Amount         `json:"protein"`
	Rate          Amount         `json:"rate"`
	DaysAvailable []string       `json:"daysAvailable"`
}

func (f FoodItemForm) Validate() error {
	if err := firstErr(
		required("name", f.Name),
		required("unit", f.Unit),
		required("calories", string(f.Calories)),
		required("fat", string(f.Fat)),
		required("carbs", string(f.Carbs)),
		required("protein", string(f.Protein)),
		required("rate", string(f.Rate)),
	); err != nil {
		return err
	}
	if !f.Type.Valid() {
		return invalid("type", fmt.Sprintf("unknown food type %q", f.Type))
	}
	for _, d := range f.DaysAvailable {
		if !model.ValidWeekday(d) {
			return invalid("daysAvailable", fmt.Sprintf("unknown day %q", d))
		}
	}
	return nil
}

// applyFoodItem copies every form field onto item. ID and CreatedDate are
// left alone.
func applyFoodItem(item *model.FoodItem, f FoodItemForm) {
	item.Name = f.Name
	item.Type = f.Type
	item.Unit = f.Unit
	item.Calories = f.Calories.Float()
	item.Fat = f.Fat.Float()
	item.Carbs = f.Carbs.Float()
	item.Protein = f.Protein.Float()
	item.Rate = f.Rate.Float()
	item.DaysAvailable = weekdayOrder(f.DaysAvailable)
}

// weekdayOrder removes duplicates and sorts days Mon..Sun.
func weekdayOrder(days []string) []string {
	out := make([]string, 0, len(days))
	for _, d := range model.Weekdays {
		if slices.Contains(days, d) {
			out = append(out, d)
		}
	}
	return out
}

type FoodItems struct {
	records[model.FoodItem]
}

func NewFoodItems(store *collection.Store[model.FoodItem], notifier Notifier, logger *slog.Logger) *FoodItems {
	c := &FoodItems{}
	c.setup(store, EntityFoodItem, notices{
		created: "Food item added successfully!",
		updated: "Food item updated successfully!",
		deleted: "Food item deleted successfully!",
	}, notifier, logger)
	return c
}

func (c *FoodItems) BlankForm() FoodItemForm {
	return FoodItemForm{Type: model.FoodTypeVegetarian, Unit: "grams", DaysAvailable: []string{}}
}

func (c *FoodItems) FormFor(item model.FoodItem) FoodItemForm {
	return FoodItemForm{
		Name:          item.Name,
		Type:          item.Type,
		Unit:          item.Unit,
		Calories:      AmountOf(item.Calories),
		Fat:           AmountOf(item.Fat),
		Carbs:         AmountOf(item.Carbs),
		Protein:       AmountOf(item.Protein),
		Rate:          AmountOf(item.Rate),
		DaysAvailable: slices.Clone(item.DaysAvailable),
	}
}

func (c *FoodItems) Create(f FoodItemForm) (model.FoodItem, error) {
	if err := f.Validate(); err != nil {
		return model.FoodItem{}, err
	}
	item := model.FoodItem{ID: c.store.NextID(), CreatedDate: model.NewDate(now())}
	applyFoodItem(&item, f)
	c.insert(item)
	return item, nil
}

// Update applies f to the item with the given id. found is false, and nothing
// changes, when the id is absent.
func (c *FoodItems) Update(id int64, f FoodItemForm) (model.FoodItem, bool, error) {
	if err := f.Validate(); err != nil {
		return model.FoodItem{}, false, err
	}
	return c.update(id, func(item *model.FoodItem) error {
		applyFoodItem(item, f)
		return nil
	})
}

// Page opens a form scratchpad over this controller.
func (c *FoodItems) Page() *Page[model.FoodItem, FoodItemForm] {
	return NewPage[model.FoodItem, FoodItemForm](c)
}

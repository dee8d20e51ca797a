package controller

import (
	"fmt"
	"log/slog"

	"github.com/dukerupert/dietdesk/internal/collection"
	"github.com/dukerupert/dietdesk/internal/model"
)

// DietPlanForm is the editable state of a diet plan. Evening is stored as
// the afternoon half of the breakfast pair.
type DietPlanForm struct {
	PackageName string         `json:"packageName"`
	DietType    model.DietType `json:"dietType"`
	Rate        Amount         `json:"rate"`
	Breakfast   string         `json:"breakfast"`
	Evening     string         `json:"evening"`
	Lunch       string         `json:"lunch"`
	Dinner      string         `json:"dinner"`
}

func (f DietPlanForm) Validate() error {
	if err := firstErr(
		required("packageName", f.PackageName),
		required("rate", string(f.Rate)),
		required("breakfast", f.Breakfast),
		required("evening", f.Evening),
		required("lunch", f.Lunch),
		required("dinner", f.Dinner),
	); err != nil {
		return err
	}
	if !f.DietType.Valid() {
		return invalid("dietType", fmt.Sprintf("unknown diet type %q", f.DietType))
	}
	return nil
}

func applyDietPlan(plan *model.DietPlan, f DietPlanForm) {
	plan.PackageName = f.PackageName
	plan.DietType = f.DietType
	plan.Rate = f.Rate.Float()
	plan.Breakfast = model.Breakfast{Morning: f.Breakfast, Afternoon: f.Evening}
	plan.Lunch = f.Lunch
	plan.Dinner = f.Dinner
	plan.SyncTotal()
}

type DietPlans struct {
	records[model.DietPlan]
}

func NewDietPlans(store *collection.Store[model.DietPlan], notifier Notifier, logger *slog.Logger) *DietPlans {
	c := &DietPlans{}
	c.setup(store, EntityDietPlan, notices{
		created: "Diet plan added successfully!",
		updated: "Diet plan updated successfully!",
		deleted: "Diet plan deleted successfully!",
	}, notifier, logger)
	return c
}

func (c *DietPlans) BlankForm() DietPlanForm {
	return DietPlanForm{DietType: model.DietTypeRegular}
}

func (c *DietPlans) FormFor(plan model.DietPlan) DietPlanForm {
	return DietPlanForm{
		PackageName: plan.PackageName,
		DietType:    plan.DietType,
		Rate:        AmountOf(plan.Rate),
		Breakfast:   plan.Breakfast.Morning,
		Evening:     plan.Breakfast.Afternoon,
		Lunch:       plan.Lunch,
		Dinner:      plan.Dinner,
	}
}

func (c *DietPlans) Create(f DietPlanForm) (model.DietPlan, error) {
	if err := f.Validate(); err != nil {
		return model.DietPlan{}, err
	}
	plan := model.DietPlan{ID: c.store.NextID(), CreatedDate: model.NewDate(now())}
	applyDietPlan(&plan, f)
	c.insert(plan)
	return plan, nil
}

func (c *DietPlans) Update(id int64, f DietPlanForm) (model.DietPlan, bool, error) {
	if err := f.Validate(); err != nil {
		return model.DietPlan{}, false, err
	}
	return c.update(id, func(plan *model.DietPlan) error {
		applyDietPlan(plan, f)
		return nil
	})
}

func (c *DietPlans) Page() *Page[model.DietPlan, DietPlanForm] {
	return NewPage[model.DietPlan, DietPlanForm](c)
}

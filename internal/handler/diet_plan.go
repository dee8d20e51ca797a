package handler

import (
	"log/slog"

	"github.com/dukerupert/dietdesk/internal/controller"
	"github.com/dukerupert/dietdesk/internal/export"
	"github.com/dukerupert/dietdesk/internal/model"
)

type DietPlanHandler struct {
	recordHandler[model.DietPlan, controller.DietPlanForm]
}

func NewDietPlanHandler(plans *controller.DietPlans, logger *slog.Logger) *DietPlanHandler {
	return &DietPlanHandler{recordHandler[model.DietPlan, controller.DietPlanForm]{
		ctrl:           plans,
		noun:           "diet plan",
		categoryParams: []string{"dietType", "category"},
		choices: map[string]any{
			"dietTypes": model.DietTypes,
		},
		table:  export.DietPlansTable,
		logger: logger,
	}}
}

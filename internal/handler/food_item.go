package handler

import (
	"log/slog"

	"github.com/dukerupert/dietdesk/internal/controller"
	"github.com/dukerupert/dietdesk/internal/export"
	"github.com/dukerupert/dietdesk/internal/model"
)

type FoodItemHandler struct {
	recordHandler[model.FoodItem, controller.FoodItemForm]
}

func NewFoodItemHandler(foods *controller.FoodItems, logger *slog.Logger) *FoodItemHandler {
	return &FoodItemHandler{recordHandler[model.FoodItem, controller.FoodItemForm]{
		ctrl:           foods,
		noun:           "food item",
		categoryParams: []string{"type", "category"},
		choices: map[string]any{
			"types":    model.FoodTypes,
			"weekdays": model.Weekdays,
		},
		table:  export.FoodItemsTable,
		logger: logger,
	}}
}

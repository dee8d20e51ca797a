package handler

import (
	"net/http"

	"github.com/dukerupert/dietdesk/internal/controller"
)

type DashboardHandler struct {
	foods  *controller.FoodItems
	plans  *controller.DietPlans
	orders *controller.DietOrders
}

func NewDashboardHandler(foods *controller.FoodItems, plans *controller.DietPlans, orders *controller.DietOrders) *DashboardHandler {
	return &DashboardHandler{foods: foods, plans: plans, orders: orders}
}

func (h *DashboardHandler) Summary(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, controller.Dashboard(h.foods, h.plans, h.orders))
}

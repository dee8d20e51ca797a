package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/dukerupert/dietdesk/internal/controller"
	"github.com/dukerupert/dietdesk/internal/export"
	"github.com/dukerupert/dietdesk/internal/model"
	"github.com/dukerupert/dietdesk/internal/workflow"
)

type DietOrderHandler struct {
	recordHandler[model.DietOrder, controller.DietOrderForm]
	orders *controller.DietOrders
}

func NewDietOrderHandler(orders *controller.DietOrders, logger *slog.Logger) *DietOrderHandler {
	return &DietOrderHandler{
		recordHandler: recordHandler[model.DietOrder, controller.DietOrderForm]{
			ctrl:           orders,
			noun:           "order",
			categoryParams: []string{"status", "category"},
			choices: map[string]any{
				"dietPlans": model.DietPlanChoices,
				"sexes":     []model.Sex{model.SexMale, model.SexFemale},
				"statuses":  model.OrderStatuses,
			},
			table:  export.DietOrdersTable,
			logger: logger,
		},
		orders: orders,
	}
}

type actionsResponse struct {
	ID      int64             `json:"id"`
	Status  model.OrderStatus `json:"status"`
	Actions []workflow.Action `json:"actions"`
}

// Actions lists the workflow actions offered for an order.
func (h *DietOrderHandler) Actions(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}
	order, ok := h.orders.Get(id)
	if !ok {
		h.notFound(w)
		return
	}
	actions, _ := h.orders.Actions(id)
	writeJSON(w, http.StatusOK, actionsResponse{ID: id, Status: order.Status, Actions: actions})
}

func (h *DietOrderHandler) Customize(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Customizations string `json:"customizations"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	h.transition(w, r, func(id int64) (model.DietOrder, bool, error) {
		return h.orders.Customize(id, req.Customizations)
	})
}

func (h *DietOrderHandler) Approve(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.orders.Approve)
}

func (h *DietOrderHandler) SendToCafeteria(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.orders.SendToCafeteria)
}

func (h *DietOrderHandler) Complete(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.orders.Complete)
}

func (h *DietOrderHandler) transition(w http.ResponseWriter, r *http.Request, move func(int64) (model.DietOrder, bool, error)) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}
	order, found, err := move(id)
	if err != nil {
		writeMutationError(w, err, h.logger)
		return
	}
	if !found {
		h.notFound(w)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

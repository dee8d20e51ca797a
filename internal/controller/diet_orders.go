package controller

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/dukerupert/dietdesk/internal/collection"
	"github.com/dukerupert/dietdesk/internal/model"
	"github.com/dukerupert/dietdesk/internal/workflow"
)

// DietOrderForm is the editable state of a diet order. Status, rate, request
// date and customizations are not editable; they are set at creation and
// changed only by the workflow.
type DietOrderForm struct {
	PatientName string    `json:"patientName"`
	OPCardNo    string    `json:"opCardNo"`
	DoctorName  string    `json:"doctorName"`
	Sex         model.Sex `json:"sex"`
	Age         string    `json:"age"`
	Mobile      string    `json:"mobile"`
	Address     string    `json:"address"`
	DietPlan    string    `json:"dietPlan"`
	Notes       string    `json:"notes"`
}

func (f DietOrderForm) Validate() error {
	if err := firstErr(
		required("opCardNo", f.OPCardNo),
		required("patientName", f.PatientName),
		required("doctorName", f.DoctorName),
		required("age", f.Age),
		required("mobile", f.Mobile),
		required("address", f.Address),
		required("dietPlan", f.DietPlan),
		required("notes", f.Notes),
	); err != nil {
		return err
	}
	if !f.Sex.Valid() {
		return invalid("sex", fmt.Sprintf("unknown sex %q", f.Sex))
	}
	return nil
}

func applyDietOrder(order *model.DietOrder, f DietOrderForm) {
	order.PatientName = f.PatientName
	order.OPCardNo = f.OPCardNo
	order.DoctorName = f.DoctorName
	order.Sex = f.Sex
	order.Age = f.Age
	order.Mobile = f.Mobile
	order.Address = f.Address
	order.DietPlan = f.DietPlan
	order.Notes = f.Notes
}

type DietOrders struct {
	records[model.DietOrder]
}

func NewDietOrders(store *collection.Store[model.DietOrder], notifier Notifier, logger *slog.Logger) *DietOrders {
	c := &DietOrders{}
	c.setup(store, EntityDietOrder, notices{
		created: "Diet order initiated by doctor successfully!",
		updated: "Order updated successfully!",
		deleted: "Order deleted successfully!",
	}, notifier, logger)
	return c
}

func (c *DietOrders) BlankForm() DietOrderForm {
	return DietOrderForm{Sex: model.SexMale}
}

func (c *DietOrders) FormFor(order model.DietOrder) DietOrderForm {
	return DietOrderForm{
		PatientName: order.PatientName,
		OPCardNo:    order.OPCardNo,
		DoctorName:  order.DoctorName,
		Sex:         order.Sex,
		Age:         order.Age,
		Mobile:      order.Mobile,
		Address:     order.Address,
		DietPlan:    order.DietPlan,
		Notes:       order.Notes,
	}
}

// Create records a doctor-initiated order. New orders start pending at the
// default rate with no customizations.
func (c *DietOrders) Create(f DietOrderForm) (model.DietOrder, error) {
	if err := f.Validate(); err != nil {
		return model.DietOrder{}, err
	}
	t := now()
	order := model.DietOrder{
		ID:          c.store.NextID(),
		Status:      model.OrderStatusPending,
		RequestDate: t.Format(model.RequestDateLayout),
		Rate:        model.DefaultOrderRate,
		CreatedDate: model.NewDate(t),
	}
	applyDietOrder(&order, f)
	c.insert(order)
	return order, nil
}

func (c *DietOrders) Update(id int64, f DietOrderForm) (model.DietOrder, bool, error) {
	if err := f.Validate(); err != nil {
		return model.DietOrder{}, false, err
	}
	return c.update(id, func(order *model.DietOrder) error {
		applyDietOrder(order, f)
		return nil
	})
}

func (c *DietOrders) Page() *Page[model.DietOrder, DietOrderForm] {
	return NewPage[model.DietOrder, DietOrderForm](c)
}

// Actions returns the workflow actions offered for the order.
func (c *DietOrders) Actions(id int64) ([]workflow.Action, bool) {
	order, ok := c.Get(id)
	if !ok {
		return nil, false
	}
	return workflow.Actions(order.Status), true
}

// Customize records the dietitian's customizations and approves the order.
func (c *DietOrders) Customize(id int64, customizations string) (model.DietOrder, bool, error) {
	if strings.TrimSpace(customizations) == "" {
		return model.DietOrder{}, false, ErrCustomizationsRequired
	}
	return c.transition(id, workflow.ActionCustomize, func(order *model.DietOrder) string {
		order.Customizations = customizations
		return "Diet plan customized and approved by dietitian!"
	})
}

func (c *DietOrders) Approve(id int64) (model.DietOrder, bool, error) {
	return c.transition(id, workflow.ActionApprove, func(*model.DietOrder) string {
		return "Diet plan approved by dietitian!"
	})
}

func (c *DietOrders) SendToCafeteria(id int64) (model.DietOrder, bool, error) {
	return c.transition(id, workflow.ActionSendToCafeteria, func(*model.DietOrder) string {
		return "Order sent to cafeteria for meal preparation!"
	})
}

// Complete closes the order. The notice carries the amount billed to the
// patient.
func (c *DietOrders) Complete(id int64) (model.DietOrder, bool, error) {
	return c.transition(id, workflow.ActionComplete, func(order *model.DietOrder) string {
		return fmt.Sprintf("Order completed! ₹%s added to patient's bill.", strconv.FormatFloat(order.Rate, 'f', -1, 64))
	})
}

// transition moves the order through the workflow. effect runs only when the
// move is allowed and returns the notice text.
func (c *DietOrders) transition(id int64, action workflow.Action, effect func(*model.DietOrder) string) (model.DietOrder, bool, error) {
	var notice string
	var from model.OrderStatus
	order, found, err := c.modify(id, func(order *model.DietOrder) error {
		next, err := workflow.Next(order.Status, action)
		if err != nil {
			return err
		}
		from = order.Status
		notice = effect(order)
		order.Status = next
		return nil
	})
	if err != nil {
		return order, found, fmt.Errorf("order %d: %w", id, err)
	}
	if !found {
		return order, false, nil
	}
	c.logger.Info("order transition", "id", id, "action", action, "from", from, "to", order.Status)
	c.notify.Notify(c.entity, string(action), id, notice)
	return order, true, nil
}

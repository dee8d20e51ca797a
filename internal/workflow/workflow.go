// Package workflow defines the diet order lifecycle:
//
//	pending -> approved -> in-cafeteria -> completed
//
// Customize and Approve both move a pending order to approved. There are no
// backward transitions and no cancellation; Edit and Delete are available in
// every status and never change it.
package workflow

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dukerupert/dietdesk/internal/model"
)

// Action is a user operation on a diet order.
type Action string

const (
	ActionCustomize       Action = "customize"
	ActionApprove         Action = "approve"
	ActionSendToCafeteria Action = "send-to-cafeteria"
	ActionComplete        Action = "complete"
	ActionEdit            Action = "edit"
	ActionDelete          Action = "delete"
)

// ErrInvalidTransition is returned when an action is not allowed in the
// order's current status.
var ErrInvalidTransition = errors.New("invalid transition")

// Transition is one status-changing edge of the workflow.
type Transition struct {
	From   model.OrderStatus
	Action Action
	To     model.OrderStatus
}

var transitions = []Transition{
	{From: model.OrderStatusPending, Action: ActionCustomize, To: model.OrderStatusApproved},
	{From: model.OrderStatusPending, Action: ActionApprove, To: model.OrderStatusApproved},
	{From: model.OrderStatusApproved, Action: ActionSendToCafeteria, To: model.OrderStatusInCafeteria},
	{From: model.OrderStatusInCafeteria, Action: ActionComplete, To: model.OrderStatusCompleted},
}

type transitionKey struct {
	from   model.OrderStatus
	action Action
}

var transitionMap = func() map[transitionKey]model.OrderStatus {
	m := make(map[transitionKey]model.OrderStatus, len(transitions))
	for _, t := range transitions {
		m[transitionKey{t.From, t.Action}] = t.To
	}
	return m
}()

// Transitions returns the full table, for documentation endpoints.
func Transitions() []Transition {
	out := make([]Transition, len(transitions))
	copy(out, transitions)
	return out
}

// Actions returns the actions offered for an order in the given status, in
// display order. Edit and Delete are always last.
func Actions(status model.OrderStatus) []Action {
	var actions []Action
	for _, t := range transitions {
		if t.From == status {
			actions = append(actions, t.Action)
		}
	}
	return append(actions, ActionEdit, ActionDelete)
}

// Allowed reports whether action may be applied in status.
func Allowed(status model.OrderStatus, action Action) bool {
	if action == ActionEdit || action == ActionDelete {
		return status.Valid()
	}
	_, ok := transitionMap[transitionKey{status, action}]
	return ok
}

// Next returns the status reached by applying action in status. Edit leaves
// the status unchanged. Delete has no successor status and is rejected here.
func Next(status model.OrderStatus, action Action) (model.OrderStatus, error) {
	if action == ActionEdit && status.Valid() {
		return status, nil
	}
	to, ok := transitionMap[transitionKey{status, action}]
	if !ok {
		return status, fmt.Errorf("%w: %s from %s (allowed: %s)", ErrInvalidTransition, action, status, describe(status))
	}
	return to, nil
}

// Terminal reports whether no status-changing action remains.
func Terminal(status model.OrderStatus) bool {
	for _, t := range transitions {
		if t.From == status {
			return false
		}
	}
	return true
}

func describe(status model.OrderStatus) string {
	actions := Actions(status)
	names := make([]string, len(actions))
	for i, a := range actions {
		names[i] = string(a)
	}
	return strings.Join(names, ", ")
}

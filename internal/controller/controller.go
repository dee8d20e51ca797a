// Package controller owns the mutation paths for food items, diet plans and
// diet orders. Each controller reads and writes its collection store, keeps a
// memoized filtered view, and reports every successful change to a Notifier.
package controller

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dukerupert/dietdesk/internal/collection"
	"github.com/dukerupert/dietdesk/internal/filter"
)

// Entity names used in notifications.
const (
	EntityFoodItem  = "food_item"
	EntityDietPlan  = "diet_plan"
	EntityDietOrder = "diet_order"
)

// Notification actions for plain record changes. Workflow transitions use
// the workflow action name.
const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// ErrCustomizationsRequired is returned when Customize is given blank text.
var ErrCustomizationsRequired = errors.New("customizations are required")

// Notifier receives a success notice for every completed mutation.
type Notifier interface {
	Notify(entity, action string, id int64, notice string)
}

type nopNotifier struct{}

func (nopNotifier) Notify(string, string, int64, string) {}

// ValidationError reports a form field that cannot be accepted.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func invalid(field, msg string) error {
	return &ValidationError{Field: field, Message: msg}
}

// now is replaced in tests.
var now = time.Now

type record interface {
	collection.Record
	filter.Filterable
}

type notices struct {
	created string
	updated string
	deleted string
}

// records holds the behaviour shared by all three controllers.
type records[T record] struct {
	store   *collection.Store[T]
	memo    filter.Memo[T]
	notify  Notifier
	entity  string
	notices notices
	logger  *slog.Logger
}

func (r *records[T]) setup(store *collection.Store[T], entity string, n notices, notifier Notifier, logger *slog.Logger) {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	r.store = store
	r.notify = notifier
	r.entity = entity
	r.notices = n
	r.logger = logger.With("component", entity)
}

// List returns the records matching c, in stored order.
func (r *records[T]) List(c filter.Criteria) []T {
	return r.memo.Get(r.store.Version(), c, r.store.Get)
}

// All returns every record, in stored order.
func (r *records[T]) All() []T {
	return r.store.Get()
}

// Count returns the number of stored records.
func (r *records[T]) Count() int {
	return len(r.store.Get())
}

// Get looks up a record by id.
func (r *records[T]) Get(id int64) (T, bool) {
	for _, rec := range r.store.Get() {
		if rec.RecordID() == id {
			return rec, true
		}
	}
	var zero T
	return zero, false
}

// Delete removes the record with the given id. Deleting an absent id changes
// nothing and reports false.
func (r *records[T]) Delete(id int64) bool {
	deleted := r.store.Update(func(items []T) ([]T, bool) {
		for i, rec := range items {
			if rec.RecordID() == id {
				return append(items[:i], items[i+1:]...), true
			}
		}
		return items, false
	})
	if !deleted {
		return false
	}
	r.logger.Info("deleted", "id", id)
	r.notify.Notify(r.entity, ActionDeleted, id, r.notices.deleted)
	return true
}

func (r *records[T]) insert(rec T) {
	r.store.Update(func(items []T) ([]T, bool) {
		return append(items, rec), true
	})
	r.logger.Info("created", "id", rec.RecordID())
	r.notify.Notify(r.entity, ActionCreated, rec.RecordID(), r.notices.created)
}

// modify applies fn to the record with the given id under the store's write
// lock. found is false when no such record exists. An error from fn leaves
// the collection untouched.
func (r *records[T]) modify(id int64, fn func(rec *T) error) (out T, found bool, err error) {
	r.store.Update(func(items []T) ([]T, bool) {
		for i := range items {
			if items[i].RecordID() != id {
				continue
			}
			found = true
			if err = fn(&items[i]); err != nil {
				return items, false
			}
			out = items[i]
			return items, true
		}
		return items, false
	})
	return out, found, err
}

func (r *records[T]) update(id int64, fn func(rec *T) error) (T, bool, error) {
	rec, found, err := r.modify(id, fn)
	if err != nil || !found {
		return rec, found, err
	}
	r.logger.Info("updated", "id", id)
	r.notify.Notify(r.entity, ActionUpdated, id, r.notices.updated)
	return rec, true, nil
}

package controller

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dukerupert/dietdesk/internal/model"
)

func TestPageCreate(t *testing.T) {
	f := setupControllers(t)
	page := f.plans.Page()

	_, editing := page.Editing()
	assert.False(t, editing)
	assert.Equal(t, model.DietTypeRegular, page.Form().DietType)

	require.NoError(t, page.Fill(func(f *DietPlanForm) error {
		*f = validPlanForm()
		return nil
	}))
	plan, found, err := page.Submit()
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "Renal Package", plan.PackageName)
	assert.Equal(t, 3, f.plans.Count())

	assert.Equal(t, f.plans.BlankForm(), page.Form())
}

func TestPageEdit(t *testing.T) {
	f := setupControllers(t)
	page := f.plans.Page()

	require.True(t, page.EditOpen(2))
	id, editing := page.Editing()
	assert.True(t, editing)
	assert.Equal(t, int64(2), id)
	assert.Equal(t, "Regular Diet Package", page.Form().PackageName)

	require.NoError(t, page.Fill(func(f *DietPlanForm) error {
		f.Lunch = "Rice - 150g"
		return nil
	}))
	plan, found, err := page.Submit()
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, int64(2), plan.ID)
	assert.Equal(t, "Rice - 150g", plan.Lunch)
	assert.Equal(t, 2, f.plans.Count())

	_, editing = page.Editing()
	assert.False(t, editing)
}

func TestPageEditOpenMissing(t *testing.T) {
	f := setupControllers(t)
	page := f.foods.Page()

	assert.False(t, page.EditOpen(77))
	_, editing := page.Editing()
	assert.False(t, editing)
}

func TestPageReset(t *testing.T) {
	f := setupControllers(t)
	page := f.orders.Page()

	require.True(t, page.EditOpen(1))
	page.Reset()

	_, editing := page.Editing()
	assert.False(t, editing)
	assert.Equal(t, f.orders.BlankForm(), page.Form())
}

func TestPageKeepsFormOnValidationError(t *testing.T) {
	f := setupControllers(t)
	page := f.foods.Page()

	fill := func(edit func(*FoodItemForm)) {
		require.NoError(t, page.Fill(func(f *FoodItemForm) error {
			edit(f)
			return nil
		}))
	}

	fill(func(f *FoodItemForm) {
		f.Name, f.Calories, f.Fat, f.Carbs, f.Protein, f.Rate = "Curd", "98", "4.3", "3.4", "11", "15"
	})
	_, _, err := page.Submit()
	require.NoError(t, err, "unit defaults to grams")

	fill(func(f *FoodItemForm) {
		f.Name, f.Calories, f.Fat, f.Carbs, f.Protein, f.Rate = "Paneer", "265", "20.8", "1.2", "18.3", "40"
		f.Unit = ""
	})
	_, _, err = page.Submit()
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "unit", verr.Field)
	assert.Equal(t, "Paneer", page.Form().Name)
}

func TestPageFormIsACopy(t *testing.T) {
	f := setupControllers(t)
	page := f.plans.Page()

	form := page.Form()
	form.PackageName = "Scratch"
	assert.Empty(t, page.Form().PackageName)

	sentinel := errors.New("decode failed")
	err := page.Fill(func(f *DietPlanForm) error {
		f.PackageName = "Partial"
		return sentinel
	})
	require.ErrorIs(t, err, sentinel)
	assert.Equal(t, "Partial", page.Form().PackageName)
}

func TestPageSubmitAfterRecordDeleted(t *testing.T) {
	f := setupControllers(t)
	page := f.foods.Page()

	require.True(t, page.EditOpen(2))
	require.True(t, f.foods.Delete(2))

	_, found, err := page.Submit()
	require.NoError(t, err)
	assert.False(t, found)
	assert.Equal(t, 1, f.foods.Count())
}

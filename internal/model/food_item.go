package model

type FoodType string

const (
	FoodTypeVegetarian    FoodType = "Vegetarian"
	FoodTypeNonVegetarian FoodType = "Non-Vegetarian"
	FoodTypeHighCalorie   FoodType = "High Calorie"
	FoodTypeLowCalorie    FoodType = "Low Calorie"
)

var FoodTypes = []FoodType{FoodTypeVegetarian, FoodTypeNonVegetarian, FoodTypeHighCalorie, FoodTypeLowCalorie}

func (t FoodType) Valid() bool {
	switch t {
	case FoodTypeVegetarian, FoodTypeNonVegetarian, FoodTypeHighCalorie, FoodTypeLowCalorie:
		return true
	}
	return false
}

// Weekdays lists the short day names in display order.
var Weekdays = []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

// ValidWeekday reports whether day is one of Weekdays.
func ValidWeekday(day string) bool {
	for _, d := range Weekdays {
		if d == day {
			return true
		}
	}
	return false
}

type FoodItem struct {
	ID            int64    `json:"id"`
	Name          string   `json:"name"`
	Type          FoodType `json:"type"`
	Unit          string   `json:"unit"`
	Calories      float64  `json:"calories"`
	Fat           float64  `json:"fat"`
	Carbs         float64  `json:"carbs"`
	Protein       float64  `json:"protein"`
	Rate          float64  `json:"rate"`
	DaysAvailable []string `json:"daysAvailable"`
	CreatedDate   Date     `json:"createdDate"`
}

func (f FoodItem) RecordID() int64 { return f.ID }

func (f FoodItem) SearchFields() []string {
	fields := make([]string, 0, 3+len(f.DaysAvailable))
	fields = append(fields, f.Name, string(f.Type), f.Unit)
	return append(fields, f.DaysAvailable...)
}

func (f FoodItem) CategoryValue() string { return string(f.Type) }

func (f FoodItem) Created() Date { return f.CreatedDate }

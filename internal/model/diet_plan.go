package model

type DietType string

const (
	DietTypeRegular     DietType = "Regular"
	DietTypeSpecialized DietType = "Specialized"
	DietTypeTherapeutic DietType = "Therapeutic"
)

var DietTypes = []DietType{DietTypeRegular, DietTypeSpecialized, DietTypeTherapeutic}

func (t DietType) Valid() bool {
	switch t {
	case DietTypeRegular, DietTypeSpecialized, DietTypeTherapeutic:
		return true
	}
	return false
}

// Breakfast is split into the morning meal and the afternoon (evening) snack.
type Breakfast struct {
	Morning   string `json:"morning"`
	Afternoon string `json:"afternoon"`
}

type DietPlan struct {
	ID          int64     `json:"id"`
	PackageName string    `json:"packageName"`
	DietType    DietType  `json:"dietType"`
	Rate        float64   `json:"rate"`
	TotalRate   float64   `json:"totalRate"`
	Breakfast   Breakfast `json:"breakfast"`
	Lunch       string    `json:"lunch"`
	Dinner      string    `json:"dinner"`
	CreatedDate Date      `json:"createdDate"`
}

// SyncTotal derives TotalRate from Rate. Plans carry no add-ons, so the two
// are always equal.
func (p *DietPlan) SyncTotal() {
	p.TotalRate = p.Rate
}

func (p DietPlan) RecordID() int64 { return p.ID }

func (p DietPlan) SearchFields() []string {
	return []string{p.PackageName, string(p.DietType)}
}

func (p DietPlan) CategoryValue() string { return string(p.DietType) }

func (p DietPlan) Created() Date { return p.CreatedDate }

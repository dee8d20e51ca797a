package model

// OrderStatus is the position of a diet order in the kitchen workflow.
// Transition rules live in the workflow package.
type OrderStatus string

const (
	OrderStatusPending     OrderStatus = "pending"
	OrderStatusApproved    OrderStatus = "approved"
	OrderStatusInCafeteria OrderStatus = "in-cafeteria"
	OrderStatusCompleted   OrderStatus = "completed"
)

var OrderStatuses = []OrderStatus{OrderStatusPending, OrderStatusApproved, OrderStatusInCafeteria, OrderStatusCompleted}

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusApproved, OrderStatusInCafeteria, OrderStatusCompleted:
		return true
	}
	return false
}

type Sex string

const (
	SexMale   Sex = "Male"
	SexFemale Sex = "Female"
)

func (s Sex) Valid() bool {
	return s == SexMale || s == SexFemale
}

// DefaultOrderRate is charged for doctor-initiated orders.
const DefaultOrderRate = 300

// RequestDateLayout is the display format of DietOrder.RequestDate.
const RequestDateLayout = "02/01/2006"

// DietPlanChoices are the plan names offered on the order form. DietOrder.DietPlan
// is free text and is not checked against stored plans.
var DietPlanChoices = []string{
	"Regular Diet Plan",
	"Diabetic Diet Plan",
	"High Protein Diet",
	"Low Sodium Diet",
	"Cardiac Diet",
	"Renal Diet",
}

type DietOrder struct {
	ID             int64       `json:"id"`
	OPCardNo       string      `json:"opCardNo"`
	PatientName    string      `json:"patientName"`
	DoctorName     string      `json:"doctorName"`
	Sex            Sex         `json:"sex"`
	Age            string      `json:"age"`
	Mobile         string      `json:"mobile"`
	Address        string      `json:"address"`
	DietPlan       string      `json:"dietPlan"`
	Status         OrderStatus `json:"status"`
	RequestDate    string      `json:"requestDate"`
	Rate           float64     `json:"rate"`
	Notes          string      `json:"notes"`
	Customizations string      `json:"customizations"`
	CreatedDate    Date        `json:"createdDate"`
}

func (o DietOrder) RecordID() int64 { return o.ID }

func (o DietOrder) SearchFields() []string {
	return []string{o.PatientName, o.OPCardNo, o.DoctorName, o.DietPlan}
}

func (o DietOrder) CategoryValue() string { return string(o.Status) }

func (o DietOrder) Created() Date { return o.CreatedDate }

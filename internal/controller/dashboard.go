package controller

import (
	"github.com/dukerupert/dietdesk/internal/model"
)

const recentOrderCount = 5

// Summary is the dashboard headline data.
type Summary struct {
	TotalOrders    int                       `json:"totalOrders"`
	ApprovedOrders int                       `json:"approvedOrders"`
	DietPlans      int                       `json:"dietPlans"`
	FoodItems      int                       `json:"foodItems"`
	Revenue        float64                   `json:"revenue"`
	ByStatus       map[model.OrderStatus]int `json:"byStatus"`
	RecentOrders   []model.DietOrder         `json:"recentOrders"`
}

// Dashboard summarises the three collections. Revenue is the sum of all
// order rates regardless of status. Recent orders are newest first.
func Dashboard(foods *FoodItems, plans *DietPlans, orders *DietOrders) Summary {
	all := orders.All()
	s := Summary{
		TotalOrders:  len(all),
		DietPlans:    plans.Count(),
		FoodItems:    foods.Count(),
		ByStatus:     make(map[model.OrderStatus]int, len(model.OrderStatuses)),
		RecentOrders: make([]model.DietOrder, 0, recentOrderCount),
	}
	for _, status := range model.OrderStatuses {
		s.ByStatus[status] = 0
	}
	for _, o := range all {
		s.Revenue += o.Rate
		s.ByStatus[o.Status]++
	}
	s.ApprovedOrders = s.ByStatus[model.OrderStatusApproved]
	for i := len(all) - 1; i >= 0 && len(s.RecentOrders) < recentOrderCount; i-- {
		s.RecentOrders = append(s.RecentOrders, all[i])
	}
	return s
}

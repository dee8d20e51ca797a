package model

import "time"

var sampleDate = NewDate(time.Date(2025, time.June, 9, 0, 0, 0, 0, time.UTC))

// SampleFoodItems returns the catalog installed on first run.
func SampleFoodItems() []FoodItem {
	return []FoodItem{
		{
			ID: 1, Name: "Brown Rice", Type: FoodTypeVegetarian, Unit: "grams",
			Calories: 112, Fat: 0.9, Carbs: 23, Protein: 2.6, Rate: 15,
			DaysAvailable: []string{"Mon", "Tue", "Wed", "Thu", "Fri"},
			CreatedDate:   sampleDate,
		},
		{
			ID: 2, Name: "Grilled Chicken", Type: FoodTypeNonVegetarian, Unit: "grams",
			Calories: 165, Fat: 3.6, Carbs: 0, Protein: 31, Rate: 45,
			DaysAvailable: []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"},
			CreatedDate:   sampleDate,
		},
	}
}

// SampleDietPlans returns the packages installed on first run.
func SampleDietPlans() []DietPlan {
	return []DietPlan{
		{
			ID: 1, PackageName: "Diabetic Diet Package", DietType: DietTypeTherapeutic,
			Rate: 350, TotalRate: 350,
			Breakfast: Breakfast{
				Morning:   "Oats - 100g, Milk - 200ml",
				Afternoon: "Apple - 1 piece, Green Tea - 1 cup",
			},
			Lunch:       "Brown Rice - 150g, Dal - 100g, Vegetables - 150g, Salad - 50g",
			Dinner:      "Roti - 2 pieces, Grilled Chicken - 100g, Curry - 100g",
			CreatedDate: sampleDate,
		},
		{
			ID: 2, PackageName: "Regular Diet Package", DietType: DietTypeRegular,
			Rate: 250, TotalRate: 250,
			Breakfast: Breakfast{
				Morning:   "Bread - 2 slices, Butter - 10g, Tea - 1 cup",
				Afternoon: "Biscuits - 2 pieces, Milk - 150ml",
			},
			Lunch:       "Rice - 200g, Curry - 150g, Vegetables - 100g, Dal - 100g",
			Dinner:      "Roti - 3 pieces, Dal - 100g, Curd - 100g, Pickle - 10g",
			CreatedDate: sampleDate,
		},
	}
}

// SampleDietOrders returns the orders installed on first run.
func SampleDietOrders() []DietOrder {
	return []DietOrder{
		{
			ID: 1, OPCardNo: "100888889999448", PatientName: "Sajan", DoctorName: "Dr. Smith",
			Sex: SexMale, Age: "38 years", Mobile: "1324847987", Address: "Kochi",
			DietPlan: "Diabetic Diet Plan", Status: OrderStatusPending, RequestDate: "09/06/2025",
			Rate: 350, Notes: "Patient is diabetic, requires low sugar diet",
			CreatedDate: sampleDate,
		},
		{
			ID: 2, OPCardNo: "25-26-25060017", PatientName: "Shajeer", DoctorName: "Dr. Johnson",
			Sex: SexMale, Age: "30 years", Mobile: "1544877898", Address: "Ernakulam",
			DietPlan: "Regular Diet Plan", Status: OrderStatusApproved, RequestDate: "09/06/2025",
			Rate: 250, Notes: "Standard recovery diet",
			CreatedDate: sampleDate,
		},
	}
}

package models

import "time"

// MealIngredient is one ingredient line of a meal: the raw weight in
// grams needed to prepare a single serving.
type MealIngredient struct {
	ID           string `gorm:"column:id;type:uuid;primary_key" json:"id"`
	MealID       string `gorm:"column:meal_id;type:uuid;not null;index" json:"meal_id"`
	IngredientID string `gorm:"column:ingredient_id;type:uuid;not null" json:"ingredient_id"`
	WeightGrams  int64  `gorm:"column:weight_grams;not null" json:"weight_grams"`
	// CreatedAt is managed by GORM and records the creation time.
	CreatedAt time.Time `json:"created_at"`
}

func (MealIngredient) TableName() string {
	return "meal_ingredient"
}

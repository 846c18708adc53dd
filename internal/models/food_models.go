package models

import "time"

type Food struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Price       float64   `json:"price"`
	Discount    float64   `json:"discount"`
	Description string    `json:"description"`
	Image       string    `json:"image"`
	Available   bool      `json:"available"`
	AddedAt     time.Time `json:"added_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type CreateFoodRequest struct {
	Name        string  `json:"name" validate:"required"`
	Price       float64 `json:"price" validate:"gt=0"`
	Discount    float64 `json:"discount" validate:"gte=0,lte=100"`
	Description string  `json:"description"`
	Image       string  `json:"image" validate:"omitempty,url"`
	Available   *bool   `json:"available"`
}

// UpdateFoodRequest is a partial update; nil fields are left unchanged.
type UpdateFoodRequest struct {
	Name        *string  `json:"name" validate:"omitempty,min=1"`
	Price       *float64 `json:"price" validate:"omitempty,gt=0"`
	Discount    *float64 `json:"discount" validate:"omitempty,gte=0,lte=100"`
	Description *string  `json:"description"`
	Image       *string  `json:"image" validate:"omitempty,url"`
	Available   *bool    `json:"available"`
}

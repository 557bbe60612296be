package models

import "time"

type Review struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	UserName   string    `json:"user_name"`
	TargetID   string    `json:"target_id"`
	TargetType string    `json:"target_type"`
	Rating     int       `json:"rating"`
	Comment    string    `json:"comment,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

type ReviewCreateRequest struct {
	TargetID   string `json:"target_id"`
	TargetType string `json:"target_type"`
	Rating     int    `json:"rating"`
	Comment    string `json:"comment,omitempty"`
}

type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Icon string `json:"icon"`
}

type CategoriesResponse struct {
	ProductCategories []Category `json:"product_categories"`
	ServiceTypes      []Category `json:"service_types"`
	CuisineTypes      []Category `json:"cuisine_types"`
}

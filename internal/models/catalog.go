package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID          string          `json:"id"`
	SellerID    string          `json:"seller_id"`
	SellerName  string          `json:"seller_name"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category"`
	Subcategory string          `json:"subcategory,omitempty"`
	Condition   string          `json:"condition"`
	Location    string          `json:"location,omitempty"`
	Quantity    int             `json:"quantity"`
	IsAvailable bool            `json:"is_available"`
	Views       int             `json:"views"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

type ProductCreateRequest struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category"`
	Subcategory string          `json:"subcategory,omitempty"`
	Condition   string          `json:"condition"`
	Location    string          `json:"location,omitempty"`
	Quantity    int             `json:"quantity"`
}

type ProductFilter struct {
	Category string
	Search   string
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
	Limit    int
}

type ServiceListing struct {
	ID           string          `json:"id"`
	ProviderID   string          `json:"provider_id"`
	ProviderName string          `json:"provider_name"`
	Title        string          `json:"title"`
	Description  string          `json:"description"`
	Price        decimal.Decimal `json:"price"`
	ServiceType  string          `json:"service_type"`
	Duration     string          `json:"duration,omitempty"`
	Location     string          `json:"location,omitempty"`
	Availability string          `json:"availability,omitempty"`
	Rating       float64         `json:"rating"`
	TotalReviews int             `json:"total_reviews"`
	IsAvailable  bool            `json:"is_available"`
	CreatedAt    time.Time       `json:"created_at"`
}

type ServiceCreateRequest struct {
	Title        string          `json:"title"`
	Description  string          `json:"description"`
	Price        decimal.Decimal `json:"price"`
	ServiceType  string          `json:"service_type"`
	Duration     string          `json:"duration,omitempty"`
	Location     string          `json:"location,omitempty"`
	Availability string          `json:"availability,omitempty"`
}

type Restaurant struct {
	ID           string    `json:"id"`
	OwnerID      string    `json:"owner_id"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	CuisineType  string    `json:"cuisine_type"`
	Address      string    `json:"address"`
	Phone        string    `json:"phone"`
	OpeningHours string    `json:"opening_hours,omitempty"`
	Rating       float64   `json:"rating"`
	TotalReviews int       `json:"total_reviews"`
	IsOpen       bool      `json:"is_open"`
	IsVerified   bool      `json:"is_verified"`
	CreatedAt    time.Time `json:"created_at"`
}

type RestaurantCreateRequest struct {
	Name         string `json:"name"`
	Description  string `json:"description"`
	CuisineType  string `json:"cuisine_type"`
	Address      string `json:"address"`
	Phone        string `json:"phone"`
	OpeningHours string `json:"opening_hours,omitempty"`
}

type MenuItem struct {
	ID           string          `json:"id"`
	RestaurantID string          `json:"restaurant_id"`
	Name         string          `json:"name"`
	Description  string          `json:"description"`
	Price        decimal.Decimal `json:"price"`
	Category     string          `json:"category"`
	IsAvailable  bool            `json:"is_available"`
	CreatedAt    time.Time       `json:"created_at"`
}

type MenuItemCreateRequest struct {
	RestaurantID string          `json:"restaurant_id"`
	Name         string          `json:"name"`
	Description  string          `json:"description"`
	Price        decimal.Decimal `json:"price"`
	Category     string          `json:"category"`
	IsAvailable  bool            `json:"is_available"`
}

package models

import (
	"time"

	"github.com/shopspring/decimal"

	"campusmarket/internal/currency"
)

// PurchaseKind names which of the three purchase flows created a record.
type PurchaseKind string

const (
	PurchaseProduct PurchaseKind = "product"
	PurchaseService PurchaseKind = "service"
	PurchaseFood    PurchaseKind = "food"
)

type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusConfirmed OrderStatus = "confirmed"
	StatusPreparing OrderStatus = "preparing"
	StatusReady     OrderStatus = "ready"
	StatusInTransit OrderStatus = "in_transit"
	StatusDelivered OrderStatus = "delivered"
	StatusCompleted OrderStatus = "completed"
	StatusCancelled OrderStatus = "cancelled"
	StatusRefunded  OrderStatus = "refunded"
	StatusInProgress OrderStatus = "in_progress"
)

type Order struct {
	ID              string          `json:"id"`
	BuyerID         string          `json:"buyer_id"`
	BuyerName       string          `json:"buyer_name"`
	SellerID        string          `json:"seller_id"`
	SellerName      string          `json:"seller_name"`
	ProductID       string          `json:"product_id"`
	ProductTitle    string          `json:"product_title"`
	Quantity        int             `json:"quantity"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	DiscountApplied decimal.Decimal `json:"discount_applied"`
	FinalAmount     decimal.Decimal `json:"final_amount"`
	PaymentCurrency currency.Code   `json:"payment_currency"`
	DeliveryAddress string          `json:"delivery_address,omitempty"`
	Notes           string          `json:"notes,omitempty"`
	Status          OrderStatus     `json:"status"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

type OrderCreateRequest struct {
	ProductID       string        `json:"product_id"`
	Quantity        int           `json:"quantity"`
	PaymentCurrency currency.Code `json:"payment_currency"`
	DeliveryAddress string        `json:"delivery_address,omitempty"`
	Notes           string        `json:"notes,omitempty"`
}

type ServiceBooking struct {
	ID              string          `json:"id"`
	ServiceID       string          `json:"service_id"`
	ServiceTitle    string          `json:"service_title"`
	ClientID        string          `json:"client_id"`
	ClientName      string          `json:"client_name"`
	ProviderID      string          `json:"provider_id"`
	ProviderName    string          `json:"provider_name"`
	ScheduledDate   string          `json:"scheduled_date"`
	ScheduledTime   string          `json:"scheduled_time,omitempty"`
	Notes           string          `json:"notes,omitempty"`
	Location        string          `json:"location,omitempty"`
	Amount          decimal.Decimal `json:"amount"`
	DiscountApplied decimal.Decimal `json:"discount_applied"`
	FinalAmount     decimal.Decimal `json:"final_amount"`
	PaymentCurrency currency.Code   `json:"payment_currency"`
	Status          OrderStatus     `json:"status"`
	CreatedAt       time.Time       `json:"created_at"`
}

type BookingCreateRequest struct {
	ServiceID       string        `json:"service_id"`
	ScheduledDate   string        `json:"scheduled_date"`
	ScheduledTime   string        `json:"scheduled_time,omitempty"`
	PaymentCurrency currency.Code `json:"payment_currency"`
	Notes           string        `json:"notes,omitempty"`
	Location        string        `json:"location,omitempty"`
}

// FoodOrderItem is one line of a food order, priced at order time.
type FoodOrderItem struct {
	MenuItemID string          `json:"menu_item_id"`
	Name       string          `json:"name"`
	Price      decimal.Decimal `json:"price"`
	Quantity   int             `json:"quantity"`
	Total      decimal.Decimal `json:"total"`
}

type FoodOrder struct {
	ID              string          `json:"id"`
	CustomerID      string          `json:"customer_id"`
	CustomerName    string          `json:"customer_name"`
	RestaurantID    string          `json:"restaurant_id"`
	RestaurantName  string          `json:"restaurant_name"`
	Items           []FoodOrderItem `json:"items"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	DeliveryFee     decimal.Decimal `json:"delivery_fee"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	DiscountApplied decimal.Decimal `json:"discount_applied"`
	FinalAmount     decimal.Decimal `json:"final_amount"`
	PaymentCurrency currency.Code   `json:"payment_currency"`
	DeliveryAddress string          `json:"delivery_address"`
	Notes           string          `json:"notes,omitempty"`
	Status          OrderStatus     `json:"status"`
	CreatedAt       time.Time       `json:"created_at"`
}

type FoodOrderLine struct {
	MenuItemID string `json:"menu_item_id"`
	Quantity   int    `json:"quantity"`
}

type FoodOrderCreateRequest struct {
	RestaurantID    string          `json:"restaurant_id"`
	Items           []FoodOrderLine `json:"items"`
	PaymentCurrency currency.Code   `json:"payment_currency"`
	DeliveryAddress string          `json:"delivery_address"`
	Notes           string          `json:"notes,omitempty"`
}

type StatusUpdateRequest struct {
	Status OrderStatus `json:"status"`
}

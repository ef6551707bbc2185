package models

import (
	"encoding/json"
	"fmt"
	"time"

	"go-restaurant-ops/database"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusPreparing OrderStatus = "preparing"
	StatusReady     OrderStatus = "ready"
	StatusCompleted OrderStatus = "completed"
	StatusCancelled OrderStatus = "cancelled"
)

// OrderStatuses lists every valid status.
var OrderStatuses = []OrderStatus{StatusPending, StatusPreparing, StatusReady, StatusCompleted, StatusCancelled}

// Valid reports whether s is one of the defined statuses.
func (s OrderStatus) Valid() bool {
	for _, status := range OrderStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// ParseOrderStatus converts raw input into an OrderStatus.
func ParseOrderStatus(raw string) (OrderStatus, error) {
	status := OrderStatus(raw)
	if !status.Valid() {
		return "", fmt.Errorf("unknown order status %q", raw)
	}
	return status, nil
}

type Order struct {
	ID            primitive.ObjectID `bson:"_id" json:"-"`
	Order_id      string             `json:"order_id"`
	Restaurant_id string             `json:"restaurant_id"`
	Table_id      string             `json:"table_id"`
	User_id       string             `json:"user_id"`
	Status        OrderStatus        `json:"status"`
	Total_amount  decimal.Decimal    `json:"total_amount"`
	Created_at    time.Time          `json:"created_at"`
	Updated_at    time.Time          `json:"updated_at"`
	Items         []OrderItem        `bson:"-" json:"items"`
}

type OrderItem struct {
	ID            primitive.ObjectID `bson:"_id" json:"-"`
	Order_item_id string             `json:"order_item_id"`
	Order_id      string             `json:"order_id"`
	Menu_item_id  string             `json:"menu_item_id"`
	Name          string             `json:"name"`
	Quantity      int                `json:"quantity"`
	Price         decimal.Decimal    `json:"price"`
	Created_at    time.Time          `json:"created_at"`
}

// LineTotal is the snapshotted price times quantity.
func (i OrderItem) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// MarshalJSON writes the total with two decimal places.
func (o Order) MarshalJSON() ([]byte, error) {
	type order Order
	return json.Marshal(struct {
		order
		Total_amount string `json:"total_amount"`
	}{order(o), money(o.Total_amount)})
}

// MarshalJSON writes the unit price and line total with two decimal places.
func (i OrderItem) MarshalJSON() ([]byte, error) {
	type orderItem OrderItem
	return json.Marshal(struct {
		orderItem
		Price      string `json:"price"`
		Line_total string `json:"line_total"`
	}{orderItem(i), money(i.Price), money(i.LineTotal())})
}

func money(d decimal.Decimal) string {
	return d.StringFixed(database.MoneyScale)
}

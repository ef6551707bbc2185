package models

import (
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type MenuItem struct {
	ID            primitive.ObjectID `bson:"_id" json:"-"`
	Menu_item_id  string             `json:"menu_item_id"`
	Restaurant_id string             `json:"restaurant_id"`
	Name          string             `json:"name"`
	Price         decimal.Decimal    `json:"price"`
	Is_active     bool               `json:"is_active"`
	Is_available  bool               `json:"is_available"`
}

// Orderable reports whether the item can currently be ordered.
func (m MenuItem) Orderable() bool {
	return m.Is_active && m.Is_available
}

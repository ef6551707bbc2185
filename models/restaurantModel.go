package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Restaurant struct {
	ID            primitive.ObjectID `bson:"_id" json:"-"`
	Restaurant_id string             `json:"restaurant_id"`
	Owner_id      string             `json:"owner_id"`
	Name          string             `json:"name"`
}

type Table struct {
	ID            primitive.ObjectID `bson:"_id" json:"-"`
	Table_id      string             `json:"table_id"`
	Restaurant_id string             `json:"restaurant_id"`
	Table_number  string             `json:"table_number"`
}

// RestaurantRoom is the realtime group name for a restaurant.
func RestaurantRoom(restaurantID string) string {
	return "restaurant_" + restaurantID
}

package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Notification struct {
	ID              primitive.ObjectID `bson:"_id" json:"-"`
	Notification_id string             `json:"id"`
	User_id         string             `json:"user_id"`
	Title           string             `json:"title"`
	Body            string             `json:"body"`
	Data            map[string]any     `json:"data"`
	Read            bool               `json:"read"`
	Created_at      time.Time          `json:"created_at"`
}

package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ServiceRequestType string

const (
	ServiceWaiter ServiceRequestType = "waiter"
	ServiceBill   ServiceRequestType = "bill"
	ServiceOther  ServiceRequestType = "other"
)

func (t ServiceRequestType) Valid() bool {
	switch t {
	case ServiceWaiter, ServiceBill, ServiceOther:
		return true
	}
	return false
}

type ServiceRequestStatus string

const (
	ServicePending   ServiceRequestStatus = "pending"
	ServiceCompleted ServiceRequestStatus = "completed"
	ServiceCancelled ServiceRequestStatus = "cancelled"
)

type ServiceRequest struct {
	ID                 primitive.ObjectID   `bson:"_id" json:"-"`
	Service_request_id string               `json:"id"`
	Restaurant_id      string               `json:"restaurant_id"`
	Table_id           string               `json:"table_id"`
	Table_number       string               `json:"table_number,omitempty"`
	User_id            *string              `json:"user_id"`
	Type               ServiceRequestType   `json:"type"`
	Note               *string              `json:"note"`
	Status             ServiceRequestStatus `json:"status"`
	Created_at         time.Time            `json:"created_at"`
	Completed_at       *time.Time           `json:"completed_at"`
}

package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role is an account's role on the platform.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleOwner    Role = "owner"
	RoleEmployee Role = "employee"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleCustomer, RoleOwner, RoleEmployee:
		return true
	}
	return false
}

// User is the subset of the account document the order core reads.
type User struct {
	ID            primitive.ObjectID `bson:"_id" json:"-"`
	User_id       string             `json:"user_id"`
	Name          string             `json:"name"`
	Email         string             `json:"email"`
	Role          Role               `json:"role"`
	Restaurant_id string             `json:"restaurant_id,omitempty"`
	Push_token    string             `json:"push_token,omitempty"`
}

package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Marketplace roles. Vendors start out inactive until an admin approves them.
const (
	RoleBuyer  = "buyer"
	RoleVendor = "vendor"
	RoleAdmin  = "admin"
)

type User struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name        string             `bson:"name" json:"name"`
	Email       string             `bson:"email" json:"email"`
	PhoneNumber string             `bson:"phoneNumber" json:"phoneNumber"`
	ProfilePic  string             `bson:"profilePic,omitempty" json:"profilePic,omitempty"`
	Role        string             `bson:"role" json:"role"`
	Password    string             `bson:"password" json:"-"`
	Active      bool               `bson:"active" json:"active"`

	ResetPasswordToken  string    `bson:"resetPasswordToken,omitempty" json:"-"`
	ResetPasswordExpire time.Time `bson:"resetPasswordExpire,omitempty" json:"-"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

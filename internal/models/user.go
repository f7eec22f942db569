package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is an authenticated API caller, mapped from Keycloak claims on first
// login. Staff accounts live here, not in the personnel collections.
type User struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Sub       string             `bson:"sub" json:"sub"` // OIDC subject
	Email     string             `bson:"email" json:"email"`
	Name      string             `bson:"name" json:"name"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

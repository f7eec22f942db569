package sessions

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Session is a persistent refresh session. The refresh token is the lookup
// key; the access token itself is never stored.
type Session struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	RefreshToken string             `bson:"refreshToken" json:"refreshToken"`
	Sub          string             `bson:"sub" json:"sub"`
	ExpiresAt    time.Time          `bson:"expiresAt" json:"expiresAt"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
}

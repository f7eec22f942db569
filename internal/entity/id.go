package entity

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DecodeID parses the external identifier form (24 hex characters) into an
// ObjectID. Anything else fails with ErrInvalidID so the caller can reject
// the request before touching the store; feeding a malformed id to the
// driver would surface as a misleading not-found or a low-level error.
func DecodeID(raw string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		return primitive.NilObjectID, ErrInvalidID
	}
	return id, nil
}

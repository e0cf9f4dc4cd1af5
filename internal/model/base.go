package model

import (
	"aptitude_backend/internal/util"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Base carries the fields the store assigns to every record.
type Base struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Touch assigns a fresh id and both timestamps for an insert.
func (b *Base) Touch(now time.Time) {
	if b.ID.IsZero() {
		b.ID = primitive.NewObjectID()
	}
	b.CreatedAt = now
	b.UpdatedAt = now
}

// Now returns the current time at the precision BSON dates keep.
func Now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}

// ParseID validates a hex ObjectID coming from a URL.
func ParseID(hex string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: %q", util.ErrInvalidID, hex)
	}
	return id, nil
}

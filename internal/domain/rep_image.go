package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RepImage is the captured frame and judgement for one repetition.
// SessionID is the hex form of the owning WorkoutSession id; (SessionID,
// RepNumber) is unique.
type RepImage struct {
	ID        primitive.ObjectID     `bson:"_id,omitempty" json:"id"`
	SessionID string                 `bson:"sessionId" json:"sessionId"`
	RepNumber int                    `bson:"repNumber" json:"repNumber"`
	ImageURL  string                 `bson:"imageUrl,omitempty" json:"imageUrl,omitempty"`
	Inline    bool                   `bson:"inline,omitempty" json:"inline,omitempty"` // ImageURL holds a data URL
	Correct   bool                   `bson:"correct" json:"correct"`
	Details   map[string]interface{} `bson:"details,omitempty" json:"details,omitempty"` // angle measurements, shape varies by activity
	CreatedAt time.Time              `bson:"createdAt" json:"createdAt"`
}

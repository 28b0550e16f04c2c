package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ConnectionStatus type for the request lifecycle
type ConnectionStatus string

const (
	ConnectionPending  ConnectionStatus = "pending"
	ConnectionAccepted ConnectionStatus = "accepted"
	ConnectionRejected ConnectionStatus = "rejected"
)

// Connection is a social link between two users, created as a request by
// FromUserID and answered by ToUserID.
type Connection struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FromUserID string             `bson:"fromUserId" json:"fromUserId"`
	ToUserID   string             `bson:"toUserId" json:"toUserId"`
	PairKey    string             `bson:"pairKey" json:"-"`
	Status     ConnectionStatus   `bson:"status" json:"status"`
	CreatedAt  time.Time          `bson:"createdAt" json:"createdAt"`
	AcceptedAt *time.Time         `bson:"acceptedAt,omitempty" json:"acceptedAt,omitempty"`
	RejectedAt *time.Time         `bson:"rejectedAt,omitempty" json:"rejectedAt,omitempty"`
}

// PairKey returns the same key for (a, b) and (b, a).
func PairKey(a, b string) string {
	if a > b {
		a, b = b, a
	}
	return a + "|" + b
}

// Counterpart returns the other side of the connection relative to userID.
func (c *Connection) Counterpart(userID string) string {
	if c.FromUserID == userID {
		return c.ToUserID
	}
	return c.FromUserID
}

package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PaymentPurpose enum
type PaymentPurpose string

const (
	PurposeSubscribe PaymentPurpose = "subscribe"
	PurposeBoost     PaymentPurpose = "boost"
)

// PaymentStatus enum
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentConfirmed PaymentStatus = "confirmed"
	PaymentFailed    PaymentStatus = "failed"
)

// Payment records one checkout attempt against the external gateway.
// SessionID is the gateway's opaque handle; a payment leaves pending at
// most once, enforced by a conditional write on status.
type Payment struct {
	ID        primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	PayerID   string              `bson:"payerId" json:"payerId"`
	Purpose   PaymentPurpose      `bson:"purpose" json:"purpose"`
	IssueID   *primitive.ObjectID `bson:"issueId,omitempty" json:"issueId,omitempty"`
	Amount    int64               `bson:"amount" json:"amount"`
	SessionID string              `bson:"sessionId" json:"sessionId"`
	Status    PaymentStatus       `bson:"status" json:"status"`
	CreatedAt time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time           `bson:"updatedAt" json:"updatedAt"`
}

// Terminal reports whether the payment has reached a final state.
func (p *Payment) Terminal() bool {
	return p.Status != PaymentPending
}

// internal/domain/models/inquiry.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Inquiry delivery states.
const (
	InquiryPending = "pending"
	InquirySent    = "sent"
	InquiryFailed  = "failed"
)

// Inquiry records a contact-form submission that passed validation and the
// anti-spam checks. Params holds the template parameters exactly as they
// were handed to the email provider.
type Inquiry struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Reference string             `bson:"reference" json:"reference"` // uuid shown to operators
	Email     string             `bson:"email" json:"email"`         // lowercase reply-to address
	Params    map[string]string  `bson:"params" json:"params"`
	Provider  string             `bson:"provider" json:"provider"` // emailjs, resend, smtp, log
	Status    string             `bson:"status" json:"status"`     // pending, sent, failed
	Error     string             `bson:"error,omitempty" json:"error,omitempty"`
	ClientIP  string             `bson:"client_ip,omitempty" json:"client_ip,omitempty"`
	StampID   string             `bson:"stamp_id,omitempty" json:"-"` // nonce of the form stamp, used once
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`
}

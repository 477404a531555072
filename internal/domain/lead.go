package domain

import "context"

// Lead holds contact and interest fields extracted from a chat transcript.
// Every field except Summary may be nil; a missing field is nil, never the
// literal string "null" or an empty string.
type Lead struct {
	Name      *string `json:"name"`
	Phone     *string `json:"phone"`
	Email     *string `json:"email"`
	Budget    *string `json:"budget"`
	Timeframe *string `json:"timeframe"`
	Interest  *string `json:"interest"`
	Summary   *string `json:"summary"`
}

// Messenger sends a plain-text message to a phone number. Backed by the
// WhatsApp gateway in production; consumers must tolerate a nil Messenger.
type Messenger interface {
	SendText(ctx context.Context, phone, message string) error
}

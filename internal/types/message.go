package types

import (
	"time"

	"github.com/google/uuid"
)

type MessageDirection string

const (
	MessageInbound  MessageDirection = "inbound"
	MessageOutbound MessageDirection = "outbound"
)

// Message is one entry in a customer's communication log.
type Message struct {
	ID         uuid.UUID        `json:"id"`
	TenantID   uuid.UUID        `json:"tenant_id"`
	CustomerID uuid.UUID        `json:"customer_id"`
	Direction  MessageDirection `json:"direction"`
	Subject    string           `json:"subject,omitempty"`
	Body       string           `json:"body"`
	SentAt     *time.Time       `json:"sent_at,omitempty"`
	CreatedAt  time.Time        `json:"created_at"`
}

type SendMessageParams struct {
	CustomerID uuid.UUID `json:"customer_id" binding:"required"`
	Subject    string    `json:"subject,omitempty"`
	Body       string    `json:"body" binding:"required"`
}

// SuggestReplyParams asks for an AI-drafted reply to the latest inbound
// message in a customer's thread.
type SuggestReplyParams struct {
	CustomerID uuid.UUID `json:"customer_id" binding:"required"`
	Tone       string    `json:"tone,omitempty"` // friendly, formal
}

type SuggestedReply struct {
	Draft string `json:"draft"`
}

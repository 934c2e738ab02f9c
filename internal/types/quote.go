package types

import (
	"time"

	"github.com/google/uuid"
)

type QuoteStatus string

const (
	QuoteDraft    QuoteStatus = "draft"
	QuoteSent     QuoteStatus = "sent"
	QuoteAccepted QuoteStatus = "accepted"
	QuoteDeclined QuoteStatus = "declined"
)

type QuoteLineItem struct {
	Description string `json:"description"`
	Quantity    int    `json:"quantity"`
	PriceCents  int64  `json:"price_cents"`
}

type Quote struct {
	ID         uuid.UUID       `json:"id"`
	TenantID   uuid.UUID       `json:"tenant_id"`
	CustomerID uuid.UUID       `json:"customer_id"`
	Status     QuoteStatus     `json:"status"`
	LineItems  []QuoteLineItem `json:"line_items"`
	TotalCents int64           `json:"total_cents"`
	ValidUntil *time.Time      `json:"valid_until,omitempty"`
	Notes      string          `json:"notes,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

type CreateQuoteParams struct {
	CustomerID uuid.UUID       `json:"customer_id" binding:"required"`
	LineItems  []QuoteLineItem `json:"line_items" binding:"required"`
	ValidUntil *time.Time      `json:"valid_until,omitempty"`
	Notes      string          `json:"notes,omitempty"`
}

type UpdateQuoteParams struct {
	Status     *QuoteStatus     `json:"status,omitempty"`
	LineItems  *[]QuoteLineItem `json:"line_items,omitempty"`
	ValidUntil *time.Time       `json:"valid_until,omitempty"`
	Notes      *string          `json:"notes,omitempty"`
}

// AcceptQuoteParams carries the scheduling details needed to turn an
// accepted quote into a booking.
type AcceptQuoteParams struct {
	ScheduledAt time.Time `json:"scheduled_at" binding:"required"`
	Vehicle     string    `json:"vehicle,omitempty"`
}

package types

import (
	"time"

	"github.com/google/uuid"
)

type InvoiceStatus string

const (
	InvoiceDraft InvoiceStatus = "draft"
	InvoiceSent  InvoiceStatus = "sent"
	InvoicePaid  InvoiceStatus = "paid"
	InvoiceVoid  InvoiceStatus = "void"
)

type InvoiceLineItem struct {
	Description string `json:"description"`
	Quantity    int    `json:"quantity"`
	PriceCents  int64  `json:"price_cents"`
}

type Invoice struct {
	ID            uuid.UUID         `json:"id"`
	TenantID      uuid.UUID         `json:"tenant_id"`
	CustomerID    uuid.UUID         `json:"customer_id"`
	BookingID     *uuid.UUID        `json:"booking_id,omitempty"`
	Status        InvoiceStatus     `json:"status"`
	LineItems     []InvoiceLineItem `json:"line_items"`
	SubtotalCents int64             `json:"subtotal_cents"`
	TaxCents      int64             `json:"tax_cents"`
	TotalCents    int64             `json:"total_cents"`
	DueDate       *time.Time        `json:"due_date,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
}

type CreateInvoiceParams struct {
	CustomerID uuid.UUID         `json:"customer_id" binding:"required"`
	BookingID  *uuid.UUID        `json:"booking_id,omitempty"`
	LineItems  []InvoiceLineItem `json:"line_items" binding:"required"`
	TaxRateBps int64             `json:"tax_rate_bps"`
	DueDate    *time.Time        `json:"due_date,omitempty"`
}

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentSucceeded PaymentStatus = "succeeded"
	PaymentFailed    PaymentStatus = "failed"
)

type Payment struct {
	ID          uuid.UUID     `json:"id"`
	TenantID    uuid.UUID     `json:"tenant_id"`
	InvoiceID   uuid.UUID     `json:"invoice_id"`
	AmountCents int64         `json:"amount_cents"`
	Method      string        `json:"method"` // card, cash, transfer
	ProviderRef string        `json:"provider_ref,omitempty"`
	Status      PaymentStatus `json:"status"`
	PaidAt      *time.Time    `json:"paid_at,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
}

type RecordPaymentParams struct {
	InvoiceID   uuid.UUID `json:"invoice_id" binding:"required"`
	AmountCents int64     `json:"amount_cents" binding:"required"`
	Method      string    `json:"method" binding:"required"`
	ProviderRef string    `json:"provider_ref,omitempty"`
}

// DepositIntentParams asks the payment provider for a deposit charge on a
// booking. The Idempotency-Key request header is forwarded to the provider.
type DepositIntentParams struct {
	BookingID uuid.UUID `json:"booking_id" binding:"required"`
}

// DepositIntent is the provider-side handle the frontend completes.
type DepositIntent struct {
	ProviderRef  string `json:"provider_ref"`
	ClientSecret string `json:"client_secret"`
	AmountCents  int64  `json:"amount_cents"`
	Currency     string `json:"currency"`
}

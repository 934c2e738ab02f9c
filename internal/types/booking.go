package types

import (
	"time"

	"github.com/google/uuid"
)

type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCompleted BookingStatus = "completed"
	BookingCancelled BookingStatus = "cancelled"
)

// BookingAddOn is an extra service attached to a booking (e.g. pet hair
// removal, engine bay). Prices are integer cents.
type BookingAddOn struct {
	Name       string `json:"name"`
	PriceCents int64  `json:"price_cents"`
}

type Booking struct {
	ID             uuid.UUID      `json:"id"`
	TenantID       uuid.UUID      `json:"tenant_id"`
	CustomerID     uuid.UUID      `json:"customer_id"`
	ServiceName    string         `json:"service_name"`
	Vehicle        string         `json:"vehicle"`
	ScheduledAt    time.Time      `json:"scheduled_at"`
	Status         BookingStatus  `json:"status"`
	BasePriceCents int64          `json:"base_price_cents"`
	AddOns         []BookingAddOn `json:"add_ons,omitempty"`
	Notes          string         `json:"notes,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

type CreateBookingParams struct {
	CustomerID     uuid.UUID      `json:"customer_id" binding:"required"`
	ServiceName    string         `json:"service_name" binding:"required"`
	Vehicle        string         `json:"vehicle,omitempty"`
	ScheduledAt    time.Time      `json:"scheduled_at" binding:"required"`
	BasePriceCents int64          `json:"base_price_cents" binding:"required"`
	AddOns         []BookingAddOn `json:"add_ons,omitempty"`
	Notes          string         `json:"notes,omitempty"`
}

type UpdateBookingParams struct {
	ServiceName    *string         `json:"service_name,omitempty"`
	Vehicle        *string         `json:"vehicle,omitempty"`
	ScheduledAt    *time.Time      `json:"scheduled_at,omitempty"`
	Status         *BookingStatus  `json:"status,omitempty"`
	BasePriceCents *int64          `json:"base_price_cents,omitempty"`
	AddOns         *[]BookingAddOn `json:"add_ons,omitempty"`
	Notes          *string         `json:"notes,omitempty"`
}

// DepositPreviewParams feeds the deposit calculation without persisting
// anything. Rates are basis points (e.g. 825 = 8.25% tax, 2500 = 25% deposit).
type DepositPreviewParams struct {
	BasePriceCents int64          `json:"base_price_cents" binding:"required"`
	AddOns         []BookingAddOn `json:"add_ons,omitempty"`
	TaxRateBps     int64          `json:"tax_rate_bps"`
	DepositBps     int64          `json:"deposit_bps"`
}

// DepositPreview is the price breakdown shown before a booking is confirmed.
type DepositPreview struct {
	SubtotalCents   int64 `json:"subtotal_cents"`
	TaxCents        int64 `json:"tax_cents"`
	TotalCents      int64 `json:"total_cents"`
	DepositCents    int64 `json:"deposit_cents"`
	BalanceDueCents int64 `json:"balance_due_cents"`
}

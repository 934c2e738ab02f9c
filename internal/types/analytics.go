package types

import (
	"time"

	"github.com/google/uuid"
)

// CustomerValue is one row of the lifetime-value roll-up.
type CustomerValue struct {
	CustomerID        uuid.UUID  `json:"customer_id"`
	Name              string     `json:"name"`
	BookingCount      int        `json:"booking_count"`
	TotalRevenueCents int64      `json:"total_revenue_cents"`
	LastBookingAt     *time.Time `json:"last_booking_at,omitempty"`
}

// FunnelStage is one step of the conversion funnel
// (quote sent → accepted → booked → completed).
type FunnelStage struct {
	Stage string `json:"stage"`
	Count int    `json:"count"`
}

type RevenueSummary struct {
	PeriodStart       time.Time `json:"period_start"`
	PeriodEnd         time.Time `json:"period_end"`
	InvoicedCents     int64     `json:"invoiced_cents"`
	CollectedCents    int64     `json:"collected_cents"`
	OutstandingCents  int64     `json:"outstanding_cents"`
	CompletedBookings int       `json:"completed_bookings"`
}

// Dashboard bundles the admin dashboard aggregates into one payload.
type Dashboard struct {
	TopCustomers []CustomerValue `json:"top_customers"`
	Funnel       []FunnelStage   `json:"funnel"`
	Revenue      RevenueSummary  `json:"revenue"`
}

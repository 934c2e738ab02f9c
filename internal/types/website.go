package types

import (
	"time"

	"github.com/google/uuid"
)

// WebsiteSettings drives the tenant's public booking page. Rates are basis
// points so the deposit preview and invoice math stay in integer cents.
type WebsiteSettings struct {
	TenantID       uuid.UUID `json:"tenant_id"`
	BusinessName   string    `json:"business_name"`
	Tagline        string    `json:"tagline,omitempty"`
	ContactEmail   string    `json:"contact_email"`
	ContactPhone   string    `json:"contact_phone,omitempty"`
	BookingEnabled bool      `json:"booking_enabled"`
	DepositBps     int64     `json:"deposit_bps"`
	TaxRateBps     int64     `json:"tax_rate_bps"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type UpdateWebsiteSettingsParams struct {
	BusinessName   *string `json:"business_name,omitempty"`
	Tagline        *string `json:"tagline,omitempty"`
	ContactEmail   *string `json:"contact_email,omitempty"`
	ContactPhone   *string `json:"contact_phone,omitempty"`
	BookingEnabled *bool   `json:"booking_enabled,omitempty"`
	DepositBps     *int64  `json:"deposit_bps,omitempty"`
	TaxRateBps     *int64  `json:"tax_rate_bps,omitempty"`
}

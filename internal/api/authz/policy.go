// Package authz is the single enforcement point for role and tenancy
// checks. Handlers never compare roles inline; they name an Operation and
// call Authorize, so the full permission surface is readable in one table.
package authz

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/shinedeck/shinedeck-api/internal/types"
)

type Operation string

const (
	OpProfileRead Operation = "profiles.read"

	OpCustomerList   Operation = "customers.list"
	OpCustomerRead   Operation = "customers.read"
	OpCustomerCreate Operation = "customers.create"
	OpCustomerUpdate Operation = "customers.update"
	OpCustomerDelete Operation = "customers.delete"

	OpBookingList           Operation = "bookings.list"
	OpBookingRead           Operation = "bookings.read"
	OpBookingCreate         Operation = "bookings.create"
	OpBookingUpdate         Operation = "bookings.update"
	OpBookingCancel         Operation = "bookings.cancel"
	OpBookingDepositPreview Operation = "bookings.deposit_preview"

	OpQuoteList   Operation = "quotes.list"
	OpQuoteRead   Operation = "quotes.read"
	OpQuoteCreate Operation = "quotes.create"
	OpQuoteUpdate Operation = "quotes.update"
	OpQuoteAccept Operation = "quotes.accept"

	OpJobList     Operation = "jobs.list"
	OpJobRead     Operation = "jobs.read"
	OpJobCreate   Operation = "jobs.create"
	OpJobUpdate   Operation = "jobs.update"
	OpJobComplete Operation = "jobs.complete"

	OpInvoiceList         Operation = "invoices.list"
	OpInvoiceRead         Operation = "invoices.read"
	OpInvoiceCreate       Operation = "invoices.create"
	OpPaymentRecord       Operation = "payments.record"
	OpDepositIntentCreate Operation = "payments.deposit_intent"

	OpMessageList   Operation = "messages.list"
	OpMessageSend   Operation = "messages.send"
	OpMessageAssist Operation = "messages.assist"

	OpAnalyticsRead Operation = "analytics.read"

	OpWebsiteRead   Operation = "website.read"
	OpWebsiteUpdate Operation = "website.update"
)

// policy lists the roles allowed to perform each operation. super_admin is
// implicitly allowed everywhere and is omitted from the rows.
var policy = map[Operation][]types.Role{
	OpProfileRead: {types.RoleCustomer, types.RoleStaff, types.RoleAdmin},

	OpCustomerList:   {types.RoleStaff, types.RoleAdmin},
	OpCustomerRead:   {types.RoleCustomer, types.RoleStaff, types.RoleAdmin},
	OpCustomerCreate: {types.RoleStaff, types.RoleAdmin},
	OpCustomerUpdate: {types.RoleStaff, types.RoleAdmin},
	OpCustomerDelete: {types.RoleAdmin},

	OpBookingList:           {types.RoleCustomer, types.RoleStaff, types.RoleAdmin},
	OpBookingRead:           {types.RoleCustomer, types.RoleStaff, types.RoleAdmin},
	OpBookingCreate:         {types.RoleCustomer, types.RoleStaff, types.RoleAdmin},
	OpBookingUpdate:         {types.RoleStaff, types.RoleAdmin},
	OpBookingCancel:         {types.RoleCustomer, types.RoleStaff, types.RoleAdmin},
	OpBookingDepositPreview: {types.RoleCustomer, types.RoleStaff, types.RoleAdmin},

	OpQuoteList:   {types.RoleCustomer, types.RoleStaff, types.RoleAdmin},
	OpQuoteRead:   {types.RoleCustomer, types.RoleStaff, types.RoleAdmin},
	OpQuoteCreate: {types.RoleStaff, types.RoleAdmin},
	OpQuoteUpdate: {types.RoleStaff, types.RoleAdmin},
	OpQuoteAccept: {types.RoleCustomer, types.RoleStaff, types.RoleAdmin},

	OpJobList:     {types.RoleStaff, types.RoleAdmin},
	OpJobRead:     {types.RoleStaff, types.RoleAdmin},
	OpJobCreate:   {types.RoleStaff, types.RoleAdmin},
	OpJobUpdate:   {types.RoleStaff, types.RoleAdmin},
	OpJobComplete: {types.RoleStaff, types.RoleAdmin},

	OpInvoiceList:         {types.RoleCustomer, types.RoleStaff, types.RoleAdmin},
	OpInvoiceRead:         {types.RoleCustomer, types.RoleStaff, types.RoleAdmin},
	OpInvoiceCreate:       {types.RoleStaff, types.RoleAdmin},
	OpPaymentRecord:       {types.RoleStaff, types.RoleAdmin},
	OpDepositIntentCreate: {types.RoleCustomer, types.RoleStaff, types.RoleAdmin},

	OpMessageList:   {types.RoleCustomer, types.RoleStaff, types.RoleAdmin},
	OpMessageSend:   {types.RoleStaff, types.RoleAdmin},
	OpMessageAssist: {types.RoleStaff, types.RoleAdmin},

	OpAnalyticsRead: {types.RoleStaff, types.RoleAdmin},

	OpWebsiteRead:   {types.RoleCustomer, types.RoleStaff, types.RoleAdmin},
	OpWebsiteUpdate: {types.RoleAdmin},
}

// adminOnly marks operations whose denial should read as an admin
// restriction rather than a generic permission failure.
var adminOnly = map[Operation]bool{
	OpCustomerDelete: true,
	OpWebsiteUpdate:  true,
}

// Resource describes the row an operation targets. A zero TenantID skips
// the tenancy check; a zero OwnerUserID skips the ownership check.
type Resource struct {
	TenantID    uuid.UUID
	OwnerUserID uuid.UUID
}

// Authorize checks the caller's role against the policy table and, when a
// resource is supplied, enforces tenant match and customer row ownership.
func Authorize(p *types.Profile, op Operation, res *Resource) error {
	if p == nil {
		return fmt.Errorf("no profile for caller: %w", types.ErrForbidden)
	}
	if p.Role == types.RoleSuperAdmin {
		return nil
	}

	allowed := false
	for _, role := range policy[op] {
		if p.Role == role {
			allowed = true
			break
		}
	}
	if !allowed {
		if adminOnly[op] {
			return fmt.Errorf("operation %s requires admin role: %w", op, types.ErrAdminOnly)
		}
		return fmt.Errorf("role %s may not perform %s: %w", p.Role, op, types.ErrForbidden)
	}

	if res != nil {
		if res.TenantID != uuid.Nil && res.TenantID != p.TenantID {
			return fmt.Errorf("resource belongs to another tenant: %w", types.ErrForbidden)
		}
		if p.Role == types.RoleCustomer && res.OwnerUserID != uuid.Nil && res.OwnerUserID != p.UserID {
			return fmt.Errorf("resource belongs to another user: %w", types.ErrForbidden)
		}
	}
	return nil
}

package authz

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/shinedeck/shinedeck-api/internal/types"
)

func profileWithRole(role types.Role) *types.Profile {
	return &types.Profile{
		ID:       uuid.New(),
		UserID:   uuid.New(),
		TenantID: uuid.New(),
		Role:     role,
	}
}

func TestAuthorize_RoleTable(t *testing.T) {
	tests := []struct {
		name    string
		role    types.Role
		op      Operation
		wantErr error
	}{
		{"staff can list customers", types.RoleStaff, OpCustomerList, nil},
		{"customer cannot list customers", types.RoleCustomer, OpCustomerList, types.ErrForbidden},
		{"customer can read own bookings", types.RoleCustomer, OpBookingRead, nil},
		{"staff cannot delete customers", types.RoleStaff, OpCustomerDelete, types.ErrAdminOnly},
		{"admin can delete customers", types.RoleAdmin, OpCustomerDelete, nil},
		{"staff cannot update website settings", types.RoleStaff, OpWebsiteUpdate, types.ErrAdminOnly},
		{"admin can update website settings", types.RoleAdmin, OpWebsiteUpdate, nil},
		{"customer cannot read analytics", types.RoleCustomer, OpAnalyticsRead, types.ErrForbidden},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := Authorize(profileWithRole(tc.role), tc.op, nil)
			if tc.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tc.wantErr)
			}
		})
	}
}

func TestAuthorize_SuperAdminBypass(t *testing.T) {
	p := profileWithRole(types.RoleSuperAdmin)

	assert.NoError(t, Authorize(p, OpWebsiteUpdate, nil))
	// Cross-tenant access is allowed for super_admin.
	assert.NoError(t, Authorize(p, OpCustomerRead, &Resource{TenantID: uuid.New()}))
}

func TestAuthorize_TenantMismatch(t *testing.T) {
	p := profileWithRole(types.RoleAdmin)

	err := Authorize(p, OpCustomerRead, &Resource{TenantID: uuid.New()})
	assert.ErrorIs(t, err, types.ErrForbidden)

	assert.NoError(t, Authorize(p, OpCustomerRead, &Resource{TenantID: p.TenantID}))
}

func TestAuthorize_CustomerOwnership(t *testing.T) {
	p := profileWithRole(types.RoleCustomer)

	err := Authorize(p, OpBookingRead, &Resource{TenantID: p.TenantID, OwnerUserID: uuid.New()})
	assert.ErrorIs(t, err, types.ErrForbidden)

	assert.NoError(t, Authorize(p, OpBookingRead, &Resource{TenantID: p.TenantID, OwnerUserID: p.UserID}))

	// Staff are not subject to the ownership check.
	staff := profileWithRole(types.RoleStaff)
	assert.NoError(t, Authorize(staff, OpBookingRead, &Resource{TenantID: staff.TenantID, OwnerUserID: uuid.New()}))
}

func TestAuthorize_NilProfile(t *testing.T) {
	err := Authorize(nil, OpProfileRead, nil)
	assert.ErrorIs(t, err, types.ErrForbidden)
}

func TestAuthorize_UnknownOperation(t *testing.T) {
	err := Authorize(profileWithRole(types.RoleAdmin), Operation("nonexistent.op"), nil)
	assert.True(t, errors.Is(err, types.ErrForbidden))
}

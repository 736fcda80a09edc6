package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nekogravitycat/stay-booking-backend/internal/identity"
	"github.com/nekogravitycat/stay-booking-backend/internal/pkg/apperror"
)

var (
	admin      = identity.AuthUser{ID: "admin-1", Role: identity.RoleAdmin}
	guest      = identity.AuthUser{ID: "guest-1", Role: identity.RoleGuest}
	otherGuest = identity.AuthUser{ID: "guest-2", Role: identity.RoleGuest}
	owner      = identity.AuthUser{ID: "owner-1", Role: identity.RolePropertyOwner}
	otherOwner = identity.AuthUser{ID: "owner-2", Role: identity.RolePropertyOwner}

	booking = Resource{OwnerID: owner.ID, RequesterID: guest.ID}
)

func TestCanPerform(t *testing.T) {
	tests := []struct {
		name   string
		actor  identity.AuthUser
		action Action
		res    Resource
		want   bool
	}{
		// Rule 1
		{"admin creates booking", admin, ActionCreateBooking, Resource{OwnerID: owner.ID}, true},
		{"admin approves", admin, ActionApproveBooking, booking, true},
		{"admin completes", admin, ActionCompleteBooking, booking, true},
		{"admin provisions owner", admin, ActionProvisionOwner, Resource{}, true},

		// Rule 2
		{"guest creates booking", guest, ActionCreateBooking, Resource{OwnerID: owner.ID}, true},
		{"owner cannot create booking", owner, ActionCreateBooking, Resource{OwnerID: otherOwner.ID}, false},

		// Rule 3
		{"owner creates property", owner, ActionCreateProperty, Resource{}, true},
		{"guest cannot create property", guest, ActionCreateProperty, Resource{}, false},
		{"owner manages own property", owner, ActionManageProperty, Resource{OwnerID: owner.ID}, true},
		{"owner cannot manage other property", otherOwner, ActionManageProperty, Resource{OwnerID: owner.ID}, false},
		{"guest cannot manage property", guest, ActionManageProperty, Resource{OwnerID: guest.ID}, false},
		{"owner views own property bookings", owner, ActionViewPropertyBookings, Resource{OwnerID: owner.ID}, true},

		// Rule 4
		{"owner approves", owner, ActionApproveBooking, booking, true},
		{"owner denies", owner, ActionDenyBooking, booking, true},
		{"other owner cannot approve", otherOwner, ActionApproveBooking, booking, false},
		{"requester cannot approve", guest, ActionApproveBooking, booking, false},
		{"guest with owner id cannot approve", identity.AuthUser{ID: owner.ID, Role: identity.RoleGuest}, ActionApproveBooking, booking, false},

		// Rule 5
		{"requester cancels", guest, ActionCancelBooking, booking, true},
		{"owner cancels", owner, ActionCancelBooking, booking, true},
		{"other guest cannot cancel", otherGuest, ActionCancelBooking, booking, false},
		{"other owner cannot cancel", otherOwner, ActionCancelBooking, booking, false},
		{"requester views", guest, ActionViewBooking, booking, true},
		{"other guest cannot view", otherGuest, ActionViewBooking, booking, false},

		// Rule 6
		{"owner cannot complete", owner, ActionCompleteBooking, booking, false},
		{"guest cannot provision", guest, ActionProvisionOwner, Resource{}, false},
		{"owner cannot manage users", owner, ActionManageUsers, Resource{}, false},
		{"unknown action", owner, Action(999), booking, false},
		{"empty ids never match", identity.AuthUser{Role: identity.RolePropertyOwner}, ActionManageProperty, Resource{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanPerform(tt.actor, tt.action, tt.res))
		})
	}
}

func TestAuthorize(t *testing.T) {
	require.NoError(t, Authorize(guest, ActionCancelBooking, booking))

	err := Authorize(otherGuest, ActionCancelBooking, booking)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDenied)
	assert.Equal(t, apperror.KindAuthorizationDenied, apperror.KindOf(err))
	assert.Equal(t, "only the guest or the property owner can cancel this booking", err.Error())
}

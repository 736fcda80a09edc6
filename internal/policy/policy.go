// Package policy decides which actor may perform which action.
// Every permission check in the service layer goes through CanPerform.
package policy

import (
	"github.com/nekogravitycat/stay-booking-backend/internal/identity"
	"github.com/nekogravitycat/stay-booking-backend/internal/pkg/apperror"
)

type Action int

const (
	ActionCreateBooking Action = iota + 1
	ActionViewBooking
	ActionApproveBooking
	ActionDenyBooking
	ActionCancelBooking
	ActionCompleteBooking
	ActionCreateProperty
	ActionListOwnProperties
	ActionManageProperty
	ActionViewPropertyBookings
	ActionProvisionOwner
	ActionManageUsers
)

// ErrDenied is the base authorization failure; Authorize wraps it with an action-specific message.
var ErrDenied = apperror.New(apperror.KindAuthorizationDenied, "permission denied")

// Resource describes ownership of the object an action targets.
// OwnerID is the owner of the property involved; RequesterID is the guest who made the booking, if any.
type Resource struct {
	OwnerID     string
	RequesterID string
}

type rule func(actor identity.AuthUser, res Resource) bool

func isPropertyOwner(actor identity.AuthUser, res Resource) bool {
	return actor.IsPropertyOwner() && res.OwnerID != "" && actor.ID == res.OwnerID
}

func hasOwnerRole(actor identity.AuthUser, _ Resource) bool {
	return actor.IsPropertyOwner()
}

func isRequester(actor identity.AuthUser, res Resource) bool {
	return res.RequesterID != "" && actor.ID == res.RequesterID
}

func requesterOrPropertyOwner(actor identity.AuthUser, res Resource) bool {
	return isRequester(actor, res) || isPropertyOwner(actor, res)
}

// rules lists the non-admin grants. Actions missing here are admin only.
var rules = map[Action]rule{
	ActionCreateBooking: func(actor identity.AuthUser, _ Resource) bool {
		return actor.IsGuest()
	},
	ActionCreateProperty:       hasOwnerRole,
	ActionListOwnProperties:    hasOwnerRole,
	ActionManageProperty:       isPropertyOwner,
	ActionViewPropertyBookings: isPropertyOwner,
	ActionApproveBooking:       isPropertyOwner,
	ActionDenyBooking:          isPropertyOwner,
	ActionCancelBooking:        requesterOrPropertyOwner,
	ActionViewBooking:          requesterOrPropertyOwner,
}

var reasons = map[Action]string{
	ActionCreateBooking:        "only guests can request bookings",
	ActionViewBooking:          "you cannot view this booking",
	ActionApproveBooking:       "only the property owner can approve this booking",
	ActionDenyBooking:          "only the property owner can deny this booking",
	ActionCancelBooking:        "only the guest or the property owner can cancel this booking",
	ActionCompleteBooking:      "bookings are completed by the system",
	ActionCreateProperty:       "only property owners can create properties",
	ActionListOwnProperties:    "only property owners have listings",
	ActionManageProperty:       "you do not own this property",
	ActionViewPropertyBookings: "you do not own this property",
	ActionProvisionOwner:       "admin access required",
	ActionManageUsers:          "admin access required",
}

// CanPerform reports whether actor may perform action on res.
func CanPerform(actor identity.AuthUser, action Action, res Resource) bool {
	if actor.IsAdmin() {
		return true
	}
	allow, ok := rules[action]
	if !ok {
		return false
	}
	return allow(actor, res)
}

// Authorize is CanPerform returning an AuthorizationDenied error on refusal.
func Authorize(actor identity.AuthUser, action Action, res Resource) error {
	if CanPerform(actor, action, res) {
		return nil
	}
	msg, ok := reasons[action]
	if !ok {
		msg = ErrDenied.Message
	}
	return apperror.Wrap(ErrDenied, apperror.KindAuthorizationDenied, msg)
}

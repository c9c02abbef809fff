package transaction

import (
	"github.com/Additional-Code/orderdesk/internal/entity"
	"github.com/Additional-Code/orderdesk/internal/identity"
)

// Action names a destructive operation subject to authorization.
type Action string

const (
	ActionDelete      Action = "delete"
	ActionRestore     Action = "restore"
	ActionForceDelete Action = "force_delete"
)

// Policy decides whether a caller may perform an action on a transaction.
// caller is nil for anonymous requests.
type Policy interface {
	Allow(caller *identity.Identity, action Action, txn *entity.Transaction) bool
}

// AllowAll permits every action.
type AllowAll struct{}

// Allow implements Policy.
func (AllowAll) Allow(*identity.Identity, Action, *entity.Transaction) bool {
	return true
}

// OwnerPolicy lets admins do anything and other users trash or restore only
// records they own or that have no owner. Force delete is admin only.
type OwnerPolicy struct{}

// Allow implements Policy.
func (OwnerPolicy) Allow(caller *identity.Identity, action Action, txn *entity.Transaction) bool {
	if caller == nil {
		return false
	}
	if caller.Admin {
		return true
	}
	if action == ActionForceDelete {
		return false
	}
	return txn.UserID == nil || *txn.UserID == caller.UserID
}

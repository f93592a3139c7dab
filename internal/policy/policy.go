// Package policy decides whether a principal may act on a record.
//
// Every decision fails closed: a nil principal is denied, never an error.
package policy

import "gorm.io/gorm"

type Action string

const (
	ActionView    Action = "view"
	ActionCreate  Action = "create"
	ActionUpdate  Action = "update"
	ActionDestroy Action = "destroy"
)

// Principal is the authenticated user making a request. A nil *Principal is
// an anonymous caller.
type Principal struct {
	UserID uint
	Admin  bool
}

// Owned is any record that belongs to exactly one user.
type Owned interface {
	OwnerID() uint
}

func Authorize(p *Principal, action Action, record Owned) bool {
	if p == nil {
		return false
	}
	switch action {
	case ActionCreate:
		return true
	case ActionView, ActionUpdate, ActionDestroy:
		return record != nil && (p.Admin || record.OwnerID() == p.UserID)
	default:
		return false
	}
}

// Scope restricts a query to the rows p may list: admins see everything,
// everyone else only their own rows, anonymous callers nothing.
func Scope(db *gorm.DB, p *Principal) *gorm.DB {
	if p == nil {
		return db.Where("1 = 0")
	}
	if p.Admin {
		return db
	}
	return db.Where("user_id = ?", p.UserID)
}

// OwnScope restricts a query to p's own rows regardless of admin rights.
func OwnScope(db *gorm.DB, p *Principal) *gorm.DB {
	if p == nil {
		return db.Where("1 = 0")
	}
	return db.Where("user_id = ?", p.UserID)
}

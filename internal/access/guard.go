// Package access enforces the row-ownership model: every user-scoped row
// is readable and writable only by its owner, with the administrator flag
// granting read-only visibility across users for aggregate reporting.
//
// The admin check is a trusted, side-effect-free column lookup on the
// users table by primary key. It is deliberately kept outside the
// ownership predicate so checking admin status never re-enters the layer
// it gates.
package access

import (
	"errors"

	"gorm.io/gorm"

	"github.com/tmorren/selah/internal/entities"
)

var (
	ErrForbidden     = errors.New("caller does not own this row")
	ErrAdminReadOnly = errors.New("admin access is read-only across users")
)

// Guard performs per-operation ownership and privilege checks.
type Guard struct {
	db *gorm.DB
}

func NewGuard(db *gorm.DB) *Guard {
	return &Guard{db: db}
}

// IsAdmin reports whether the caller carries the administrator flag.
// Unknown users are not admins.
func (g *Guard) IsAdmin(userID uint) (bool, error) {
	var isAdmin bool
	err := g.db.Model(&entities.User{}).
		Select("is_admin").
		Where("id = ?", userID).
		Scan(&isAdmin).Error
	if err != nil {
		return false, err
	}
	return isAdmin, nil
}

// AuthorizeRead allows owners always, and admins read-only across users.
func (g *Guard) AuthorizeRead(callerID, ownerID uint) error {
	if callerID == ownerID {
		return nil
	}
	isAdmin, err := g.IsAdmin(callerID)
	if err != nil {
		return err
	}
	if !isAdmin {
		return ErrForbidden
	}
	return nil
}

// AuthorizeWrite allows only the owner. Admins may not write rows they do
// not own.
func (g *Guard) AuthorizeWrite(callerID, ownerID uint) error {
	if callerID == ownerID {
		return nil
	}
	isAdmin, err := g.IsAdmin(callerID)
	if err != nil {
		return err
	}
	if isAdmin {
		return ErrAdminReadOnly
	}
	return ErrForbidden
}

// UserStats is the cross-user aggregate an admin may read.
type UserStats struct {
	UserID    uint  `json:"user_id"`
	Favorites int64 `json:"favorites"`
	ReadMarks int64 `json:"read_marks"`
	Library   int64 `json:"library"`
}

// AggregateStats returns per-user counts across all accounts. Callers must
// hold the admin flag; non-admins get ErrForbidden.
func (g *Guard) AggregateStats(callerID uint) ([]UserStats, error) {
	isAdmin, err := g.IsAdmin(callerID)
	if err != nil {
		return nil, err
	}
	if !isAdmin {
		return nil, ErrForbidden
	}

	var userIDs []uint
	if err := g.db.Model(&entities.User{}).Order("id ASC").Pluck("id", &userIDs).Error; err != nil {
		return nil, err
	}

	stats := make([]UserStats, 0, len(userIDs))
	for _, id := range userIDs {
		s := UserStats{UserID: id}
		if err := g.db.Model(&entities.Favorite{}).Where("user_id = ?", id).Count(&s.Favorites).Error; err != nil {
			return nil, err
		}
		if err := g.db.Model(&entities.ReadMark{}).Where("user_id = ?", id).Count(&s.ReadMarks).Error; err != nil {
			return nil, err
		}
		if err := g.db.Model(&entities.LibraryEntry{}).Where("user_id = ?", id).Count(&s.Library).Error; err != nil {
			return nil, err
		}
		stats = append(stats, s)
	}
	return stats, nil
}

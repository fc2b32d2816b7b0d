// Package users provides database operations for reader accounts. Accounts
// mirror the external auth provider's subjects; the API token is the store
// boundary credential.
package users

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/tmorren/selah/internal/entities"
)

var ErrUserNotFound = errors.New("user not found")

// Repository handles all user database operations.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create registers an account for an auth-provider subject and issues an
// API token.
func (r *Repository) Create(externalID, email, displayName string) (*entities.User, error) {
	token, err := generateToken()
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	user := &entities.User{
		ExternalID:  externalID,
		Email:       email,
		DisplayName: displayName,
		Token:       token,
	}
	if err := r.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// GetByID loads a user by primary key.
func (r *Repository) GetByID(id uint) (*entities.User, error) {
	var user entities.User
	err := r.db.First(&user, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// GetByToken resolves the API token presented at the store boundary.
func (r *Repository) GetByToken(token string) (*entities.User, error) {
	var user entities.User
	err := r.db.Where("token = ?", token).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// GetByExternalID loads a user by the auth provider's subject id.
func (r *Repository) GetByExternalID(externalID string) (*entities.User, error) {
	var user entities.User
	err := r.db.Where("external_id = ?", externalID).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// SetAdmin flips the administrator flag.
func (r *Repository) SetAdmin(id uint, isAdmin bool) error {
	result := r.db.Model(&entities.User{}).Where("id = ?", id).Update("is_admin", isAdmin)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

// RotateToken issues a fresh API token, invalidating the previous one.
func (r *Repository) RotateToken(id uint) (string, error) {
	token, err := generateToken()
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	result := r.db.Model(&entities.User{}).Where("id = ?", id).Update("token", token)
	if result.Error != nil {
		return "", result.Error
	}
	if result.RowsAffected == 0 {
		return "", ErrUserNotFound
	}
	return token, nil
}

// DeleteAccount removes the account permanently together with every
// user-scoped row it owns. Deletion is explicit rather than left to the
// FK cascade so it holds on SQLite connections without foreign_keys on.
func (r *Repository) DeleteAccount(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		for _, model := range []interface{}{
			&entities.Favorite{},
			&entities.ReadMark{},
			&entities.ImageSelection{},
			&entities.LibraryEntry{},
		} {
			if err := tx.Where("user_id = ?", id).Delete(model).Error; err != nil {
				return err
			}
		}
		return tx.Unscoped().Delete(&entities.User{}, id).Error
	})
}

func generateToken() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}

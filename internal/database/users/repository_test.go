package users

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tmorren/selah/internal/entities"
)

func setupTestDB(t *testing.T) (*gorm.DB, *Repository, func()) {
	dbPath := "./test_users_" + strings.ReplaceAll(t.Name(), "/", "_") + ".db"

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&entities.User{},
		&entities.Favorite{},
		&entities.ReadMark{},
		&entities.ImageSelection{},
		&entities.LibraryEntry{},
	)
	require.NoError(t, err)

	repo := NewRepository(db)

	cleanup := func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
		os.Remove(dbPath)
	}

	return db, repo, cleanup
}

func TestRepository_Create(t *testing.T) {
	_, repo, cleanup := setupTestDB(t)
	defer cleanup()

	user, err := repo.Create("11111111-1111-1111-1111-111111111111", "reader@example.com", "Reader")
	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.NotEmpty(t, user.Token)
	assert.False(t, user.IsAdmin)
}

func TestRepository_GetByToken(t *testing.T) {
	_, repo, cleanup := setupTestDB(t)
	defer cleanup()

	user, err := repo.Create("11111111-1111-1111-1111-111111111111", "reader@example.com", "Reader")
	require.NoError(t, err)

	loaded, err := repo.GetByToken(user.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, loaded.ID)

	_, err = repo.GetByToken("bogus-token")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestRepository_GetByExternalID(t *testing.T) {
	_, repo, cleanup := setupTestDB(t)
	defer cleanup()

	user, err := repo.Create("11111111-1111-1111-1111-111111111111", "reader@example.com", "Reader")
	require.NoError(t, err)

	loaded, err := repo.GetByExternalID("11111111-1111-1111-1111-111111111111")
	require.NoError(t, err)
	assert.Equal(t, user.ID, loaded.ID)

	_, err = repo.GetByExternalID("22222222-2222-2222-2222-222222222222")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestRepository_SetAdmin(t *testing.T) {
	_, repo, cleanup := setupTestDB(t)
	defer cleanup()

	user, err := repo.Create("11111111-1111-1111-1111-111111111111", "admin@example.com", "Admin")
	require.NoError(t, err)

	require.NoError(t, repo.SetAdmin(user.ID, true))

	loaded, err := repo.GetByID(user.ID)
	require.NoError(t, err)
	assert.True(t, loaded.IsAdmin)
}

func TestRepository_RotateToken(t *testing.T) {
	_, repo, cleanup := setupTestDB(t)
	defer cleanup()

	user, err := repo.Create("11111111-1111-1111-1111-111111111111", "reader@example.com", "Reader")
	require.NoError(t, err)

	newToken, err := repo.RotateToken(user.ID)
	require.NoError(t, err)
	assert.NotEqual(t, user.Token, newToken)

	// The old token no longer resolves
	_, err = repo.GetByToken(user.Token)
	assert.ErrorIs(t, err, ErrUserNotFound)

	loaded, err := repo.GetByToken(newToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, loaded.ID)
}

func TestRepository_DeleteAccount_CascadesOwnedRows(t *testing.T) {
	db, repo, cleanup := setupTestDB(t)
	defer cleanup()

	user, err := repo.Create("11111111-1111-1111-1111-111111111111", "reader@example.com", "Reader")
	require.NoError(t, err)
	other, err := repo.Create("22222222-2222-2222-2222-222222222222", "other@example.com", "Other")
	require.NoError(t, err)

	rows := []interface{}{
		&entities.Favorite{UserID: user.ID, SpreadCode: "GEN-001"},
		&entities.ReadMark{UserID: user.ID, SpreadCode: "GEN-001"},
		&entities.ImageSelection{UserID: user.ID, SpreadCode: "GEN-001", Slot: 1},
		&entities.LibraryEntry{UserID: user.ID, SpreadCode: "GEN-001"},
		&entities.Favorite{UserID: other.ID, SpreadCode: "GEN-001"},
	}
	for _, row := range rows {
		require.NoError(t, db.Create(row).Error)
	}

	require.NoError(t, repo.DeleteAccount(user.ID))

	_, err = repo.GetByID(user.ID)
	assert.ErrorIs(t, err, ErrUserNotFound)

	var count int64
	for _, model := range []interface{}{
		&entities.Favorite{},
		&entities.ReadMark{},
		&entities.ImageSelection{},
		&entities.LibraryEntry{},
	} {
		require.NoError(t, db.Model(model).Where("user_id = ?", user.ID).Count(&count).Error)
		assert.Zero(t, count)
	}

	// The other account's rows survive
	require.NoError(t, db.Model(&entities.Favorite{}).Where("user_id = ?", other.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

package database

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tmorren/selah/internal/entities"
)

func setupTestDB(t *testing.T) (*Database, func()) {
	dbPath := "./test_database_" + strings.ReplaceAll(t.Name(), "/", "_") + ".db"

	db, err := NewDatabase(dbPath)
	require.NoError(t, err)

	cleanup := func() {
		db.Close()
		os.Remove(dbPath)
	}
	return db, cleanup
}

func TestNewDatabase_Migrates(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	for _, table := range []string{
		"users", "spreads", "spread_stages", "spread_images",
		"regen_requests", "favorites", "read_marks",
		"image_selections", "library_entries",
	} {
		assert.True(t, db.DB.Migrator().HasTable(table), "missing table %s", table)
	}
}

func TestSeedSpread(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	spread, created, err := db.SeedSpread(SeedEntry{
		BookCode:  "GEN",
		Seq:       1,
		Chapter:   1,
		VerseFrom: 1,
		VerseTo:   5,
	})
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "GEN-001", spread.Code)
	assert.Equal(t, entities.TestamentOld, spread.Testament)
	assert.Equal(t, "Genesis", spread.Book)
	assert.Equal(t, 1, spread.BookOrder)

	// Four pending stage rows in pipeline order
	var stages []entities.SpreadStage
	require.NoError(t, db.DB.Where("spread_id = ?", spread.ID).Order("position ASC").Find(&stages).Error)
	require.Len(t, stages, 4)
	for i, stage := range stages {
		assert.Equal(t, i, stage.Position)
		assert.Equal(t, entities.StageStatePending, stage.State)
	}
	assert.Equal(t, entities.StageOutline, stages[0].Name)
	assert.Equal(t, entities.StageImage, stages[3].Name)
}

func TestSeedSpread_Idempotent(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	entry := SeedEntry{BookCode: "PSA", Seq: 23, Chapter: 23, VerseFrom: 1, VerseTo: 6}

	first, created, err := db.SeedSpread(entry)
	require.NoError(t, err)
	assert.True(t, created)

	second, created, err := db.SeedSpread(entry)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)

	var count int64
	require.NoError(t, db.DB.Model(&entities.Spread{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestSeedSpread_UnknownBook(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	_, _, err := db.SeedSpread(SeedEntry{BookCode: "XYZ", Seq: 1, Chapter: 1, VerseFrom: 1, VerseTo: 5})
	assert.Error(t, err)
}

func TestSeedSpread_ChapterSpan(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	spread, _, err := db.SeedSpread(SeedEntry{
		BookCode: "GEN", Seq: 2, Chapter: 1, VerseFrom: 28, ChapterTo: 2, VerseTo: 3,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, spread.Chapter)
	assert.Equal(t, 2, spread.Chapter2)
}

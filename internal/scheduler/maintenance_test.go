package scheduler

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tmorren/selah/internal/database/pipeline"
	"github.com/tmorren/selah/internal/database/regen"
	"github.com/tmorren/selah/internal/entities"
)

func setupTestDB(t *testing.T) (*gorm.DB, func()) {
	dbPath := "./test_scheduler_" + strings.ReplaceAll(t.Name(), "/", "_") + ".db"

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&entities.Spread{},
		&entities.SpreadStage{},
		&entities.RegenRequest{},
	)
	require.NoError(t, err)

	cleanup := func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
		os.Remove(dbPath)
	}
	return db, cleanup
}

func createTestSpread(t *testing.T, db *gorm.DB, code string) *entities.Spread {
	spread := &entities.Spread{
		Code:      code,
		Testament: entities.TestamentOld,
		Book:      "Genesis",
		BookOrder: 1,
		Chapter:   1,
		VerseFrom: 1,
		Chapter2:  1,
		VerseTo:   5,
	}
	for i, name := range entities.StageOrder() {
		spread.Stages = append(spread.Stages, entities.SpreadStage{
			Name:     name,
			Position: i,
			State:    entities.StageStatePending,
		})
	}
	require.NoError(t, db.Create(spread).Error)
	return spread
}

func newTestMaintenance(db *gorm.DB, maxRetries int) *Maintenance {
	return NewMaintenance(
		pipeline.NewRepository(db),
		regen.NewRepository(db),
		nil, // external workers drain the pending view
		Config{
			Schedule:         "*/5 * * * *",
			BatchSize:        5,
			MaxRetries:       maxRetries,
			RegenExpireAfter: 30 * time.Minute,
		},
	)
}

func TestMaintenance_StartStop(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	m := newTestMaintenance(db, 3)
	require.NoError(t, m.Start(context.Background()))
	assert.True(t, m.IsRunning())

	// Starting twice is a no-op
	require.NoError(t, m.Start(context.Background()))

	m.Stop()
	assert.False(t, m.IsRunning())

	// Stopping twice is a no-op
	m.Stop()
}

func TestMaintenance_ReleasesExpiredClaims(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	pipelineRepo := pipeline.NewRepository(db)
	spread := createTestSpread(t, db, "GEN-001")
	stageID := spread.Stages[0].ID

	// A claim whose lease lapsed long ago
	require.NoError(t, pipelineRepo.Claim(stageID, "crashed-worker", -time.Hour))

	m := newTestMaintenance(db, 3)
	m.runPass()

	var stage entities.SpreadStage
	require.NoError(t, db.First(&stage, stageID).Error)
	assert.Equal(t, entities.StageStatePending, stage.State)
	assert.Empty(t, stage.ClaimedBy)
}

func TestMaintenance_ResetsRetryableErrors(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	pipelineRepo := pipeline.NewRepository(db)
	spread := createTestSpread(t, db, "GEN-001")
	retryable := spread.Stages[0].ID

	exhausted := createTestSpread(t, db, "EXO-001").Stages[0].ID

	require.NoError(t, pipelineRepo.MarkError(retryable, "transient"))
	require.NoError(t, pipelineRepo.MarkError(exhausted, "persistent"))
	require.NoError(t, db.Model(&entities.SpreadStage{}).
		Where("id = ?", exhausted).
		Update("retry_count", 10).Error)

	m := newTestMaintenance(db, 3)
	m.runPass()

	var stage entities.SpreadStage
	require.NoError(t, db.First(&stage, retryable).Error)
	assert.Equal(t, entities.StageStatePending, stage.State)

	// Past the retry cap: left in error for operator triage
	var exhaustedStage entities.SpreadStage
	require.NoError(t, db.First(&exhaustedStage, exhausted).Error)
	assert.Equal(t, entities.StageStateError, exhaustedStage.State)
}

func TestMaintenance_ExpiresStaleRegenRequests(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	regenRepo := regen.NewRepository(db)
	request, err := regenRepo.Create(1, 1, 0)
	require.NoError(t, err)

	require.NoError(t, db.Model(&entities.RegenRequest{}).
		Where("id = ?", request.ID).
		Update("created_at", time.Now().Add(-2*time.Hour)).Error)

	m := newTestMaintenance(db, 3)
	m.runPass()

	loaded, err := regenRepo.Get(request.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.RegenStatusFailed, loaded.Status)
}

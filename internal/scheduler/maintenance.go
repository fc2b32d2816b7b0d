// Package scheduler runs the periodic pipeline maintenance pass: releasing
// lapsed stage claims, expiring abandoned regeneration requests, resetting
// retryable errored stages, and dispatching ready work to the task queue.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/tmorren/selah/internal/database/pipeline"
	"github.com/tmorren/selah/internal/database/regen"
	"github.com/tmorren/selah/internal/tasks"
)

// Config holds maintenance scheduler settings.
type Config struct {
	Schedule         string        // cron expression
	BatchSize        int           // work items dispatched per pass
	MaxRetries       int           // errored stages past this count are left for triage
	RegenExpireAfter time.Duration // processing regen requests older than this are failed
}

// Maintenance owns the cron loop.
type Maintenance struct {
	pipeline *pipeline.Repository
	regen    *regen.Repository
	queue    *tasks.Client
	config   Config

	cron       *cron.Cron
	entryID    cron.EntryID
	mu         sync.RWMutex
	isRunning  bool
	cancelFunc context.CancelFunc
}

// NewMaintenance creates a maintenance scheduler. The task queue may be
// nil; dispatch is skipped then and external workers drain the pending
// view instead.
func NewMaintenance(pipelineRepo *pipeline.Repository, regenRepo *regen.Repository, queue *tasks.Client, cfg Config) *Maintenance {
	return &Maintenance{
		pipeline: pipelineRepo,
		regen:    regenRepo,
		queue:    queue,
		config:   cfg,
		cron:     cron.New(cron.WithParser(cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow))),
	}
}

// Start begins the scheduler.
func (m *Maintenance) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.isRunning {
		return nil
	}

	entryID, err := m.cron.AddFunc(m.config.Schedule, func() {
		m.runPass()
	})
	if err != nil {
		return fmt.Errorf("failed to schedule maintenance job: %w", err)
	}
	m.entryID = entryID

	var cancelCtx context.Context
	cancelCtx, m.cancelFunc = context.WithCancel(ctx)

	m.cron.Start()
	m.isRunning = true

	log.Printf("Maintenance scheduler: started with schedule '%s'", m.config.Schedule)

	go func() {
		<-cancelCtx.Done()
		m.Stop()
	}()

	return nil
}

// Stop gracefully stops the scheduler.
func (m *Maintenance) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.isRunning {
		return
	}

	// Stop accepting new jobs and wait for running jobs to complete
	ctx := m.cron.Stop()
	<-ctx.Done()

	m.isRunning = false
	m.cancelFunc = nil

	log.Printf("Maintenance scheduler: stopped")
}

// RunNow triggers an immediate pass.
func (m *Maintenance) RunNow() {
	go m.runPass()
}

// IsRunning returns whether the scheduler is active.
func (m *Maintenance) IsRunning() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.isRunning
}

// runPass performs one maintenance pass.
func (m *Maintenance) runPass() {
	now := time.Now()

	released, err := m.pipeline.ReleaseExpiredClaims(now)
	if err != nil {
		log.Printf("Maintenance: failed to release expired claims: %v", err)
	} else if released > 0 {
		log.Printf("Maintenance: released %d expired stage claims", released)
	}

	expired, err := m.regen.ExpireStale(now.Add(-m.config.RegenExpireAfter))
	if err != nil {
		log.Printf("Maintenance: failed to expire stale regeneration requests: %v", err)
	} else if expired > 0 {
		log.Printf("Maintenance: expired %d stale regeneration requests", expired)
	}

	m.resetRetryable()
	m.dispatch()
}

// resetRetryable moves errored stages below the retry cap back to pending.
// The store never resets on its own; this is the embedded worker's policy.
func (m *Maintenance) resetRetryable() {
	items, err := m.pipeline.ErrorSet()
	if err != nil {
		log.Printf("Maintenance: failed to load error set: %v", err)
		return
	}

	for _, item := range items {
		if item.Stage.RetryCount > m.config.MaxRetries {
			continue
		}
		if err := m.pipeline.ResetError(item.Stage.ID); err != nil {
			log.Printf("Maintenance: failed to reset stage %d (%s/%s): %v",
				item.Stage.ID, item.Spread.Code, item.Stage.Name, err)
		}
	}
}

// dispatch enqueues ready work items for the embedded workers.
func (m *Maintenance) dispatch() {
	if m.queue == nil {
		return
	}

	items, err := m.pipeline.NextWorkItems(m.config.BatchSize)
	if err != nil {
		log.Printf("Maintenance: failed to select work items: %v", err)
		return
	}

	for _, item := range items {
		task := tasks.GenerateStageTask{
			StageID:  item.Stage.ID,
			SpreadID: item.Spread.ID,
			Stage:    item.NextStage,
		}
		if _, err := m.queue.Add(task).Save(); err != nil {
			log.Printf("Maintenance: failed to enqueue stage %d for spread %s: %v",
				item.Stage.ID, item.Spread.Code, err)
		}
	}
	if len(items) > 0 {
		log.Printf("Maintenance: dispatched %d work items", len(items))
	}
}

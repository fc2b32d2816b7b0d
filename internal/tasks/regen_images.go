package tasks

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"

	"github.com/tmorren/selah/internal/database/regen"
	"github.com/tmorren/selah/internal/database/spreads"
	"github.com/tmorren/selah/internal/genai"
)

// RegenImagesTask produces candidate artwork for one regeneration request.
type RegenImagesTask struct {
	RequestID string `json:"request_id"`
	SpreadID  uint   `json:"spread_id"`
}

// Config returns the queue configuration for image regeneration tasks.
// A failed request is terminal (a retry is a new request), so no attempts
// beyond the first.
func (t RegenImagesTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "regen_images",
		MaxAttempts: 1,
		Timeout:     5 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// RegenDeps carries what the regeneration processor needs.
type RegenDeps struct {
	Regen      *regen.Repository
	Spreads    *spreads.Repository
	Generator  genai.Generator
	Candidates int // candidates per request, 1-4
}

// RegenImagesProcessor creates a processor function for RegenImagesTask.
func RegenImagesProcessor(deps RegenDeps) backlite.QueueProcessor[RegenImagesTask] {
	return func(ctx context.Context, task RegenImagesTask) error {
		spread, err := deps.Spreads.GetByID(task.SpreadID)
		if err != nil {
			if failErr := deps.Regen.Fail(task.RequestID, err.Error()); failErr != nil {
				return fmt.Errorf("load spread %d: %v (fail request: %w)", task.SpreadID, err, failErr)
			}
			return nil
		}

		urls, err := deps.Generator.GenerateImages(ctx, spread.ImagePrompt, spread.ImageStyle, deps.Candidates)
		if err != nil {
			if failErr := deps.Regen.Fail(task.RequestID, err.Error()); failErr != nil {
				return fmt.Errorf("generate images for spread %s: %v (fail request: %w)",
					spread.Code, err, failErr)
			}
			log.Printf("[TASK] Regeneration %s failed for spread %s: %v", task.RequestID, spread.Code, err)
			return nil
		}

		if err := deps.Regen.MarkReady(task.RequestID, urls); err != nil {
			return fmt.Errorf("mark request %s ready: %w", task.RequestID, err)
		}

		log.Printf("[TASK] Regeneration %s ready for spread %s with %d candidates",
			task.RequestID, spread.Code, len(urls))
		return nil
	}
}

// NewRegenImagesQueue creates a backlite queue for image regeneration.
func NewRegenImagesQueue(deps RegenDeps) backlite.Queue {
	return backlite.NewQueue(RegenImagesProcessor(deps))
}

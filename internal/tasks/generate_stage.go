package tasks

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"

	"github.com/tmorren/selah/internal/database/pipeline"
	"github.com/tmorren/selah/internal/database/spreads"
	"github.com/tmorren/selah/internal/entities"
	"github.com/tmorren/selah/internal/genai"
)

// GenerateStageTask runs one pipeline stage for one spread.
type GenerateStageTask struct {
	StageID  uint               `json:"stage_id"`
	SpreadID uint               `json:"spread_id"`
	Stage    entities.StageName `json:"stage"`
}

// Config returns the queue configuration for stage generation tasks.
// Backlite retries transport-level failures; pipeline retry accounting
// stays in spread_stages.
func (t GenerateStageTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "generate_stage",
		MaxAttempts: 1,
		Timeout:     5 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// StageDeps carries what the stage processor needs.
type StageDeps struct {
	Pipeline  *pipeline.Repository
	Spreads   *spreads.Repository
	Generator genai.Generator
	WorkerID  string
	ClaimTTL  time.Duration
}

// GenerateStageProcessor creates a processor function for GenerateStageTask.
// It claims the stage first so a competing worker (or a second queue
// worker) cannot double-process it; losing the claim is not an error.
func GenerateStageProcessor(deps StageDeps) backlite.QueueProcessor[GenerateStageTask] {
	return func(ctx context.Context, task GenerateStageTask) error {
		if err := deps.Pipeline.Claim(task.StageID, deps.WorkerID, deps.ClaimTTL); err != nil {
			if errors.Is(err, pipeline.ErrNotClaimable) {
				log.Printf("[TASK] Stage %d already claimed or advanced, skipping", task.StageID)
				return nil
			}
			return fmt.Errorf("claim stage %d: %w", task.StageID, err)
		}

		spread, err := deps.Spreads.GetByID(task.SpreadID)
		if err != nil {
			markErr := deps.Pipeline.MarkError(task.StageID, err.Error())
			if markErr != nil {
				return fmt.Errorf("load spread %d: %v (mark error: %w)", task.SpreadID, err, markErr)
			}
			return nil
		}

		result, err := deps.Generator.GenerateStage(ctx, task.Stage, *spread)
		if err != nil {
			if markErr := deps.Pipeline.MarkError(task.StageID, err.Error()); markErr != nil {
				return fmt.Errorf("generate %s for spread %s: %v (mark error: %w)",
					task.Stage, spread.Code, err, markErr)
			}
			log.Printf("[TASK] Stage %s errored for spread %s: %v", task.Stage, spread.Code, err)
			return nil
		}

		if err := applyStageResult(deps.Spreads, spread.ID, result); err != nil {
			if markErr := deps.Pipeline.MarkError(task.StageID, err.Error()); markErr != nil {
				return fmt.Errorf("apply %s for spread %s: %v (mark error: %w)",
					task.Stage, spread.Code, err, markErr)
			}
			return nil
		}

		if err := deps.Pipeline.MarkDone(task.StageID); err != nil {
			return fmt.Errorf("mark stage %d done: %w", task.StageID, err)
		}

		log.Printf("[TASK] Stage %s done for spread %s", task.Stage, spread.Code)
		return nil
	}
}

func applyStageResult(repo *spreads.Repository, spreadID uint, result *genai.StageResult) error {
	update := spreads.ContentUpdate{
		PassageText:    result.PassageText,
		PassageContext: result.PassageContext,
		KeyVerseText:   result.KeyVerseText,
		KeyVerseRef:    result.KeyVerseRef,
		ModernText:     result.ModernText,
		Paraphrase:     result.Paraphrase,
		Mood:           result.Mood,
		ImagePrompt:    result.ImagePrompt,
		ImageStyle:     result.ImageStyle,
	}
	if err := repo.UpdateContent(spreadID, update); err != nil {
		return err
	}

	for i, url := range result.ImageURLs {
		if i >= 4 {
			break
		}
		if err := repo.SetImage(spreadID, i+1, url); err != nil {
			return err
		}
	}
	if len(result.ImageURLs) > 0 {
		if err := repo.SetPrimaryImage(spreadID, 1); err != nil {
			return err
		}
	}
	return nil
}

// NewGenerateStageQueue creates a backlite queue for stage generation.
func NewGenerateStageQueue(deps StageDeps) backlite.Queue {
	return backlite.NewQueue(GenerateStageProcessor(deps))
}

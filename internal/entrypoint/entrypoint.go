package entrypoint

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tmorren/selah/internal/access"
	"github.com/tmorren/selah/internal/config"
	"github.com/tmorren/selah/internal/database"
	"github.com/tmorren/selah/internal/database/favorites"
	"github.com/tmorren/selah/internal/database/images"
	"github.com/tmorren/selah/internal/database/library"
	"github.com/tmorren/selah/internal/database/pipeline"
	"github.com/tmorren/selah/internal/database/readmarks"
	"github.com/tmorren/selah/internal/database/regen"
	"github.com/tmorren/selah/internal/database/spreads"
	"github.com/tmorren/selah/internal/database/users"
	"github.com/tmorren/selah/internal/emails"
	"github.com/tmorren/selah/internal/genai"
	http_controllers "github.com/tmorren/selah/internal/http"
	"github.com/tmorren/selah/internal/scheduler"
	"github.com/tmorren/selah/internal/tasks"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

// Serve runs the HTTP server until an interrupt arrives, then shuts down
// gracefully within the configured timeout.
func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: router,
	}

	go func() {
		fmt.Printf("Starting server at %s:%d\n", cfg.HTTP.Host, cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutdown Server, waiting %v before killing\n", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Stop background workers before the HTTP listener
	if onShutdown != nil {
		onShutdown(ctx)
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server Shutdown:", err)
	}

	log.Println("Server exiting")
}

// Run wires the full service and serves it: database, repositories,
// generation task queue, maintenance scheduler and HTTP API.
func Run(cfg *config.Config, version string) {
	log.Printf("Starting Selah v%s", version)

	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}()

	pipelineRepo := pipeline.NewRepository(db.DB)
	spreadRepo := spreads.NewRepository(db.DB)
	regenRepo := regen.NewRepository(db.DB)
	favoriteRepo := favorites.NewRepository(db.DB)
	readMarkRepo := readmarks.NewRepository(db.DB)
	libraryRepo := library.NewRepository(db.DB)
	selectionRepo := images.NewRepository(db.DB)
	userRepo := users.NewRepository(db.DB)
	guard := access.NewGuard(db.DB)

	emailRenderer, err := emails.NewRenderer()
	if err != nil {
		log.Fatalf("Failed to load email templates: %v", err)
	}

	generator := genai.NewClient(cfg.GenAI.BaseURL, cfg.GenAI.Token)

	hostname, err := os.Hostname()
	if err != nil {
		hostname = "selah"
	}
	workerID := fmt.Sprintf("%s-%d", hostname, os.Getpid())

	// Task queue for embedded generation workers (optional)
	var taskClient *tasks.Client
	if cfg.Tasks.Enabled {
		taskClient, err = tasks.NewClient(cfg.Database.Path, tasks.Config{
			Workers:           cfg.Tasks.Workers,
			ReleaseAfter:      cfg.Tasks.ReleaseAfter,
			CleanupInterval:   cfg.Tasks.CleanupInterval,
			RetentionDuration: cfg.Tasks.RetentionDuration,
		})
		if err != nil {
			log.Fatalf("Failed to initialize task queue: %v", err)
		}
		defer taskClient.Close()

		taskClient.Register(
			tasks.NewGenerateStageQueue(tasks.StageDeps{
				Pipeline:  pipelineRepo,
				Spreads:   spreadRepo,
				Generator: generator,
				WorkerID:  workerID,
				ClaimTTL:  cfg.Pipeline.ClaimTTL,
			}),
			tasks.NewRegenImagesQueue(tasks.RegenDeps{
				Regen:      regenRepo,
				Spreads:    spreadRepo,
				Generator:  generator,
				Candidates: cfg.Regen.Candidates,
			}),
		)

		go taskClient.Start(context.Background())
	} else {
		log.Printf("Task queue disabled, expecting external workers to drain the pending view")
	}

	// Maintenance scheduler: lease release, stale regen expiry, retryable
	// error resets, work dispatch
	var maintenance *scheduler.Maintenance
	if cfg.Maintenance.Enabled {
		maintenance = scheduler.NewMaintenance(pipelineRepo, regenRepo, taskClient, scheduler.Config{
			Schedule:         cfg.Maintenance.Schedule,
			BatchSize:        cfg.Pipeline.BatchSize,
			MaxRetries:       cfg.Pipeline.MaxRetries,
			RegenExpireAfter: cfg.Regen.ExpireAfter,
		})
		if err := maintenance.Start(context.Background()); err != nil {
			log.Fatalf("Failed to start maintenance scheduler: %v", err)
		}
	}

	router := http_controllers.NewRouter(http_controllers.RouterConfig{
		Database:            db,
		Guard:               guard,
		PipelineStore:       pipelineRepo,
		CompletedStore:      spreadRepo,
		SpreadStore:         spreadRepo,
		SpreadResolver:      spreadRepo,
		RegenStore:          regenRepo,
		FavoritesStore:      favoriteRepo,
		ReadMarksStore:      readMarkRepo,
		LibraryStore:        libraryRepo,
		ImageSelectionStore: selectionRepo,
		UserStore:           userRepo,
		BatchSize:           cfg.Pipeline.BatchSize,
		EmailRenderer:       emailRenderer,
		SiteURL:             cfg.Email.SiteURL,
		TaskClient:          taskClient,
		Version:             version,
	})

	Serve(router, cfg, func(ctx context.Context) {
		if maintenance != nil {
			maintenance.Stop()
		}
		if taskClient != nil {
			taskClient.Stop(ctx)
		}
	})
}

package http

import (
	"github.com/tmorren/selah/internal/access"
	"github.com/tmorren/selah/internal/database"
	"github.com/tmorren/selah/internal/emails"
	"github.com/tmorren/selah/internal/tasks"
)

// RouterConfig contains all dependencies and configuration needed
// to create the HTTP router. This replaces a long parameter list
// in NewRouter for better maintainability.
type RouterConfig struct {
	// Core dependencies
	Database *database.Database
	Guard    *access.Guard

	// Stores, consumer-side interfaces per controller
	PipelineStore       PipelineStore
	CompletedStore      CompletedStore
	SpreadStore         SpreadStore
	SpreadResolver      SpreadResolver
	RegenStore          RegenStore
	FavoritesStore      FavoritesStore
	ReadMarksStore      ReadMarksStore
	LibraryStore        LibraryStore
	ImageSelectionStore ImageSelectionStore
	UserStore           UserStore

	// Pipeline view bound
	BatchSize int

	// Email template previews
	EmailRenderer *emails.Renderer
	SiteURL       string

	// Task queue client (optional)
	TaskClient *tasks.Client

	// Application info
	Version string
}

package http

import (
	"github.com/gin-gonic/gin"
)

// NewRouter creates and configures the HTTP router with all endpoints.
// The pending/completed/errors views are public read projections; the
// user-scoped routes sit behind bearer-token auth; admin routes require
// the administrator flag on top of that.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	healthController := NewHealthController(cfg.Database, cfg.Version)
	router.GET("/health", healthController.Status)

	viewsController := NewViewsController(cfg.PipelineStore, cfg.CompletedStore, cfg.BatchSize)
	router.GET("/api/views/pending", viewsController.Pending)
	router.GET("/api/views/completed", viewsController.Completed)
	router.GET("/api/views/errors", viewsController.Errors)
	router.GET("/api/views/stats", viewsController.Stats)

	spreadsController := NewSpreadsController(cfg.SpreadStore)
	router.GET("/api/spreads/count", spreadsController.GetCatalogSize)
	router.GET("/api/spreads/:code", spreadsController.GetSpread)

	// Everything below carries a caller identity.
	authed := router.Group("/api")
	authed.Use(TokenAuthMiddleware(cfg.UserStore))

	favoritesController := NewFavoritesController(cfg.FavoritesStore)
	authed.POST("/spreads/:code/favorite", favoritesController.AddFavorite)
	authed.DELETE("/spreads/:code/favorite", favoritesController.RemoveFavorite)
	authed.GET("/favorites", favoritesController.ListFavorites)
	authed.GET("/favorites/count", favoritesController.GetFavoriteCount)

	readMarksController := NewReadMarksController(cfg.ReadMarksStore)
	authed.POST("/spreads/:code/read", readMarksController.MarkRead)
	authed.DELETE("/spreads/:code/read", readMarksController.MarkUnread)
	authed.GET("/readmarks", readMarksController.ListReadMarks)
	authed.GET("/readmarks/count", readMarksController.GetReadCount)

	libraryController := NewLibraryController(cfg.LibraryStore)
	authed.POST("/spreads/:code/library", libraryController.AddToLibrary)
	authed.DELETE("/spreads/:code/library", libraryController.RemoveFromLibrary)
	authed.GET("/library", libraryController.ListLibrary)

	imagesController := NewImagesController(cfg.ImageSelectionStore)
	authed.PUT("/spreads/:code/image/:slot", imagesController.SelectImage)
	authed.DELETE("/spreads/:code/image", imagesController.ClearSelection)
	authed.GET("/spreads/:code/image", imagesController.GetSelection)
	authed.GET("/selections", imagesController.ListSelections)

	regenController := NewRegenController(cfg.RegenStore, cfg.SpreadResolver, cfg.Guard, cfg.TaskClient)
	authed.POST("/spreads/:code/regen/:slot", regenController.TriggerRegen)
	authed.GET("/spreads/:code/regen", regenController.ListForSpread)
	authed.GET("/regen/:id", regenController.GetRegen)
	authed.POST("/regen/:id/select", regenController.SelectCandidate)

	adminController := NewAdminController(cfg.Guard)
	admin := authed.Group("/admin")
	admin.Use(adminController.RequireAdmin())
	admin.GET("/stats", adminController.UserStats)
	admin.POST("/spreads/:code/regen/:slot", regenController.TriggerOperatorRegen)

	if cfg.EmailRenderer != nil {
		emailsController := NewEmailsController(cfg.EmailRenderer, cfg.SiteURL)
		admin.GET("/emails", emailsController.ListTemplates)
		admin.GET("/emails/:name", emailsController.GetTemplateSource)
		admin.GET("/emails/:name/preview", emailsController.PreviewTemplate)
	}

	return router
}

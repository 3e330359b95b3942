package api

import (
	"github.com/expertlane/matchd/internal/config"
	"github.com/expertlane/matchd/internal/db"
	"github.com/expertlane/matchd/internal/dispatch"
	"github.com/expertlane/matchd/internal/invites"
	"github.com/expertlane/matchd/internal/matching"
	"github.com/expertlane/matchd/internal/repository/sqlite"
	"github.com/gorilla/mux"
)

func SetupRoutes(cfg *config.Config, version, buildTime string, database *db.DB, emitter dispatch.Emitter) *mux.Router {
	r := mux.NewRouter()

	// Middleware chain
	r.Use(LoggingMiddleware)
	r.Use(CORSMiddleware)
	r.Use(RecoveryMiddleware)

	// Repository
	repo := sqlite.New(database, logger)

	// Engine and services
	ranker := matching.NewRanker(repo, repo, repo, repo, logger, cfg.MatchingConfig.ScoreWorkers)
	inviteSvc := invites.NewService(repo, repo, repo, emitter, logger, cfg.MatchingConfig.ResponseWindow)

	// Create handlers
	systemHandler := &SystemHandler{}
	authHandler := NewAuthHandler(repo, cfg.JWTSecret, cfg.TokenDuration)
	matchHandler := NewMatchHandler(ranker, repo, repo, cfg.MatchingConfig)
	invitesHandler := NewInvitesHandler(inviteSvc, repo)
	selectionHandler := NewSelectionHandler(inviteSvc)
	settingsHandler := NewSettingsHandler(repo)
	notificationsHandler := NewNotificationsHandler(repo)

	// Open endpoints
	r.HandleFunc("/version", systemHandler.VersionHandler(version, buildTime)).Methods("GET")
	r.HandleFunc("/health", systemHandler.HealthHandler).Methods("GET")
	r.HandleFunc("/v1/auth/signup", authHandler.Signup).Methods("POST")
	r.HandleFunc("/v1/auth/signin", authHandler.Signin).Methods("POST")

	// API v1 Protected routes
	apiV1 := r.PathPrefix("/v1").Subrouter()
	apiV1.Use(JWTAuthMiddlewareWithSecret(cfg.JWTSecret))

	// Auth endpoints
	authV1 := apiV1.PathPrefix("/auth").Subrouter()
	authV1.HandleFunc("/signout", authHandler.Signout).Methods("POST")

	// Matching endpoints
	apiV1.HandleFunc("/briefs/{brief_id}/rank", matchHandler.Rank).Methods("POST")
	apiV1.HandleFunc("/briefs/{brief_id}/runs", matchHandler.ListRuns).Methods("GET")

	// Invitation endpoints
	apiV1.HandleFunc("/briefs/{brief_id}/invites", invitesHandler.CreateInvites).Methods("POST")
	apiV1.HandleFunc("/briefs/{brief_id}/invites", invitesHandler.ListByBrief).Methods("GET")
	apiV1.HandleFunc("/invites", invitesHandler.ListMine).Methods("GET")
	apiV1.HandleFunc("/invites/{id}/view", invitesHandler.View).Methods("POST")
	apiV1.HandleFunc("/invites/{id}/respond", invitesHandler.Respond).Methods("POST")

	// Selection endpoints
	apiV1.HandleFunc("/briefs/{brief_id}/select", selectionHandler.Select).Methods("POST")
	apiV1.HandleFunc("/briefs/{brief_id}/reassign", selectionHandler.Reassign).Methods("POST")

	// Notification endpoints
	apiV1.HandleFunc("/notifications", notificationsHandler.List).Methods("GET")
	apiV1.HandleFunc("/notifications/{id}/read", notificationsHandler.MarkRead).Methods("POST")

	// Admin settings endpoints
	adminV1 := apiV1.PathPrefix("/admin").Subrouter()
	adminV1.HandleFunc("/settings", settingsHandler.Get).Methods("GET")
	adminV1.HandleFunc("/settings", settingsHandler.Put).Methods("PUT")

	return r
}

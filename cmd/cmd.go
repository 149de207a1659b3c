package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"vibe-social-backend/internal/config"
	"vibe-social-backend/internal/handlers"
	"vibe-social-backend/internal/middleware"
	"vibe-social-backend/internal/repository"
	"vibe-social-backend/internal/services"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func Run() {
	// Load configuration
	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Setup logger
	setupLogger(cfg.Log.Level)

	// Connect to database
	db, err := pgxpool.New(context.Background(), cfg.Database.DSN())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	if err := db.Ping(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("Failed to ping database")
	}
	log.Info().Msg("Database connection established")

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	friendshipRepo := repository.NewFriendshipRepository(db)
	postRepo := repository.NewPostRepository(db)
	engagementRepo := repository.NewEngagementRepository(db)
	inviteRepo := repository.NewInviteRepository(db)
	messageRepo := repository.NewMessageRepository(db)

	// Initialize services
	hub := services.NewHub()
	sessionTTL := time.Duration(cfg.Session.TTLDays) * 24 * time.Hour
	sessionService := services.NewSessionService(userRepo, cfg.Session.JWTSecret, sessionTTL)
	friendsService := services.NewFriendsService(friendshipRepo, userRepo, hub)
	postsService := services.NewPostsService(postRepo, engagementRepo, friendshipRepo, userRepo)
	messagesService := services.NewMessagesService(messageRepo, userRepo, hub)
	invitesService := services.NewInvitesService(inviteRepo, friendshipRepo, userRepo)
	mediaService, err := services.NewMediaService(cfg.AWS)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create media service")
	}

	// Initialize handlers
	sessionHandler := handlers.NewSessionHandler(sessionService, cfg.Session.CookieName, cfg.Session.Secure)
	userHandler := handlers.NewUserHandler(sessionService)
	friendsHandler := handlers.NewFriendsHandler(friendsService, sessionService)
	postsHandler := handlers.NewPostsHandler(postsService, sessionService)
	messagesHandler := handlers.NewMessagesHandler(messagesService, friendsService, sessionService)
	invitesHandler := handlers.NewInvitesHandler(invitesService)
	uploadHandler := handlers.NewUploadHandler(mediaService)
	wsHandler := handlers.NewWebSocketHandler(hub, sessionService)

	// Setup router
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(cors.New(cors.Options{
		AllowedOrigins:   cfg.Server.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	}).Handler)

	r.Route("/api/v1", func(r chi.Router) {
		// Public routes
		r.Post("/auth/session", sessionHandler.Create)
		r.Get("/auth/session", sessionHandler.Check)
		r.Delete("/auth/session", sessionHandler.Destroy)
		r.Get("/public/events/{id}", postsHandler.PublicEvent)
		r.Get("/invites/{code}", invitesHandler.Preview)
		r.Get("/posts/{id}/comments", postsHandler.ListComments)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(sessionService, cfg.Session.CookieName))

			r.Get("/users/profile", userHandler.GetProfile)
			r.Put("/users/profile", userHandler.UpdateProfile)
			r.Get("/users/{id}", userHandler.GetUser)

			r.Get("/friends", friendsHandler.Overview)
			r.Get("/friends/requests", friendsHandler.ListRequests)
			r.Post("/friends/request", friendsHandler.SendRequest)
			r.Post("/friends/respond", friendsHandler.Respond)
			r.Get("/friends/status/{userId}", friendsHandler.Status)

			r.Get("/posts", postsHandler.ListFeed)
			r.Post("/posts", postsHandler.Create)
			r.Post("/posts/stack", postsHandler.AddStack)
			r.Get("/posts/wall/{userId}", postsHandler.Wall)
			r.Get("/posts/{id}", postsHandler.Get)
			r.Delete("/posts/{id}", postsHandler.Delete)
			r.Put("/posts/{id}/feature", postsHandler.Feature)
			r.Post("/posts/{id}/react", postsHandler.React)
			r.Post("/posts/{id}/attend", postsHandler.Attend)
			r.Post("/posts/{id}/comments", postsHandler.AddComment)

			r.Get("/messages", messagesHandler.ListConversations)
			r.Post("/messages", messagesHandler.Send)
			r.Post("/messages/read", messagesHandler.MarkRead)
			r.Get("/messages/{userId}", messagesHandler.Thread)
			r.Get("/notifications/counts", messagesHandler.NotificationCounts)

			r.Get("/invites", invitesHandler.List)
			r.Post("/invites", invitesHandler.Create)
			r.Post("/invites/{code}", invitesHandler.Redeem)
			r.Delete("/invites/{code}", invitesHandler.Revoke)

			r.Post("/upload", uploadHandler.Upload)
		})
	})

	// WebSocket route
	r.Get("/ws", wsHandler.Handle)

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().
			Str("host", cfg.Server.Host).
			Int("port", cfg.Server.Port).
			Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}

// setupLogger configures zerolog logger
func setupLogger(level string) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

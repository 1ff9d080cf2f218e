package main

import (
	"database/sql"
	"net/http"
	"os"
	"strings"
	"time"

	_ "github.com/lib/pq"

	"communityhub/config"
	authadapter "communityhub/internal/adapters/auth"
	"communityhub/internal/adapters/calendar"
	emailadapter "communityhub/internal/adapters/email"
	"communityhub/internal/adapters/notify"
	delivery "communityhub/internal/delivery/http"
	"communityhub/internal/delivery/http/controllers"
	"communityhub/internal/delivery/http/middleware"
	"communityhub/internal/repository/postgres"
	"communityhub/internal/services"
)

const bcryptCost = 10

// @title CommunityHub API
// @version 1.0
// @description Community and event management backend: communities, events, registrations, co-hosting, and reminders.
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	logger := config.NewLogger()

	db, err := sql.Open("postgres", cfg.DBUrl)
	if err != nil {
		logger.Error("failed to open database", "err", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		logger.Error("failed to ping database", "err", err)
		os.Exit(1)
	}

	if err := postgres.RunMigrations(cfg.DBUrl, cfg.MigrationsPath); err != nil {
		logger.Error("failed to run migrations", "err", err)
		os.Exit(1)
	}

	// Repositories
	userRepo := postgres.NewUserRepository(db)
	communityRepo := postgres.NewCommunityRepository(db)
	memberRepo := postgres.NewCommunityMemberRepository(db)
	eventRepo := postgres.NewEventRepository(db)
	registrationRepo := postgres.NewEventRegistrationRepository(db)
	collabRepo := postgres.NewEventCollaborationRepository(db)
	sentReminderRepo := postgres.NewSentReminderRepository(db)

	// Adapters
	mailer, err := emailadapter.NewMailer(emailadapter.MailerConfig{
		Provider:    cfg.EmailProvider,
		FromAddress: cfg.EmailFromAddress,
		FromName:    cfg.EmailFromName,
		SES: emailadapter.SESConfig{
			Region:             cfg.AWSRegion,
			AccessKeyID:        cfg.AWSAccessKeyID,
			SecretAccessKey:    cfg.AWSSecretAccessKey,
			InsecureSkipVerify: cfg.SESInsecureTLS,
		},
	})
	if err != nil {
		logger.Error("failed to create mailer", "err", err)
		os.Exit(1)
	}
	renderer := emailadapter.NewTemplateRenderer()
	icsBuilder := calendar.NewICSBuilder("", cfg.EmailFromAddress)
	hasher := authadapter.NewBcryptHasher(bcryptCost)
	issuer := authadapter.NewJWTIssuer(cfg.JWTSecret)
	verifier := authadapter.NewJWTVerifier(cfg.JWTSecret)
	dispatcher := notify.NewHTTPDispatcher(&http.Client{Timeout: 30 * time.Second}, cfg.BaseURL, cfg.CronSecret)

	// Services
	emailSvc := services.NewEmailService(mailer, renderer, icsBuilder)
	authSvc := services.NewAuthService(userRepo, hasher, issuer, cfg.JWTExpiry)
	communitySvc := services.NewCommunityService(communityRepo, memberRepo)
	eventSvc := services.NewEventService(eventRepo, memberRepo, 10*time.Second)
	registrationSvc := services.NewRegistrationService(eventRepo, registrationRepo, communityRepo, memberRepo, userRepo, emailSvc, dispatcher, cfg.BaseURL)
	collabSvc := services.NewCollaborationService(collabRepo, eventRepo, communityRepo, memberRepo, userRepo, emailSvc, dispatcher, cfg.BaseURL)
	reminderSvc := services.NewReminderService(eventRepo, registrationRepo, userRepo, sentReminderRepo, emailSvc, cfg.BaseURL, nil)
	notificationSvc := services.NewNotificationService(eventRepo, collabRepo, communityRepo, memberRepo, registrationRepo, userRepo, emailSvc, cfg.BaseURL)

	// Controllers
	mux := delivery.NewRouter(delivery.Controllers{
		Auth:          controllers.NewAuthController(logger, authSvc),
		Community:     controllers.NewCommunityController(logger, communitySvc),
		Event:         controllers.NewEventController(logger, eventSvc),
		Registration:  controllers.NewRegistrationController(logger, registrationSvc, cfg.BaseURL),
		Collaboration: controllers.NewCollaborationController(logger, collabSvc),
		Reminder:      controllers.NewReminderController(logger, reminderSvc, cfg.CronSecret),
		Notification:  controllers.NewNotificationController(logger, notificationSvc, cfg.CronSecret),
	}, verifier, logger)

	var handler http.Handler = mux
	if origins := os.Getenv("CORS_ALLOWED_ORIGINS"); origins != "" {
		handler = middleware.CORS(strings.Split(origins, ","), handler)
	}
	handler = middleware.LoggingMiddleware(logger, handler)

	addr := ":" + cfg.Port
	logger.Info("server listening", "addr", addr, "env", cfg.Environment)
	if err := http.ListenAndServe(addr, handler); err != nil {
		logger.Error("server stopped", "err", err)
		os.Exit(1)
	}
}

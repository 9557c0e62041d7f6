// @title SkySpotter API
// @version 1.0
// @description Community reviews of stargazing locations, with vote scoring and email deliverability tracking.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"skyspotter/config"
	"skyspotter/internal/adapters/auth"
	"skyspotter/internal/adapters/email"
	"skyspotter/internal/adapters/sns"
	httpdelivery "skyspotter/internal/delivery/http"
	"skyspotter/internal/delivery/http/controllers"
	"skyspotter/internal/delivery/http/middleware"
	"skyspotter/internal/repository/postgres"
	"skyspotter/internal/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}
	logger := config.NewLogger()

	db, err := sql.Open("postgres", cfg.DBUrl)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		logger.Error("database is unreachable", "error", err)
		os.Exit(1)
	}

	// Repositories
	userRepo := postgres.NewUserRepository(db)
	roleRepo := postgres.NewRoleRepository(db)
	locationRepo := postgres.NewLocationRepository(db)
	reviewRepo := postgres.NewReviewRepository(db)
	commentRepo := postgres.NewCommentRepository(db)
	voteRepo := postgres.NewVoteRepository(db)
	reportRepo := postgres.NewReportRepository(db)
	followRepo := postgres.NewFollowRepository(db)
	badgeRepo := postgres.NewBadgeRepository(db)
	bounceRepo := postgres.NewBounceRepository(db)
	complaintRepo := postgres.NewComplaintRepository(db)
	suppressionRepo := postgres.NewSuppressionRepository(db)
	auditRepo := postgres.NewAuditRepository(db)
	resolver := postgres.NewTargetResolver(db)

	// Adapters
	hasher := auth.NewBcryptHasher(0)
	tokens := auth.NewJWTManager(cfg.JWTSecret)
	mailer, err := email.NewMailer(email.MailerConfig{
		Provider:    cfg.Email.Provider,
		FromAddress: cfg.Email.FromAddress,
		FromName:    cfg.Email.FromName,
		SES: email.SESConfig{
			Region:          cfg.Email.SESRegion,
			AccessKeyID:     cfg.Email.SESAccessKeyID,
			SecretAccessKey: cfg.Email.SESSecretAccessKey,
		},
	}, logger)
	if err != nil {
		logger.Error("failed to create mailer", "error", err)
		os.Exit(1)
	}
	renderer := email.NewTemplateRenderer()
	verifier := sns.NewVerifier(nil, cfg.SNSCertHostSuffix)

	// Services
	suppressionSvc := services.NewSuppressionService(bounceRepo, complaintRepo, suppressionRepo, auditRepo, userRepo, cfg.SoftBounceThreshold, logger)
	emailSvc := services.NewEmailService(mailer, renderer, suppressionSvc, logger)
	badgeSvc := services.NewBadgeService(badgeRepo, userRepo, emailSvc, logger)
	authSvc := services.NewAuthService(userRepo, roleRepo, hasher, tokens, cfg.JWTExpiry, emailSvc, logger)
	userSvc := services.NewUserService(userRepo)
	locationSvc := services.NewLocationService(locationRepo)
	reviewSvc := services.NewReviewService(reviewRepo, locationRepo, badgeSvc, logger)
	commentSvc := services.NewCommentService(commentRepo, reviewRepo)
	voteSvc := services.NewVoteService(voteRepo, resolver, badgeSvc, logger)
	reportSvc := services.NewReportService(reportRepo, resolver)
	followSvc := services.NewFollowService(followRepo, userRepo)

	// Controllers
	router := httpdelivery.NewRouter(httpdelivery.Controllers{
		Auth:        controllers.NewAuthController(logger, authSvc),
		User:        controllers.NewUserController(logger, userSvc, badgeSvc),
		Location:    controllers.NewLocationController(logger, locationSvc),
		Review:      controllers.NewReviewController(logger, reviewSvc, voteSvc),
		Comment:     controllers.NewCommentController(logger, commentSvc),
		Vote:        controllers.NewVoteController(logger, voteSvc),
		Report:      controllers.NewReportController(logger, reportSvc),
		Follow:      controllers.NewFollowController(logger, followSvc),
		Webhook:     controllers.NewWebhookController(logger, verifier, suppressionSvc),
		Suppression: controllers.NewSuppressionController(logger, suppressionSvc),
	}, tokens)

	handler := middleware.LoggingMiddleware(logger, middleware.CORS(cfg.AllowedOrigins, router))

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server listening", "port", cfg.Port, "env", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server stopped unexpectedly", "error", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down")
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
}

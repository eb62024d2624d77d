package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"andromeda/internal/api"
	"andromeda/internal/app/service"
	"andromeda/internal/app/worker"
	"andromeda/internal/common"
	"andromeda/internal/common/security"
	"andromeda/internal/domain/model"
	"andromeda/internal/domain/repository"
	"andromeda/internal/platform/config"
	"andromeda/internal/platform/database"
	"andromeda/internal/platform/queue"

	"github.com/google/uuid"
)

func main() {
	// 1. Load Configuration
	config.Load()
	fmt.Println("Configuration loaded.")

	// 2. Initialize Database
	database.Connect()
	defer database.Close()
	fmt.Println("Database connected.")

	// 3. Initialize Redis
	queue.ConnectRedis()
	defer queue.CloseRedis()
	fmt.Println("Redis connected.")

	// 4. Token issuer
	issuer := security.NewTokenIssuer(
		config.AppConfig.JWTKey,
		config.AppConfig.AccessTokenExp,
		config.AppConfig.RefreshTokenExp,
	)

	// 5. Initialize Repositories
	userRepo := repository.NewPgUserRepository(database.DB)
	studentRepo := repository.NewPgStudentRepository(database.DB)
	behaviorRepo := repository.NewPgBehaviorRepository(database.DB)
	resourceRepo := repository.NewPgResourceRepository(database.DB)
	trackingRepo := repository.NewPgTrackingRepository(database.DB)

	// 6. Initialize Services
	mailer := service.NewRedisMailService(queue.RDB, config.AppConfig.MailQueueName)
	authService := service.NewAuthService(userRepo, issuer, mailer, config.AppConfig.ResetTokenExpiryHours)
	adminService := service.NewAdminService(userRepo, mailer)
	userService := service.NewUserService(userRepo)
	studentService := service.NewStudentService(studentRepo, behaviorRepo)
	catalogService := service.NewCatalogService(behaviorRepo, resourceRepo)
	trackingService := service.NewTrackingService(database.DB, trackingRepo, studentRepo, behaviorRepo)

	// 7. Bootstrap the superuser account
	if err := bootstrapSuperAdmin(context.Background(), userRepo); err != nil {
		log.Fatalf("Super admin bootstrap failed: %v", err)
	}

	// 8. Initialize Mailer Worker (as a goroutine)
	mailerWorker := worker.NewMailerWorker(queue.RDB, config.AppConfig.MailQueueName)
	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()
	go mailerWorker.Start(workerCtx)
	fmt.Println("Mailer worker started.")

	// 9. Initialize Router & HTTP Server
	router := api.NewRouter(issuer, authService, adminService, userService, studentService, catalogService, trackingService)

	server := &http.Server{
		Addr:         ":" + config.AppConfig.APIPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// 10. Graceful Shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("Server starting on port %s", config.AppConfig.APIPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Could not listen on %s: %v\n", config.AppConfig.APIPort, err)
		}
	}()
	log.Println("Server started successfully.")

	<-stop

	log.Println("Shutting down server...")
	workerCancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server shutdown failed: %v", err)
	}

	log.Println("Server and worker stopped gracefully.")
}

// bootstrapSuperAdmin ensures the configured superuser account exists. The
// account bypasses every role check, so it is only created when both
// SUPER_ADMIN_EMAIL and SUPER_ADMIN_PASSWORD are set. An existing account
// with that email is left untouched.
func bootstrapSuperAdmin(ctx context.Context, userRepo repository.UserRepository) error {
	email := config.AppConfig.SuperAdminEmail
	password := config.AppConfig.SuperAdminPassword
	if email == "" || password == "" {
		log.Println("WARN: SUPER_ADMIN_EMAIL/SUPER_ADMIN_PASSWORD not set, skipping superuser bootstrap.")
		return nil
	}

	if _, err := userRepo.FindByEmail(ctx, email); err == nil {
		log.Printf("INFO: Superuser account %s already exists.", email)
		return nil
	} else if !errors.Is(err, common.ErrNotFound) {
		return fmt.Errorf("failed to look up superuser account: %w", err)
	}

	hash, err := security.HashPassword(password)
	if err != nil {
		return fmt.Errorf("failed to hash superuser password: %w", err)
	}

	now := time.Now().UTC()
	name := "Superuser"
	user := &model.User{
		ID:             uuid.NewString(),
		Email:          email,
		Username:       email,
		HashedPassword: hash,
		FirstName:      &name,
		Role:           model.RoleSuperuser,
		IsActive:       true,
		IsApproved:     true,
		ApprovedAt:     &now,
		RegisteredDate: &now,
	}
	if err := userRepo.Create(ctx, user); err != nil {
		return fmt.Errorf("failed to create superuser account: %w", err)
	}
	log.Printf("INFO: Superuser account %s created.", email)
	return nil
}

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/justsurfingit/jobtracker/internal/app"
	"github.com/justsurfingit/jobtracker/internal/auth"
	"github.com/justsurfingit/jobtracker/internal/config"
	"github.com/justsurfingit/jobtracker/internal/database"
	"github.com/justsurfingit/jobtracker/internal/logger"
	"github.com/justsurfingit/jobtracker/internal/models"
	"github.com/justsurfingit/jobtracker/internal/queue"
	"github.com/justsurfingit/jobtracker/internal/services"
	"github.com/justsurfingit/jobtracker/internal/storage"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
	"gorm.io/gorm"
)

func main() {
	// 1. Load Environment Variables (.env is optional outside development)
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Warn("Error loading .env file", "error", err)
	}
	cfg := config.Load()
	logger.Init(cfg.App.Env)
	logger.Info("Logger initialized", "env", cfg.App.Env)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 2. Database Connection
	db, err := database.Connect(cfg)
	if err != nil {
		logger.Fatal("Database unavailable", "error", err)
	}

	// 3. Storage and extraction queue
	store, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		logger.Fatal("Failed to initialize storage", "error", err)
	}
	logger.Info("Storage initialized", "type", cfg.Storage.Type)

	q, err := queue.New(cfg.Queue)
	if err != nil {
		logger.Fatal("Failed to initialize queue", "error", err)
	}
	defer q.Close()
	logger.Info("Queue initialized", "type", cfg.Queue.Type)

	// 4. Optional LLM client
	llmService, err := services.NewLLMService(ctx, cfg.LLM)
	if err != nil {
		logger.Warn("LLM features disabled", "error", err)
	}

	svc := app.NewServiceContainer(cfg, db, store, q, llmService)
	if err := svc.Users.SeedAdmin(ctx, cfg.Auth.AdminEmail, cfg.Auth.AdminPassword); err != nil {
		logger.Fatal("Failed to seed first admin user", "error", err)
	}

	// 5. Background workers
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := q.Consume(ctx, cfg.Queue.Workers, svc.Extraction.HandleTask); err != nil {
			logger.Error("extraction workers stopped", "error", err)
		}
	}()

	if n, err := svc.Extraction.RecoverPending(ctx); err != nil {
		logger.Error("failed to re-enqueue pending resumes", "error", err)
	} else if n > 0 {
		logger.Info("re-enqueued pending resumes", "count", n)
	}

	if watcher := mailWatcher(ctx, cfg, db, llmService); watcher != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			watcher.Run(ctx)
		}()
	}

	// 6. HTTP server
	srv := &http.Server{
		Addr:              cfg.App.Port,
		Handler:           app.SetupRouter(cfg, db, svc),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info("Server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server startup error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}
	wg.Wait()
	logger.Info("Server exited")
}

// mailWatcher builds the Gmail status sync, or returns nil when it is off or
// cannot be set up.
func mailWatcher(ctx context.Context, cfg *config.Config, db *gorm.DB, llm *services.LLMService) *services.EmailService {
	if !cfg.Mail.Enabled {
		return nil
	}
	if llm == nil {
		logger.Warn("Gmail watcher disabled: it needs GEMINI_API_KEY")
		return nil
	}

	var user models.User
	if err := db.WithContext(ctx).Where("email = ?", cfg.Mail.UserEmail).First(&user).Error; err != nil {
		logger.Warn("Gmail watcher disabled: MAIL_SYNC_USER_EMAIL does not match a user", "email", cfg.Mail.UserEmail)
		return nil
	}

	logger.Info("Initializing Gmail Client...")
	httpClient, err := auth.GmailClient(ctx, cfg.Mail.CredentialsFile, cfg.Mail.TokenFile)
	if err != nil {
		logger.Warn("Gmail watcher disabled", "error", err)
		return nil
	}
	gmailService, err := gmail.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		logger.Warn("Failed to create Gmail Service", "error", err)
		return nil
	}
	logger.Info("Gmail Service connected successfully.")

	return services.NewEmailService(db, llm, &services.GmailMailbox{Service: gmailService}, services.NewMatcherService(db), user.ID, cfg.Mail.PollInterval)
}

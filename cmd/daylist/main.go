package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"daylist/internal/assistant"
	"daylist/internal/auth"
	"daylist/internal/config"
	"daylist/internal/realtime"
	"daylist/internal/repository"
	"daylist/internal/service"
	"daylist/internal/web"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	db, err := repository.NewDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	sqlDB, err := db.DB()
	if err == nil {
		defer sqlDB.Close()
	}

	userRepo := repository.NewUserRepository(db)
	profileRepo := repository.NewProfileRepository(db)
	taskRepo := repository.NewTaskRepository(db)

	authSvc := auth.NewService(userRepo, cfg.JWTSecret, cfg.TokenTTL)
	taskSvc := service.NewTaskService(taskRepo)
	profileSvc := service.NewProfileService(profileRepo)

	hub := realtime.NewHub()
	completer := assistant.NewChatClient(cfg.LLMAPIKey, cfg.LLMBaseURL, cfg.LLMModel, cfg.LLMTemperature, cfg.LLMMaxTokens)
	bridge := assistant.NewBridge(taskSvc, completer)

	server := web.NewServer(authSvc, taskSvc, profileSvc, bridge, hub)

	scheduler := service.NewSchedulerService(time.Local)
	if cfg.RefreshInterval > 0 {
		if _, err := scheduler.ScheduleInterval(cfg.RefreshInterval, func() {
			hub.BroadcastAll(realtime.Event{Table: "tasks", Action: "REFRESH"})
		}); err != nil {
			log.Fatalf("schedule refresh: %v", err)
		}
		scheduler.Start()
		defer scheduler.Stop()
	}

	httpServer := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: server.Handler(),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Printf("shutdown: %v", err)
		}
	}()

	log.Printf("[info] daylist listening on %s", cfg.ListenAddr)
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("server stopped with error: %v", err)
	}
	log.Println("Shutdown complete.")
}

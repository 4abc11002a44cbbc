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

	"taskhub/internal/config"
	"taskhub/internal/event"
	"taskhub/internal/intent"
	"taskhub/internal/notify"
	"taskhub/internal/repository"
	"taskhub/internal/server"
	"taskhub/internal/service"
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
	taskRepo := repository.NewTaskRepository(db)
	tagRepo := repository.NewTagRepository(db)
	ruleRepo := repository.NewRecurrenceRuleRepository(db)
	reminderRepo := repository.NewReminderRepository(db)
	eventRepo := repository.NewTaskEventRepository(db)

	publisher := event.NewPublisher(cfg.EventsEndpoint, cfg.EventsTopic)
	eventSvc := event.NewService(eventRepo, publisher, cfg.EventsSource)

	userSvc := service.NewUserService(userRepo)
	tagSvc := service.NewTagService(tagRepo, taskRepo)
	recurrenceSvc := service.NewRecurrenceService(ruleRepo, taskRepo)
	reminderSvc := service.NewReminderService(reminderRepo, taskRepo)
	taskSvc := service.NewTaskService(taskRepo, tagSvc, reminderSvc, recurrenceSvc, eventSvc)

	registry := notify.NewRegistry()
	dispatcher := service.NewDispatcher(reminderSvc, taskRepo, registry)
	executor := intent.NewExecutor(taskSvc)

	scheduler := service.NewSchedulerService(time.UTC)
	if _, err := scheduler.ScheduleInterval(cfg.DispatchInterval, func() {
		cycleCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
		if err := dispatcher.RunCycle(cycleCtx); err != nil && !errors.Is(err, context.Canceled) {
			log.Printf("dispatch: %v", err)
		}
	}); err != nil {
		log.Fatalf("schedule dispatch: %v", err)
	}
	if publisher.Enabled() {
		if _, err := scheduler.ScheduleInterval(time.Minute, func() {
			replayCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
			defer cancel()
			if err := eventSvc.ReplayUnpublished(replayCtx, 100); err != nil {
				log.Printf("event replay: %v", err)
			}
		}); err != nil {
			log.Fatalf("schedule event replay: %v", err)
		}
	}
	scheduler.Start()
	defer scheduler.Stop()

	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: server.New(userSvc, taskSvc, reminderSvc, tagSvc, registry, executor).Handler(),
	}

	go func() {
		log.Printf("Taskhub listening on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("http server: %v", err)
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
	log.Println("Shutdown complete.")
}

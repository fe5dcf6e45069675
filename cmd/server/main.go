package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/Argor01/OkoZnaniy-sub001/internal/config"
	"github.com/Argor01/OkoZnaniy-sub001/internal/db"
	httpHandlers "github.com/Argor01/OkoZnaniy-sub001/internal/http/handlers"
	httpRouter "github.com/Argor01/OkoZnaniy-sub001/internal/http/router"
	"github.com/Argor01/OkoZnaniy-sub001/internal/logger"
	"github.com/Argor01/OkoZnaniy-sub001/internal/repository"
	"github.com/Argor01/OkoZnaniy-sub001/internal/service"
	"github.com/Argor01/OkoZnaniy-sub001/internal/storage"
	"github.com/Argor01/OkoZnaniy-sub001/internal/ws"
)

func main() {
	// Готовим контекст для graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("main: ошибка загрузки конфигурации: %v", err)
	}

	// Инициализация логгера
	if cfg.Env == "development" {
		logger.Init("debug")
		logger.SetTextFormatter()
	} else {
		logger.Init("info")
	}

	// Подключение к базе и миграции.
	dbConn, err := db.NewPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("main: ошибка подключения к базе: %v", err)
	}
	defer safeClose(dbConn)

	if err := db.RunMigrations(ctx, dbConn, cfg.MigrationsPath); err != nil {
		log.Fatalf("main: ошибка миграций: %v", err)
	}

	// Вспомогательная инфраструктура.
	tokenManager := service.NewTokenManager(cfg.JWTSecret)

	fileStorage, err := storage.NewFileStorage(cfg.MediaStoragePath, cfg.MaxUploadSizeMB)
	if err != nil {
		log.Fatalf("main: не удалось подготовить файловое хранилище: %v", err)
	}

	// Репозитории.
	chatRepo := repository.NewChatRepository(dbConn)
	offerRepo := repository.NewOfferRepository(dbConn)
	orderRepo := repository.NewOrderRepository(dbConn)
	claimRepo := repository.NewClaimRepository(dbConn)
	mediaRepo := repository.NewMediaRepository(dbConn)
	notificationRepo := repository.NewNotificationRepository(dbConn)

	// Вебсокеты.
	hub := ws.NewHub()
	go hub.Run()

	// Сервисы.
	notificationService := service.NewNotificationService(notificationRepo, hub)
	ratingRecorder := service.NewNotificationRatingRecorder(notificationService)

	chatService := service.NewChatService(chatRepo, mediaRepo, notificationService, cfg.OfferTTL)
	offerService := service.NewOfferService(chatRepo, offerRepo, notificationService, cfg.OfferTTL)
	workOfferService := service.NewWorkOfferService(chatRepo, offerRepo, mediaRepo, fileStorage, notificationService, ratingRecorder)
	orderService := service.NewOrderService(orderRepo, chatRepo, mediaRepo, notificationService, ratingRecorder)
	claimService := service.NewClaimService(claimRepo, chatRepo, orderRepo, mediaRepo, notificationService, cfg.SupportUserID)
	mediaService := service.NewMediaService(mediaRepo, fileStorage, fileStorage)

	// HTTP хэндлеры.
	chatHandler := httpHandlers.NewChatHandler(chatService)
	offerHandler := httpHandlers.NewOfferHandler(offerService)
	workOfferHandler := httpHandlers.NewWorkOfferHandler(workOfferService)
	orderHandler := httpHandlers.NewOrderHandler(orderService)
	claimHandler := httpHandlers.NewClaimHandler(claimService)
	mediaHandler := httpHandlers.NewMediaHandler(mediaService)
	notificationHandler := httpHandlers.NewNotificationHandler(notificationService)
	wsHandler := httpHandlers.NewWSHandler(hub, tokenManager)
	healthHandler := httpHandlers.NewHealthHandler(dbConn)

	// Роутер.
	engine := httpRouter.SetupRouter(
		cfg,
		chatHandler,
		offerHandler,
		workOfferHandler,
		orderHandler,
		claimHandler,
		mediaHandler,
		notificationHandler,
		wsHandler,
		healthHandler,
		tokenManager,
	)

	server := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: engine,
	}

	// Завершаем сервер при получении сигнала.
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("main: ошибка остановки http сервера: %v", err)
		}
	}()

	log.Printf("main: HTTP сервер запущен на порту %s", cfg.HTTPPort)

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("main: сервер завершился с ошибкой: %v", err)
	}
}

// safeClose закрывает соединение с базой.
func safeClose(db *sqlx.DB) {
	if err := db.Close(); err != nil {
		log.Printf("main: ошибка закрытия базы: %v", err)
	}
}

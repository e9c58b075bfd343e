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

	"cloud.google.com/go/firestore"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	fbapp "firebase.google.com/go/v4"

	"partmatch/internal/adapter/api"
	"partmatch/internal/adapter/api/handler"
	apimiddleware "partmatch/internal/adapter/api/middleware"
	"partmatch/internal/adapter/api/router"
	"partmatch/internal/adapter/repository"
	"partmatch/internal/domain/service"
	"partmatch/internal/infrastructure/email"
	"partmatch/internal/infrastructure/firebase"
	"partmatch/internal/infrastructure/llm"
	"partmatch/internal/infrastructure/metrics"
	"partmatch/internal/infrastructure/pubsub"
	"partmatch/internal/infrastructure/ratelimit"
	"partmatch/internal/infrastructure/scheduler"
	"partmatch/internal/infrastructure/storage"
	"partmatch/internal/infrastructure/websocket"
	"partmatch/internal/usecase"
	"partmatch/pkg/config"
	"partmatch/pkg/logger"
)

type publisher interface {
	service.EventPublisher
	OnPublish(fn func(table string))
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	logger.Init(cfg.Environment)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := credentialOptions(cfg)

	firebaseApp, err := fbapp.NewApp(ctx, &fbapp.Config{ProjectID: cfg.FirebaseProject}, opts...)
	if err != nil {
		log.Fatalf("Failed to initialize Firebase: %v", err)
	}

	authClient, err := firebaseApp.Auth(ctx)
	if err != nil {
		log.Fatalf("Failed to initialize Firebase Auth: %v", err)
	}

	messagingClient, err := firebaseApp.Messaging(ctx)
	if err != nil {
		log.Fatalf("Failed to initialize Firebase Messaging: %v", err)
	}

	firestoreClient, err := firestore.NewClient(ctx, cfg.FirebaseProject, opts...)
	if err != nil {
		log.Fatalf("Failed to create Firestore client: %v", err)
	}
	defer firestoreClient.Close()

	storageClient, err := storage.NewCloudStorageClient(ctx, cfg.AttachmentBucket, opts...)
	if err != nil {
		log.Fatalf("Failed to initialize Cloud Storage: %v", err)
	}
	defer storageClient.Close()

	chatRepo := repository.NewFirestoreChatRepository(firestoreClient)
	chatStatusRepo := repository.NewFirestoreChatStatusRepository(firestoreClient)
	profileRepo := repository.NewFirestoreProfileRepository(firestoreClient)
	partRepo := repository.NewFirestoreCarPartRepository(firestoreClient)
	requestRepo := repository.NewFirestorePartRequestRepository(firestoreClient)
	offerRepo := repository.NewFirestoreOfferRepository(firestoreClient)
	purchaseRepo := repository.NewFirestorePurchaseRepository(firestoreClient)
	fileMetadataRepo := repository.NewFirestoreFileMetadataRepository(firestoreClient)
	notificationRepo := repository.NewFirestoreNotificationRepository(firestoreClient)
	adminNotificationRepo := repository.NewFirestoreAdminNotificationRepository(firestoreClient)

	appMetrics := metrics.New()

	wsManager := websocket.NewManager(nil)
	wsManager.OnConnectionsChanged(appMetrics.SetConnections)
	wsManager.Start(ctx)

	var events publisher
	if cfg.RedisAddr != "" {
		redisClient, err := pubsub.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			log.Fatalf("Failed to initialize Redis: %v", err)
		}
		defer redisClient.Close()

		bridge := pubsub.NewRedisPublisher(redisClient, wsManager)
		bridge.OnFailure(func(error) { appMetrics.ObserveFailure("realtime_bridge") })
		go bridge.Serve(ctx, pubsub.DefaultBackoff)
		events = bridge
	} else {
		events = pubsub.NewLocalPublisher(wsManager)
	}
	events.OnPublish(appMetrics.ObserveEvent)

	pushClient := firebase.NewPushClient(messagingClient)
	mailer := email.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.MailFrom)
	llmClient := llm.NewClient(cfg.LLMAPIURL, cfg.LLMAPIKey, cfg.LLMModel)
	paymentGateway := service.NewSimulatedPaymentGateway(cfg.PaymentSimulationDelay)

	rateLimiter := ratelimit.NewRateLimiter()
	rateLimiter.StartCleanupRoutine(ctx.Done())

	notificationUseCase := usecase.NewNotificationUseCase(notificationRepo, profileRepo, pushClient, events, appMetrics)
	badgeUseCase := usecase.NewBadgeUseCase(chatRepo, events)
	chatUseCase := usecase.NewChatUseCase(
		chatRepo,
		chatStatusRepo,
		profileRepo,
		partRepo,
		fileMetadataRepo,
		storageClient,
		notificationUseCase,
		badgeUseCase,
		events,
		rateLimiter,
		appMetrics,
		usecase.ChatOptions{
			MaxAttachmentBytes: cfg.MaxAttachmentBytes,
			TypingStopDelay:    cfg.TypingStopDelay,
		},
	)
	defer chatUseCase.Stop()
	wsManager.SetAuthorizer(chatUseCase)

	conversationUseCase := usecase.NewConversationUseCase(chatRepo, profileRepo, cfg.TimelineLocation)
	dispatchUseCase := usecase.NewDispatchUseCase(notificationUseCase, requestRepo, offerRepo, partRepo, profileRepo, mailer)
	helpBotUseCase := usecase.NewHelpBotUseCase(llmClient, adminNotificationRepo, rateLimiter, appMetrics)
	insightsUseCase := usecase.NewInsightsUseCase(profileRepo, partRepo, requestRepo, offerRepo, chatRepo, llmClient, mailer)
	listingUseCase := usecase.NewListingUseCase(partRepo)
	promotionUseCase := usecase.NewPromotionUseCase(partRepo, purchaseRepo, paymentGateway, usecase.PromotionPrices{
		FeatureCents: cfg.PromoFeatureCents,
		BoostCents:   cfg.PromoBoostCents,
		ComboCents:   cfg.PromoComboCents,
		Duration:     time.Duration(cfg.PromoDurationDays) * 24 * time.Hour,
	})

	insightsRunner, err := scheduler.NewRunner("weekly-insights", cfg.InsightsCron, func(ctx context.Context) error {
		_, err := insightsUseCase.RunWeekly(ctx)
		return err
	})
	if err != nil {
		log.Fatalf("Invalid INSIGHTS_CRON: %v", err)
	}
	insightsRunner.Start(ctx)

	e := echo.New()
	e.Debug = cfg.IsDevelopment()

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	if len(cfg.AllowedOrigins) > 0 {
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{AllowOrigins: cfg.AllowedOrigins}))
	} else {
		e.Use(middleware.CORS())
	}

	e.Validator = api.NewValidator()

	authMiddleware := apimiddleware.NewAuthMiddleware(authClient)
	adminMiddleware := apimiddleware.NewAdminMiddleware(profileRepo)

	router.Setup(e, router.Handlers{
		Health: handler.NewHealthHandler(func(ctx context.Context) error {
			_, err := firestoreClient.Collection("profiles").Limit(1).Documents(ctx).Next()
			if errors.Is(err, iterator.Done) {
				return nil
			}
			return err
		}),
		Chat:          handler.NewChatHandler(chatUseCase, badgeUseCase),
		Conversation:  handler.NewConversationHandler(conversationUseCase),
		Notification:  handler.NewNotificationHandler(notificationUseCase),
		Function:      handler.NewFunctionHandler(helpBotUseCase, dispatchUseCase),
		Listing:       handler.NewListingHandler(listingUseCase, promotionUseCase),
		Admin:         handler.NewAdminHandler(insightsUseCase),
		WebSocket:     handler.NewWebSocketHandler(wsManager, authMiddleware, cfg.AllowedOrigins),
		Metrics:       appMetrics.Handler(),
		FunctionLimit: rateLimiter,
	}, authMiddleware, adminMiddleware)

	go func() {
		logger.Info("Starting server on port %s...", cfg.ServerPort)
		if err := e.Start(":" + cfg.ServerPort); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server stopped: %v", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed: %v", err)
	}
}

// credentialOptions prefers inline service-account JSON, then a key file, then
// application default credentials.
func credentialOptions(cfg *config.Config) []option.ClientOption {
	if cfg.FirebaseServiceAccountJSON != "" {
		logger.Info("Using Firebase service account from environment variable")
		return []option.ClientOption{option.WithCredentialsJSON([]byte(cfg.FirebaseServiceAccountJSON))}
	}
	if path := cfg.FirebaseServiceAccountPath; path != "" {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			log.Fatalf("Service account file does not exist: %s", path)
		}
		logger.Info("Using Firebase service account from file: %s", path)
		return []option.ClientOption{option.WithCredentialsFile(path)}
	}
	logger.Info("Using application default credentials")
	return nil
}

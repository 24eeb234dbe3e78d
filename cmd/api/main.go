package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/apex/log"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"google.golang.org/api/option"

	fbapp "firebase.google.com/go/v4"

	"civiq/internal/adapter/api"
	"civiq/internal/adapter/api/handler"
	apimiddleware "civiq/internal/adapter/api/middleware"
	"civiq/internal/adapter/api/router"
	"civiq/internal/infrastructure/firebase"
	"civiq/internal/infrastructure/gemini"
	"civiq/internal/infrastructure/pubsub"
	"civiq/internal/infrastructure/rabbitmq"
	"civiq/internal/infrastructure/ratelimit"
	"civiq/internal/infrastructure/storage"
	"civiq/internal/infrastructure/websocket"
	"civiq/internal/usecase"
	"civiq/pkg/config"
	"civiq/pkg/logger"
	"civiq/pkg/response"
)

const (
	warmupRetryEvery = 10 * time.Second
	shutdownTimeout  = 15 * time.Second
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	logger.Configure(cfg.Environment)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opt := credentialsOption(cfg)

	firebaseApp, err := fbapp.NewApp(ctx, &fbapp.Config{ProjectID: cfg.FirebaseProject}, opt)
	if err != nil {
		log.Fatalf("Failed to initialize Firebase: %v", err)
	}

	authClient, err := firebaseApp.Auth(ctx)
	if err != nil {
		log.Fatalf("Failed to initialize Firebase Auth: %v", err)
	}

	stores, err := openStores(ctx, cfg, opt)
	if err != nil {
		log.Fatalf("Failed to open %s store: %v", cfg.StoreDriver, err)
	}
	defer stores.Close()

	storageClient, err := storage.NewCloudStorageClient(ctx, cfg.StorageBucket, opt)
	if err != nil {
		log.Fatalf("Failed to initialize Cloud Storage: %v", err)
	}
	defer storageClient.Close()

	wsManager := websocket.NewManager()
	wsManager.Start(ctx)

	publisher := pubsub.NewFanout().Add("websocket", wsManager)
	if cfg.AMQPURL != "" {
		amqpPublisher, err := rabbitmq.NewPublisher(cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			log.Fatalf("Failed to connect to RabbitMQ: %v", err)
		}
		defer amqpPublisher.Close()
		publisher.Add("amqp", amqpPublisher)
	}
	if cfg.FCMEnabled {
		messagingClient, err := firebaseApp.Messaging(ctx)
		if err != nil {
			log.Fatalf("Failed to initialize Firebase Messaging: %v", err)
		}
		publisher.Add("fcm", firebase.NewPushPublisher(messagingClient))
	}
	logger.Info("Event transports: %v", publisher.Transports())

	geminiClient := gemini.NewClient(cfg.GeminiAPIKey, cfg.GeminiTextModel, cfg.GeminiEmbedModel)
	embedder := usecase.NewReadyEmbedder(geminiClient, logger.New("embedder"))
	go embedder.Warmup(ctx, warmupRetryEvery)

	tasks := usecase.NewTaskRunner(logger.New("tasks"))

	notificationUseCase := usecase.NewNotificationUseCase(
		stores.Notifications,
		stores.Profiles,
		stores.Reports,
		publisher,
		logger.New("notifications"),
	)
	badgeUseCase := usecase.NewBadgeUseCase(
		stores.Badges,
		stores.Reports,
		stores.Profiles,
		geminiClient,
		notificationUseCase,
		cfg.AITimeout,
		logger.New("badges"),
	)
	matcher := usecase.NewDuplicateMatcher(
		stores.Reports,
		stores.Index,
		embedder,
		cfg.DuplicateRadiusMeters,
		cfg.DuplicateThreshold,
		logger.New("duplicates"),
	)
	submissionUseCase := usecase.NewSubmissionUseCase(
		stores.Reports,
		stores.Index,
		matcher,
		storageClient,
		notificationUseCase,
		tasks,
		cfg.UploadTimeout,
		cfg.FanoutTimeout,
		logger.New("submission"),
	)
	lifecycleUseCase := usecase.NewLifecycleUseCase(
		stores.Reports,
		stores.Profiles,
		notificationUseCase,
		badgeUseCase,
		tasks,
		cfg.AITimeout+usecase.BadgeStoreTimeout,
		logger.New("lifecycle"),
	)
	queryUseCase := usecase.NewReportQueryUseCase(stores.Reports, stores.Profiles, logger.New("reports"))
	profileUseCase := usecase.NewProfileUseCase(stores.Profiles, logger.New("profiles"))
	replyUseCase := usecase.NewReplyUseCase(geminiClient, cfg.AITimeout, logger.New("replies"))

	authMiddleware := apimiddleware.NewAuthMiddleware(firebase.NewAuthClient(authClient), profileUseCase)
	adminMiddleware := apimiddleware.NewAdminMiddleware()

	limiter := ratelimit.NewRateLimiter(map[string]ratelimit.Policy{
		ratelimit.ActionSubmitReport:  ratelimit.PerMinute(cfg.RateLimitPerMinute),
		ratelimit.ActionBroadcast:     ratelimit.PerMinute(2),
		ratelimit.ActionGenerateReply: ratelimit.PerMinute(cfg.RateLimitPerMinute),
	}, ratelimit.PerMinute(60))
	limiter.StartCleanupRoutine(ctx)

	handler.Setup(handler.Handlers{
		Report:       handler.NewReportHandler(submissionUseCase, lifecycleUseCase, queryUseCase, cfg.MaxUploadMB<<20),
		Notification: handler.NewNotificationHandler(notificationUseCase),
		Badge:        handler.NewBadgeHandler(badgeUseCase),
		Profile:      handler.NewProfileHandler(profileUseCase),
		Reply:        handler.NewReplyHandler(replyUseCase),
		Health:       handler.NewHealthHandler(embedder),
		WebSocket:    handler.NewWebSocketHandler(wsManager, authMiddleware),
	})

	e := echo.New()
	e.HideBanner = true

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(middleware.BodyLimit(bodyLimit(cfg.MaxUploadMB)))

	e.Validator = api.NewValidator()
	e.HTTPErrorHandler = response.HTTPErrorHandler

	router.Setup(e, router.Middlewares{
		Auth:      authMiddleware,
		Admin:     adminMiddleware,
		RateLimit: apimiddleware.NewRateLimitMiddleware(limiter),
	})

	go func() {
		logger.Info("Starting server on port %s...", cfg.ServerPort)
		if err := e.Start(":" + cfg.ServerPort); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server stopped: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown failed: %v", err)
	}
	tasks.Wait()
}

// credentialsOption prefers inline service account JSON (production) over a
// key file on disk (local development).
func credentialsOption(cfg *config.Config) option.ClientOption {
	if cfg.FirebaseServiceAccountJSON != "" {
		logger.Info("Using Firebase service account from environment variable")
		return option.WithCredentialsJSON([]byte(cfg.FirebaseServiceAccountJSON))
	}

	if _, err := os.Stat(cfg.FirebaseServiceAccountPath); os.IsNotExist(err) {
		log.Fatalf("Service account file does not exist: %s", cfg.FirebaseServiceAccountPath)
	}
	logger.Info("Using Firebase service account from file: %s", cfg.FirebaseServiceAccountPath)
	return option.WithCredentialsFile(cfg.FirebaseServiceAccountPath)
}

// bodyLimit leaves headroom above the upload cap for the other form fields.
func bodyLimit(maxUploadMB int64) string {
	return strconv.FormatInt(maxUploadMB+1, 10) + "M"
}

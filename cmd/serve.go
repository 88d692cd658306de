package cmd

import (
	"context"
	"database/sql"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	authclient "github.com/vibast-solutions/lib-go-auth/client"
	authmiddleware "github.com/vibast-solutions/lib-go-auth/middleware"
	authlibservice "github.com/vibast-solutions/lib-go-auth/service"
	"github.com/vibast-solutions/ms-go-purchases/app/cache"
	"github.com/vibast-solutions/ms-go-purchases/app/controller"
	"github.com/vibast-solutions/ms-go-purchases/app/factory"
	purchasesgrpc "github.com/vibast-solutions/ms-go-purchases/app/grpc"
	"github.com/vibast-solutions/ms-go-purchases/app/provider"
	"github.com/vibast-solutions/ms-go-purchases/app/repository"
	"github.com/vibast-solutions/ms-go-purchases/app/service"
	"github.com/vibast-solutions/ms-go-purchases/app/types"
	"github.com/vibast-solutions/ms-go-purchases/config"

	_ "github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"google.golang.org/grpc"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP and gRPC servers",
	Long:  "Start both HTTP (Echo) and gRPC servers for the purchases service.",
	Run:   runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

type services struct {
	entitlement *service.EntitlementService
	checkout    *service.CheckoutService
	account     *service.AccountService
	webhook     *service.WebhookService
}

func runServe(_ *cobra.Command, _ []string) {
	cfg, svc, cleanup := mustCreateServices()
	defer cleanup()

	if err := cfg.ValidateWebhooks(); err != nil {
		logrus.WithError(err).Fatal("Invalid webhook configuration")
	}

	purchaseController := controller.NewPurchaseController(svc.entitlement, svc.checkout)
	accountController := controller.NewAccountController(svc.account)
	webhookController := controller.NewWebhookController(svc.webhook)
	grpcPurchasesServer := purchasesgrpc.NewServer(svc.entitlement, svc.checkout, svc.account, svc.webhook)

	authGRPCClient, err := authclient.NewGRPCClientFromAddr(context.Background(), cfg.InternalEndpoints.AuthGRPCAddr)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to initialize auth gRPC client")
	}
	defer authGRPCClient.Close()

	internalAuthService := authlibservice.NewInternalAuthService(authGRPCClient)
	echoInternalAuthMiddleware := authmiddleware.NewEchoInternalAuthMiddleware(internalAuthService)
	grpcInternalAuthMiddleware := authmiddleware.NewGRPCInternalAuthMiddleware(internalAuthService)

	e := setupHTTPServer(
		cfg,
		purchaseController,
		accountController,
		webhookController,
		echoInternalAuthMiddleware,
	)
	grpcSrv, lis := setupGRPCServer(cfg, grpcPurchasesServer, grpcInternalAuthMiddleware, cfg.App.ServiceName)

	go func() {
		httpAddr := net.JoinHostPort(cfg.HTTP.Host, cfg.HTTP.Port)
		logrus.WithField("addr", httpAddr).Info("Starting HTTP server")
		if err := e.Start(httpAddr); err != nil && err != http.ErrServerClosed {
			logrus.WithError(err).Fatal("HTTP server error")
		}
	}()

	go func() {
		logrus.WithField("addr", lis.Addr().String()).Info("Starting gRPC server")
		if err := grpcSrv.Serve(lis); err != nil {
			logrus.WithError(err).Fatal("gRPC server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logrus.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logrus.WithError(err).Warn("HTTP shutdown error")
	}
	grpcSrv.GracefulStop()

	logrus.Info("Server stopped")
}

func setupHTTPServer(
	cfg *config.Config,
	purchaseController *controller.PurchaseController,
	accountController *controller.AccountController,
	webhookController *controller.WebhookController,
	internalAuthMiddleware *authmiddleware.EchoInternalAuthMiddleware,
) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	e.Use(echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogMethod:    true,
		LogRemoteIP:  true,
		LogLatency:   true,
		LogUserAgent: true,
		LogError:     true,
		HandleError:  true,
		LogRequestID: true,
		LogValuesFunc: func(_ echo.Context, v echomiddleware.RequestLoggerValues) error {
			fields := logrus.Fields{
				"remote_ip":  v.RemoteIP,
				"host":       v.Host,
				"method":     v.Method,
				"uri":        v.URI,
				"status":     v.Status,
				"latency":    v.Latency.String(),
				"latency_ns": v.Latency.Nanoseconds(),
				"user_agent": v.UserAgent,
			}
			if v.RequestID != "" {
				fields["request_id"] = v.RequestID
			}
			entry := logrus.WithFields(fields)
			if v.Error != nil {
				entry = entry.WithError(v.Error)
			}
			entry.Info("http_request")
			return nil
		},
	}))
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())

	internal := []echo.MiddlewareFunc{
		requireRequestID(),
		internalAuthMiddleware.RequireInternalAccess(cfg.App.ServiceName),
	}

	e.GET("/health", purchaseController.Health, internal...)

	videos := e.Group("/videos", internal...)
	videos.GET("/:id/entitlement", purchaseController.GetEntitlement)
	videos.POST("/:id/checkout", purchaseController.StartCheckout)

	viewers := e.Group("/viewers", internal...)
	viewers.GET("/:id/grants", purchaseController.ListGrants)

	creators := e.Group("/creators", internal...)
	creators.POST("/:id/onboarding", accountController.BeginOnboarding)
	creators.GET("/:id/account", accountController.GetAccountStatus)
	creators.POST("/:id/account/refresh", accountController.RefreshAccountStatus)

	// Processor deliveries carry no internal credentials; the signature is
	// verified in the webhook service.
	if cfg.Stripe.WebhooksDisabled {
		logrus.Warn("Webhook endpoint disabled; purchases will not be granted")
	} else {
		webhooks := e.Group("/webhooks/providers", assignRequestID())
		webhooks.POST("/:provider", webhookController.HandleProviderWebhook)
	}

	return e
}

func requireRequestID() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			requestID := strings.TrimSpace(ctx.Request().Header.Get(echo.HeaderXRequestID))
			if requestID == "" {
				return ctx.JSON(http.StatusBadRequest, &types.ErrorResponse{Error: "x-request-id header is required"})
			}
			ctx.Response().Header().Set(echo.HeaderXRequestID, requestID)
			return next(ctx)
		}
	}
}

// assignRequestID keeps a caller supplied request id and generates one
// otherwise.
func assignRequestID() echo.MiddlewareFunc {
	return echomiddleware.RequestIDWithConfig(echomiddleware.RequestIDConfig{
		Generator: func() string {
			return uuid.NewString()
		},
	})
}

func setupGRPCServer(
	cfg *config.Config,
	purchasesServer *purchasesgrpc.Server,
	internalAuthMiddleware *authmiddleware.GRPCInternalAuthMiddleware,
	appServiceName string,
) (*grpc.Server, net.Listener) {
	grpcAddr := net.JoinHostPort(cfg.GRPC.Host, cfg.GRPC.Port)
	lis, err := net.Listen("tcp", grpcAddr)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to listen on gRPC port")
	}

	grpcSrv := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			purchasesgrpc.RecoveryInterceptor(),
			purchasesgrpc.RequestIDInterceptor(),
			purchasesgrpc.LoggingInterceptor(),
			internalAuthMiddleware.UnaryRequireInternalAccess(appServiceName),
		),
	)
	types.RegisterPurchasesServiceServer(grpcSrv, purchasesServer)

	return grpcSrv, lis
}

func mustLoadConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}
	if err := configureLogging(cfg); err != nil {
		logrus.WithError(err).Fatal("Failed to configure logging")
	}
	return cfg
}

func mustOpenDB(cfg *config.Config) *sql.DB {
	db, err := sql.Open("mysql", cfg.MySQL.DSN)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to connect to database")
	}

	db.SetMaxOpenConns(cfg.MySQL.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MySQL.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.MySQL.ConnMaxLifetime)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		logrus.WithError(err).Fatal("Failed to ping database")
	}
	return db
}

// entitlementCache mirrors the cache contract the services accept, so that a
// disabled cache is passed as a true nil.
type entitlementCache interface {
	IsGranted(ctx context.Context, viewerID, videoID string) (bool, error)
	MarkGranted(ctx context.Context, viewerID, videoID string) error
}

func newEntitlementCache(cfg *config.Config) (entitlementCache, *redis.Client) {
	if strings.TrimSpace(cfg.Redis.Addr) == "" {
		logrus.Info("Redis not configured; entitlement cache disabled")
		return nil, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		// Cache errors fall through to MySQL.
		logrus.WithError(err).WithField("addr", cfg.Redis.Addr).Warn("Redis ping failed; continuing with degraded cache")
	}

	return cache.NewEntitlementCache(client, cfg.Redis.EntitlementTTL), client
}

func mustCreateServices() (*config.Config, *services, func()) {
	cfg := mustLoadConfig()
	db := mustOpenDB(cfg)

	videoRepo := repository.NewVideoRepository(db)
	viewerRepo := repository.NewViewerRepository(db)
	grantRepo := repository.NewPurchaseGrantRepository(db)
	accountRepo := repository.NewPaymentAccountRepository(db)
	deliveryRepo := repository.NewWebhookDeliveryRepository(db)
	orphanRepo := repository.NewOrphanedPaymentRepository(db)

	grantCache, redisClient := newEntitlementCache(cfg)

	stripeProvider := provider.NewStripeProvider(provider.StripeConfig{
		SecretKey:                 cfg.Stripe.SecretKey,
		WebhookSecret:             cfg.Stripe.WebhookSecret,
		SignatureToleranceSeconds: cfg.Stripe.SignatureToleranceSeconds,
		HTTPTimeout:               cfg.Stripe.HTTPTimeout,
		MaxNetworkRetries:         cfg.Stripe.MaxNetworkRetries,
		APIBaseURL:                cfg.Stripe.APIBaseURL,
		Logger:                    factory.NewModuleLogger("stripe"),
	})
	providerRegistry := provider.NewRegistry(stripeProvider)

	accountService := service.NewAccountService(accountRepo, stripeProvider, cfg.Marketplace, cfg.Jobs)
	webhookService := service.NewWebhookService(
		providerRegistry,
		grantRepo,
		viewerRepo,
		orphanRepo,
		deliveryRepo,
		accountService,
		grantCache,
	)

	svc := &services{
		entitlement: service.NewEntitlementService(videoRepo, grantRepo, grantCache),
		checkout:    service.NewCheckoutService(videoRepo, accountRepo, stripeProvider, cfg.Marketplace),
		account:     accountService,
		webhook:     webhookService,
	}

	cleanup := func() {
		if redisClient != nil {
			if err := redisClient.Close(); err != nil {
				logrus.WithError(err).Warn("Failed to close redis client")
			}
		}
		if err := db.Close(); err != nil {
			logrus.WithError(err).Warn("Failed to close database")
		}
	}

	return cfg, svc, cleanup
}

package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"cddiller-backend/config"
	_ "cddiller-backend/docs" // Important for Swagger
	v1 "cddiller-backend/internal/delivery/http/v1"
	"cddiller-backend/internal/gateway/gotrue"
	"cddiller-backend/internal/repository/postgres"
	"cddiller-backend/internal/usecase"
	"cddiller-backend/pkg/auth"
	"cddiller-backend/pkg/database"
	"cddiller-backend/pkg/logger"
	"cddiller-backend/pkg/redis"
	"cddiller-backend/pkg/security"
	"cddiller-backend/pkg/validation"
)

// @title           CD Diller Backend API
// @version         1.0
// @description     Distribution management backend for the CD Diller dashboard.
// @host            localhost:8080
// @BasePath        /v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// 1. Load Config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 2. Setup Logger
	logger.Init("cddiller-api")
	logger.Log.Info("Starting cddiller backend", "port", cfg.Port)

	// 3. Setup Database
	dbPool, err := database.NewPostgresConnection(cfg.DBUrl)
	if err != nil {
		logger.Log.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer dbPool.Close()

	// 4. Setup Redis (optional; rate limiting degrades to in-memory)
	if err := redis.Initialize(redis.Config{URL: cfg.UpstashRedisURL, Password: cfg.UpstashRedisPassword}); err != nil {
		logger.Log.Warn("Redis unavailable, using in-memory fallbacks", "error", err)
	}
	defer redis.Close()

	// 5. Setup Repositories
	profileRepo := postgres.NewProfileRepository(dbPool)
	dealerRepo := postgres.NewDealerRepository(dbPool)
	storeRepo := postgres.NewStoreRepository(dbPool)
	productRepo := postgres.NewProductRepository(dbPool)
	orderRepo := postgres.NewOrderRepository(dbPool)
	returnRepo := postgres.NewReturnRepository(dbPool)
	invoiceRepo := postgres.NewInvoiceRepository(dbPool)
	reportRepo := postgres.NewReportRepository(dbPool)

	// 6. Supabase credential gateway
	creds := gotrue.NewClient(cfg.SupabaseUrl, cfg.SupabaseKey)

	// 7. Failed-login tracker (nil when Redis is absent; login still works)
	var tracker *security.LoginTracker
	if redis.IsAvailable() {
		trackerCfg := security.DefaultLoginTrackerConfig()
		trackerCfg.MaxAttempts = cfg.FailedLoginMaxAttempts
		trackerCfg.BlockDuration = time.Duration(cfg.FailedLoginBlockMinutes) * time.Minute
		tracker = security.NewLoginTracker(trackerCfg, logger.Log)
	}

	// 8. Setup UseCases
	authUC := usecase.NewAuthUsecase(creds, profileRepo, tracker, logger.Log)
	userUC := usecase.NewUserUsecase(profileRepo)
	dealerUC := usecase.NewDealerUsecase(dealerRepo, profileRepo, creds, logger.Log)
	storeUC := usecase.NewStoreUsecase(storeRepo, dealerRepo)
	productUC := usecase.NewProductUsecase(productRepo)
	orderUC := usecase.NewOrderUsecase(orderRepo, storeRepo, productRepo)
	returnUC := usecase.NewReturnUsecase(returnRepo, orderRepo, productRepo)
	invoiceUC := usecase.NewInvoiceUsecase(invoiceRepo, orderRepo)
	reportUC := usecase.NewReportUsecase(reportRepo, orderRepo)
	trashUC := usecase.NewTrashUsecase(orderRepo, storeRepo, dealerRepo)

	// 9. Custom request validators
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		validation.RegisterValidators(v)
	}

	// 10. Setup Auth Provider (JWKS)
	jwksURL := cfg.SupabaseUrl + "/auth/v1/.well-known/jwks.json"
	jwksProvider := auth.NewProvider(jwksURL)

	// 11. Setup Router
	router := v1.NewRouter(v1.RouterDeps{
		AuthUC:       authUC,
		UserUC:       userUC,
		DealerUC:     dealerUC,
		StoreUC:      storeUC,
		ProductUC:    productUC,
		OrderUC:      orderUC,
		ReturnUC:     returnUC,
		InvoiceUC:    invoiceUC,
		ReportUC:     reportUC,
		TrashUC:      trashUC,
		JWKSProvider: jwksProvider,
		Config:       cfg,
	})

	// 12. Start Server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Error("Listen failed", "error", err)
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Error("Server forced to shutdown", "error", err)
	}

	logger.Log.Info("Server exiting")
}

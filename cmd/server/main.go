package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"nexacred.backend/internal/config"
	"nexacred.backend/internal/infrastructure/blockchain"
	"nexacred.backend/internal/infrastructure/jobs"
	"nexacred.backend/internal/infrastructure/repositories"
	"nexacred.backend/internal/interfaces/http/handlers"
	"nexacred.backend/internal/interfaces/http/middleware"
	"nexacred.backend/internal/metrics"
	"nexacred.backend/internal/usecases"
	"nexacred.backend/pkg/attest"
	"nexacred.backend/pkg/jwt"
	"nexacred.backend/pkg/logger"
	"nexacred.backend/pkg/redis"
)

var (
	loadDotenv = godotenv.Load
	loadCfg    = config.Load
	initLog    = logger.Init
	initRedis  = redis.Init
	openDB     = func(dsn string) (*gorm.DB, error) {
		// Connectivity is probed after open so boot can proceed on a down database.
		return gorm.Open(postgres.New(postgres.Config{
			DSN:                  dsn,
			PreferSimpleProtocol: true,
		}), &gorm.Config{
			PrepareStmt:          false,
			DisableAutomaticPing: true,
		})
	}
	newAnalyzerSource = buildAnalyzerSource
	runServer         = func(r *gin.Engine, port string) error { return r.Run(":" + port) }
	getStdDB          = func(db *gorm.DB) (*sql.DB, error) { return db.DB() }
)

func main() {
	if err := runMainProcess(); err != nil {
		log.Fatal(err)
	}
}

// buildAnalyzerSource picks the analyzer's transaction source. "synthetic"
// derives deterministic histories offline; "rpc" scans recent blocks on a
// JSON-RPC node.
func buildAnalyzerSource(cfg *config.Config) (usecases.TransactionSource, error) {
	switch cfg.Analyzer.Source {
	case "", "synthetic":
		return blockchain.NewSyntheticSource(), nil
	case "rpc":
		if cfg.Analyzer.RPCURL == "" {
			return nil, fmt.Errorf("analyzer source %q requires ANALYZER_RPC_URL", cfg.Analyzer.Source)
		}
		return blockchain.NewRPCSource(cfg.Analyzer.RPCURL, uint64(cfg.Analyzer.ScanDepth))
	default:
		return nil, fmt.Errorf("unknown analyzer source %q", cfg.Analyzer.Source)
	}
}

func runMainProcess() error {
	// Load .env file
	if err := loadDotenv(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Load configuration
	cfg := loadCfg()

	// Initialize Logger
	initLog(cfg.Server.Env)
	logger.Info(context.Background(), "Logger initialized", zap.String("env", cfg.Server.Env))

	// Initialize Redis
	if err := initRedis(cfg.Redis.URL, cfg.Redis.PASSWORD); err != nil {
		logger.Error(context.Background(), "Failed to initialize Redis", zap.Error(err))
		return fmt.Errorf("failed to initialize redis: %w", err)
	}
	logger.Info(context.Background(), "Redis initialized")

	// Set Gin mode
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Connect to database using GORM
	dsn := cfg.Database.URL()
	db, err := openDB(dsn)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := getStdDB(db)
	if err != nil {
		return fmt.Errorf("failed to get generic database object: %w", err)
	}
	defer sqlDB.Close()

	if err := sqlDB.Ping(); err != nil {
		log.Printf("⚠️ Database not available: %v (endpoints will return errors)", err)
	} else {
		log.Println("✅ Connected to PostgreSQL via GORM")
	}

	// Initialize JWT service
	jwtService := jwt.NewJWTService(
		cfg.JWT.Secret,
		cfg.JWT.WalletExpiry,
		cfg.JWT.LoginExpiry,
	)

	// Initialize repositories
	userRepo := repositories.NewUserRepository(db)

	// Initialize Redis-backed stores
	challengeStore := redis.NewChallengeStore(cfg.Wallet.ChallengeTTL)
	reportCache := redis.NewReportCache(cfg.Analyzer.CacheTTL)

	// Report attestation is optional; the signer stays nil without a key.
	var reportSigner *attest.Signer
	if cfg.Attest.SigningKey != "" {
		reportSigner, err = attest.NewSigner(cfg.Attest.SigningKey)
		if err != nil {
			return fmt.Errorf("failed to initialize report signer: %w", err)
		}
	}

	// Pick the analyzer's transaction source
	source, err := newAnalyzerSource(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize analyzer source: %w", err)
	}

	// Initialize usecases
	authUsecase := usecases.NewAuthUsecase(userRepo, jwtService)
	walletAuthUsecase := usecases.NewWalletAuthUsecase(userRepo, jwtService, challengeStore)
	analyzerUsecase := usecases.NewAnalyzerUsecase(source, reportCache, reportSigner)

	// Initialize metrics registry
	m := metrics.New()

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authUsecase)
	walletAuthHandler := handlers.NewWalletAuthHandler(walletAuthUsecase, m)
	analyzerHandler := handlers.NewAnalyzerHandler(analyzerUsecase)

	// Create auth middleware
	authMiddleware := middleware.AuthMiddleware(jwtService)

	// Start background jobs
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	statsJob := jobs.NewUserStatsJob(userRepo, m)
	go statsJob.Start(ctx)

	// Initialize router
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.LoggerMiddleware())
	r.Use(middleware.MetricsMiddleware(m))

	applyCORSMiddleware(r)
	registerHealthRoute(r)
	registerMetricsRoute(r, m)
	registerAPIRoutes(r, routeDeps{
		authHandler:       authHandler,
		walletAuthHandler: walletAuthHandler,
		analyzerHandler:   analyzerHandler,
		authMiddleware:    authMiddleware,
	})

	// Print all registered routes for debugging
	log.Println("📋 Registered Routes:")
	for _, route := range r.Routes() {
		log.Printf("   %s %s", route.Method, route.Path)
	}

	// Graceful shutdown
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		log.Println("🛑 Shutting down server...")
		statsJob.Stop()
		cancel()
	}()

	// Start server
	log.Printf("🚀 NexaCred Backend starting on port %s", cfg.Server.Port)
	log.Printf("📚 API: http://localhost:%s/api", cfg.Server.Port)
	log.Printf("❤️ Health: http://localhost:%s/health", cfg.Server.Port)

	if err := runServer(r, cfg.Server.Port); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

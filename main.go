package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/adrijadey5/Smart-Home-Inventory/controllers"
	"github.com/adrijadey5/Smart-Home-Inventory/database"
	"github.com/adrijadey5/Smart-Home-Inventory/events"
	"github.com/adrijadey5/Smart-Home-Inventory/logger"
	"github.com/adrijadey5/Smart-Home-Inventory/repository"
	"github.com/adrijadey5/Smart-Home-Inventory/routes"
	"github.com/adrijadey5/Smart-Home-Inventory/services"
)

const alertCacheTTL = 5 * time.Minute

func main() {
	cfg, err := LoadConfig()
	if err != nil {
		panic("config load failed: " + err.Error())
	}

	log := logger.Initialize(cfg.Env)
	defer log.Sync()

	// --- MongoDB ---
	client, db, err := database.ConnectMongo(context.Background(), cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		log.Fatal("MongoDB connection failed", zap.Error(err))
	}
	defer func() {
		if err := database.DisconnectMongo(client); err != nil {
			log.Warn("MongoDB disconnect failed", zap.Error(err))
		}
	}()

	inventoryRepo := repository.NewMongoInventoryRepository(client, db)
	userRepo := repository.NewMongoUserRepository(db)

	indexCtx, cancelIndex := context.WithTimeout(context.Background(), 30*time.Second)
	if err := inventoryRepo.EnsureIndexes(indexCtx); err != nil {
		log.Warn("inventory index creation failed", zap.Error(err))
	}
	if err := userRepo.EnsureIndexes(indexCtx); err != nil {
		log.Warn("user index creation failed", zap.Error(err))
	}
	cancelIndex()

	// --- Redis (optional alert cache) ---
	var alertCache services.AlertCache
	if cfg.RedisAddr != "" {
		redisClient, err := database.ConnectRedis(context.Background(), cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
		if err != nil {
			log.Warn("Redis connection failed, alert cache disabled", zap.Error(err))
		} else {
			alertCache = services.NewRedisAlertCache(redisClient, alertCacheTTL, log)
			defer redisClient.Close()
		}
	}

	// --- Service wiring ---
	bus := events.NewBus()
	diag := &services.ZapDiagnosticSink{Logger: log}
	inventoryService := services.NewInventoryService(inventoryRepo, bus, diag, alertCache, log)
	authService := services.NewAuthService(userRepo, cfg.JWTSecret, log)

	authCtrl := controllers.NewAuthController(authService, log)
	inventoryCtrl := controllers.NewInventoryController(inventoryService, bus, log)
	catalogCtrl := controllers.NewCatalogController()

	// --- HTTP router ---
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.RequestLogger(log))

	corsCfg := cors.DefaultConfig()
	if cfg.CORSOrigins != "" {
		corsCfg.AllowOrigins = strings.Split(cfg.CORSOrigins, ",")
	} else {
		corsCfg.AllowAllOrigins = true
	}
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "Authorization")
	r.Use(cors.New(corsCfg))

	routes.RegisterRoutes(r, authService, authCtrl, inventoryCtrl, catalogCtrl)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK"})
	})

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r}

	go func() {
		log.Info("HomeStock service starting", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down HomeStock service...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("HomeStock service stopped gracefully")
}

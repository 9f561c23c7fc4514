// The inventory service is a stateless resource server: it trusts bearer
// tokens validated against the shared secret and guards its call to the
// user service with a circuit breaker.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/Syafiq-lab/library-management-be/audit"
	"github.com/Syafiq-lab/library-management-be/config"
	"github.com/Syafiq-lab/library-management-be/inventory"
	"github.com/Syafiq-lab/library-management-be/logger"
	"github.com/Syafiq-lab/library-management-be/middleware"
	"github.com/Syafiq-lab/library-management-be/resilience"
	"github.com/Syafiq-lab/library-management-be/token"
	"github.com/Syafiq-lab/library-management-be/userclient"
)

const serviceName = "inventoryservice"

// Config is the inventory service configuration.
type Config struct {
	Port           string            `mapstructure:"port"`
	Logging        logger.Config     `mapstructure:"logging"`
	Security       config.Security   `mapstructure:"security"`
	Database       DatabaseConfig    `mapstructure:"database"`
	Kafka          audit.KafkaConfig `mapstructure:"kafka"`
	Breaker        config.Breaker    `mapstructure:"breaker"`
	UserServiceURL string            `mapstructure:"user_service_url"`
}

// DatabaseConfig points at the SQLite database file.
type DatabaseConfig struct {
	DSN string `mapstructure:"dsn"`
}

func main() {
	var cfg Config
	if err := config.LoadConfig(serviceName, &cfg); err != nil {
		logger.NewDefault(serviceName).Fatal("failed to load config", logger.Fields("error", err.Error()))
	}
	if cfg.Port == "" {
		cfg.Port = "8083"
	}
	if cfg.Database.DSN == "" {
		cfg.Database.DSN = "inventory.db"
	}
	if cfg.UserServiceURL == "" {
		cfg.UserServiceURL = "http://localhost:8082"
	}
	cfg.Logging.ApplyDefaults()
	cfg.Security.ApplyDefaults()
	if err := cfg.Security.Validate(); err != nil {
		logger.NewDefault(serviceName).Fatal("invalid config", logger.Fields("error", err.Error()))
	}

	log := logger.New(&cfg.Logging, serviceName)
	logger.SetGlobalLogger(log)

	db, err := gorm.Open(sqlite.Open(cfg.Database.DSN), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		log.Fatal("failed to open database", logger.Fields("error", err.Error()))
	}
	if err := db.AutoMigrate(&inventory.Item{}); err != nil {
		log.Fatal("failed to migrate database", logger.Fields("error", err.Error()))
	}

	tokens, err := token.NewService(cfg.Security)
	if err != nil {
		log.Fatal("failed to build token service", logger.Fields("error", err.Error()))
	}

	var dispatcher *audit.Dispatcher
	if len(cfg.Kafka.Brokers) > 0 {
		publisher := audit.NewKafkaPublisher(cfg.Kafka, log)
		dispatcher = audit.NewDispatcher(publisher, 256, log)
		defer func() {
			dispatcher.Close()
			publisher.Close()
		}()
	}

	usersClient := userclient.New(cfg.UserServiceURL, tokens, serviceName, log)
	breaker := resilience.NewCircuitBreaker(resilience.BreakerConfigFrom("user-service", cfg.Breaker))
	store := inventory.NewGormStore(db)
	svc := inventory.NewService(store, usersClient, breaker, log)
	events := inventory.NewEventPublisher(dispatcher, serviceName)

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(middleware.Recovery(log))
	r.Use(middleware.TraceID())
	r.Use(middleware.RequestLogger(log))
	r.Use(middleware.Auth(middleware.AuthConfig{
		Validator: tokens,
		PermitAll: append([]string{"/health"}, cfg.Security.PermitAll...),
	}))
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "UP"}) })

	inventory.NewHandler(svc, events).RegisterRoutes(r)

	runServer(log, &http.Server{Addr: ":" + cfg.Port, Handler: r})
}

func runServer(log *logger.Logger, srv *http.Server) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info("listening", logger.Fields("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed", logger.Fields("error", err.Error()))
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown failed", logger.Fields("error", err.Error()))
	}
	log.Info("stopped")
}

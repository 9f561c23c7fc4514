// The auth service owns credential verification and the token lifecycle:
// register, login, refresh rotation, and logout.
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
	"github.com/Syafiq-lab/library-management-be/authn"
	"github.com/Syafiq-lab/library-management-be/config"
	"github.com/Syafiq-lab/library-management-be/logger"
	"github.com/Syafiq-lab/library-management-be/middleware"
	"github.com/Syafiq-lab/library-management-be/password"
	"github.com/Syafiq-lab/library-management-be/refreshtoken"
	"github.com/Syafiq-lab/library-management-be/token"
	"github.com/Syafiq-lab/library-management-be/users"
)

const serviceName = "authservice"

// Config is the auth service configuration.
type Config struct {
	Port     string            `mapstructure:"port"`
	Logging  logger.Config     `mapstructure:"logging"`
	Security config.Security   `mapstructure:"security"`
	Database DatabaseConfig    `mapstructure:"database"`
	Kafka    audit.KafkaConfig `mapstructure:"kafka"`
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
		cfg.Port = "8081"
	}
	if cfg.Database.DSN == "" {
		cfg.Database.DSN = "auth.db"
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
	if err := db.AutoMigrate(&users.User{}, &refreshtoken.Record{}); err != nil {
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

	userStore := users.NewGormStore(db)
	refreshStore := refreshtoken.NewGormStore(db)
	hasher := password.NewBcryptHasher()
	authSvc := authn.NewService(userStore, tokens, refreshStore, hasher, cfg.Security, log,
		authn.WithEvents(users.NewEventPublisher(dispatcher, serviceName)))

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(middleware.Recovery(log))
	r.Use(middleware.TraceID())
	r.Use(middleware.RequestLogger(log))
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "UP"}) })

	authn.NewHandler(authSvc).RegisterRoutes(r)

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

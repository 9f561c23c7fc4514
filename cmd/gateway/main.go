// The gateway is the single public entry point: it assigns the trace id,
// audits every request to Kafka, and reverse-proxies to the backing
// services behind per-upstream circuit breakers.
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

	"github.com/Syafiq-lab/library-management-be/audit"
	"github.com/Syafiq-lab/library-management-be/config"
	"github.com/Syafiq-lab/library-management-be/gateway"
	"github.com/Syafiq-lab/library-management-be/logger"
	"github.com/Syafiq-lab/library-management-be/middleware"
)

const serviceName = "gateway"

// Config is the gateway configuration.
type Config struct {
	Port    string            `mapstructure:"port"`
	Logging logger.Config     `mapstructure:"logging"`
	Kafka   audit.KafkaConfig `mapstructure:"kafka"`
	Breaker config.Breaker    `mapstructure:"breaker"`
	Routes  []gateway.Route   `mapstructure:"routes"`
}

func defaultRoutes() []gateway.Route {
	return []gateway.Route{
		{Name: "auth service", Prefix: "/api/auth", URL: "http://localhost:8081"},
		{Name: "user service", Prefix: "/api/users", URL: "http://localhost:8082"},
		{Name: "inventory service", Prefix: "/api/inventory", URL: "http://localhost:8083"},
	}
}

func main() {
	var cfg Config
	if err := config.LoadConfig(serviceName, &cfg); err != nil {
		logger.NewDefault(serviceName).Fatal("failed to load config", logger.Fields("error", err.Error()))
	}
	if cfg.Port == "" {
		cfg.Port = "8080"
	}
	if len(cfg.Routes) == 0 {
		cfg.Routes = defaultRoutes()
	}
	cfg.Logging.ApplyDefaults()

	log := logger.New(&cfg.Logging, serviceName)
	logger.SetGlobalLogger(log)

	var dispatcher *audit.Dispatcher
	if len(cfg.Kafka.Brokers) > 0 {
		publisher := audit.NewKafkaPublisher(cfg.Kafka, log)
		dispatcher = audit.NewDispatcher(publisher, 256, log)
		defer func() {
			dispatcher.Close()
			publisher.Close()
		}()
	}

	gw, err := gateway.New(cfg.Routes, cfg.Breaker, log)
	if err != nil {
		log.Fatal("failed to build gateway", logger.Fields("error", err.Error()))
	}

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(middleware.Recovery(log))
	r.Use(middleware.TraceID())
	r.Use(middleware.RequestLogger(log))
	r.Use(gateway.AuditTrail(dispatcher, serviceName))
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "UP"}) })

	gw.RegisterRoutes(r)

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

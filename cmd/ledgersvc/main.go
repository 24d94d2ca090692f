package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/httprate"

	config "github.com/avvvet/poker-ledger/configs"
	"github.com/avvvet/poker-ledger/internal/insight"
	"github.com/avvvet/poker-ledger/internal/ledgersvc/broker"
	"github.com/avvvet/poker-ledger/internal/ledgersvc/db"
	handlers "github.com/avvvet/poker-ledger/internal/ledgersvc/handlers"
	"github.com/avvvet/poker-ledger/internal/ledgersvc/service"
	nats "github.com/avvvet/poker-ledger/internal/nats"
	log "github.com/sirupsen/logrus"
)

const SERVICE_NAME = "ledger"

var instanceId string

func init() {
	config.LoadEnv(SERVICE_NAME)
}

func main() {
	settings, err := config.ParseSettings()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	instanceId = config.CreateUniqueInstance(SERVICE_NAME)
	config.Logging(SERVICE_NAME+"_service_"+instanceId, settings.LogFolder)

	loc, err := settings.Location()
	if err != nil {
		log.Fatalf("Invalid timezone: %v", err)
	}

	ctx := context.Background()

	ledger, err := db.Open(ctx, settings)
	if err != nil {
		log.Fatalf("Failed to open ledger: %v", err)
	}
	defer ledger.Close()

	// NATS is optional; without it games are recorded but never enriched
	var publisher service.Publisher
	if settings.NatsURL != "" {
		n, err := nats.Connect(SERVICE_NAME+"_service_"+instanceId, settings.NatsURL, settings.NatsToken)
		if err != nil {
			log.Errorf("Error: unable to connect to NATS server %v", err)
			os.Exit(1)
		}
		defer n.Close()
		log.Printf("NATS connection established successfully %s", n.Url)
		publisher = broker.NewBroker(n.Conn, instanceId)
	} else {
		log.Info("NATS_URL not set, ledger events will not be published")
	}

	gateway, closeCache := insight.FromSettings(ctx, settings)
	defer closeCache()

	playerService := service.NewPlayerService(ledger)
	gameService := service.NewGameService(ledger, publisher, loc)
	statsService := service.NewStatsService(ledger, loc)
	insightService := service.NewInsightService(statsService, gateway, settings.InsightMaxToken)

	// Setup router
	r := chi.NewRouter()
	c := config.CORS(settings.Origins)

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(config.CustomLoggerMiddleware())
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(c.Handler)

	// to protect the service api from any over requests
	r.Use(httprate.LimitByIP(settings.RateLimit, 1*time.Minute))

	// Init handlers and routes
	h := handlers.NewHandler(playerService, gameService, statsService, insightService, loc, settings.Port)
	h.SetRoutes(r)

	// Create server with timeout settings
	server := &http.Server{
		Addr:         ":" + settings.Port,
		Handler:      r,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("ListenAndServe(): %v", err)
		}
	}()
	log.Infof("%s service running at port %s", SERVICE_NAME, server.Addr)

	// Wait for interrupt signal to gracefully shutdown the server
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Errorf("%s service shutdown Failed:%+v", SERVICE_NAME, err)
		return
	}
	log.Infof("%s service gracefully stopped", SERVICE_NAME)
}
